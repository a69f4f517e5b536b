package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		nodes []int
		mean  float64
		stdev float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, n := range c.nodes {
			s.Push(float64(n))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.nodes))
	}
}

func TestMinMaxQuantile(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{5, 1, 4, 2, 3} {
		s.Push(v)
	}
	is.Equal(s.Min(), 1.0)
	is.Equal(s.Max(), 5.0)
	is.Equal(s.Quantile(0.5), 3.0)
	is.Equal(s.Quantile(1), 5.0)
	// Quantile must not reorder the pushed samples.
	is.Equal(s.samples, []float64{5, 1, 4, 2, 3})

	empty := &Statistic{}
	is.Equal(empty.Quantile(0.5), 0.0)
	is.True(empty.Histogram(10) == nil)
}

func TestHistogram(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for i := 0; i < 100; i++ {
		s.Push(float64(i % 10))
	}
	h := s.Histogram(5)
	is.True(h != nil)
	is.Equal(h.Count, 100)
	total := 0
	for _, b := range h.Buckets {
		total += b.Count
	}
	is.Equal(total, 100)

	var sb strings.Builder
	is.NoErr(s.FprintHistogram(&sb, 5, 20))
	is.True(len(sb.String()) > 0)

	sb.Reset()
	is.NoErr((&Statistic{}).FprintHistogram(&sb, 5, 20))
	is.Equal(sb.String(), "no data\n")
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestWinRate(t *testing.T) {
	is := is.New(t)
	rate, margin := WinRate(0, 0, 95)
	is.Equal(rate, 0.0)
	is.Equal(margin, 0.0)
	rate, margin = WinRate(50, 100, 95)
	is.Equal(rate, 0.5)
	is.True(margin > 0.09 && margin < 0.1)
}
