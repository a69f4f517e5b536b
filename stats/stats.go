// Package stats summarizes batches of solves.
package stats

import (
	"io"
	"math"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford) that also keeps
// its samples for quantiles.
type Statistic struct {
	n       int
	mean    float64
	m2      float64
	min     float64
	max     float64
	samples []float64
}

func (s *Statistic) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.min, s.max = val, val
	}
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.samples = append(s.samples, val)
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Iterations() int { return s.n }
func (s *Statistic) Min() float64    { return s.min }
func (s *Statistic) Max() float64    { return s.max }

// Quantile returns the empirical p-quantile, p in [0, 1].
func (s *Statistic) Quantile(p float64) float64 {
	if s.n == 0 {
		return 0.0
	}
	sorted := slices.Clone(s.samples)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Histogram buckets the samples. It is nil for an empty statistic.
func (s *Statistic) Histogram(bins int) *histogram.Histogram {
	if s.n == 0 {
		return nil
	}
	if s.min == s.max {
		return &histogram.Histogram{
			Min:     s.min,
			Max:     s.max,
			Count:   s.n,
			Buckets: []histogram.Bucket{{Min: s.min, Max: s.max, Count: s.n}},
		}
	}
	h := histogram.Hist(bins, s.samples)
	return &h
}

// FprintHistogram draws the histogram as text bars of at most width
// characters.
func (s *Statistic) FprintHistogram(w io.Writer, bins, width int) error {
	h := s.Histogram(bins)
	if h == nil {
		_, err := io.WriteString(w, "no data\n")
		return err
	}
	return histogram.Fprint(w, *h, histogram.Linear(width))
}

// WinRate is wins/played with a normal-approximation half-width at the
// given confidence percentage.
func WinRate(wins, played int, confidence float64) (rate, margin float64) {
	if played == 0 {
		return 0, 0
	}
	rate = float64(wins) / float64(played)
	margin = ZVal(confidence) * math.Sqrt(rate*(1-rate)/float64(played))
	return rate, margin
}
