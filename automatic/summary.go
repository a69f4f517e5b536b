package automatic

import (
	"fmt"
	"strings"
	"time"

	"github.com/domino14/solitaire/solver"
	"github.com/domino14/solitaire/stats"
)

const (
	confidence = 95
	histBins   = 10
	histWidth  = 40
)

// Summary aggregates a batch of games.
type Summary struct {
	Played     int
	Won        int
	Stuck      int
	BestEffort int
	Elapsed    time.Duration

	// Nodes counts frontier pops per game.
	Nodes *stats.Statistic
	// WinLength is the number of moves in each won game.
	WinLength *stats.Statistic
}

func NewSummary() *Summary {
	return &Summary{Nodes: &stats.Statistic{}, WinLength: &stats.Statistic{}}
}

func (s *Summary) Add(gr *GameResult) {
	s.Played++
	s.Nodes.Push(float64(gr.Result.Stats.Popped))
	switch gr.Result.Outcome {
	case solver.OutcomeWon:
		s.Won++
		s.WinLength.Push(float64(len(gr.Result.Moves)))
	case solver.OutcomeStuck:
		s.Stuck++
	default:
		s.BestEffort++
	}
}

// WinRate is the fraction of games won and its 95% margin.
func (s *Summary) WinRate() (float64, float64) {
	return stats.WinRate(s.Won, s.Played, confidence)
}

func (s *Summary) String() string {
	var sb strings.Builder
	rate, margin := s.WinRate()
	fmt.Fprintf(&sb, "Games played: %d\n", s.Played)
	fmt.Fprintf(&sb, "Won: %d (%.2f%% ± %.2f%%)\n", s.Won, 100*rate, 100*margin)
	fmt.Fprintf(&sb, "Stuck: %d\n", s.Stuck)
	fmt.Fprintf(&sb, "Best effort: %d\n", s.BestEffort)
	if s.Nodes.Iterations() > 0 {
		fmt.Fprintf(&sb, "Nodes: mean %.1f, median %.0f, p90 %.0f, max %.0f\n",
			s.Nodes.Mean(), s.Nodes.Quantile(0.5), s.Nodes.Quantile(0.9), s.Nodes.Max())
	}
	if s.WinLength.Iterations() > 0 {
		fmt.Fprintf(&sb, "Winning line length: mean %.1f ± %.1f\n",
			s.WinLength.Mean(), s.WinLength.StandardError())
		sb.WriteString("Winning line length histogram:\n")
		s.WinLength.FprintHistogram(&sb, histBins, histWidth)
	}
	if s.Elapsed > 0 {
		fmt.Fprintf(&sb, "Time: %v\n", s.Elapsed.Round(time.Millisecond))
	}
	return sb.String()
}
