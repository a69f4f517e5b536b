package solver

import (
	"fmt"
	"io"
	"time"

	"github.com/pbnjay/memory"

	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/movegen"
)

// Config bounds and tunes one search. At least one of NodeBudget and
// TimeBudget must be set.
type Config struct {
	// NodeBudget caps frontier pops. 0 means no cap.
	NodeBudget int
	// TimeBudget caps wall-clock time. 0 means no cap.
	TimeBudget time.Duration
	// DrawCount, if set, must match the game handed to Solve.
	DrawCount int
	// DepthPenalty is subtracted per move from a node's score to get its
	// frontier priority.
	DepthPenalty float64
	Weights      heuristic.Weights
	// Threads is used by SolveParallel when it is given 0 workers.
	Threads int
}

const (
	// estimatedBytesPerPop covers the popped node plus the children it
	// leaves on the frontier.
	estimatedBytesPerPop = 4096
	maxDefaultNodeBudget = 5_000_000
	minDefaultNodeBudget = 10_000
)

// DefaultNodeBudget sizes the node budget to a quarter of system memory.
func DefaultNodeBudget() int {
	total := memory.TotalMemory()
	budget := int(total / 4 / estimatedBytesPerPop)
	return max(minDefaultNodeBudget, min(budget, maxDefaultNodeBudget))
}

func DefaultConfig() Config {
	return Config{
		NodeBudget:   DefaultNodeBudget(),
		TimeBudget:   30 * time.Second,
		DepthPenalty: 0.5,
		Weights:      heuristic.DefaultWeights(),
		Threads:      1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.NodeBudget < 0:
		return fmt.Errorf("%w: negative node budget %d", ErrInvalidConfig, c.NodeBudget)
	case c.TimeBudget < 0:
		return fmt.Errorf("%w: negative time budget %v", ErrInvalidConfig, c.TimeBudget)
	case c.NodeBudget == 0 && c.TimeBudget == 0:
		return fmt.Errorf("%w: need a node budget or a time budget", ErrInvalidConfig)
	case c.DrawCount != 0 && c.DrawCount != 1 && c.DrawCount != 3:
		return fmt.Errorf("%w: draw count must be 1 or 3, got %d", ErrInvalidConfig, c.DrawCount)
	case c.DepthPenalty < 0:
		return fmt.Errorf("%w: negative depth penalty %v", ErrInvalidConfig, c.DepthPenalty)
	case c.Threads < 0:
		return fmt.Errorf("%w: negative thread count %d", ErrInvalidConfig, c.Threads)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

type Option func(*Solver)

// WithMoveGenerator replaces the default generator. The factory is
// called once per search thread.
func WithMoveGenerator(f func() movegen.MoveGenerator) Option {
	return func(s *Solver) {
		s.newGen = f
	}
}

// WithEvaluator replaces the weighted evaluator built from
// Config.Weights. It is shared between threads, so it must be safe for
// concurrent use.
func WithEvaluator(e heuristic.Evaluator) Option {
	return func(s *Solver) {
		s.eval = e
	}
}

// WithLogStream makes the solver write a YAML trace of every expansion
// to w. Only for debugging small searches.
func WithLogStream(w io.Writer) Option {
	return func(s *Solver) {
		s.logStream = w
	}
}
