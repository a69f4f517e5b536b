// Package solver searches for a winning line of play with a best-first
// search over deduplicated positions, bounded by node and time budgets.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/movegen"
)

var (
	ErrExhaustedSearch = errors.New("search space exhausted without a win")
	ErrBudgetExceeded  = errors.New("search budget exceeded without a win")
	ErrSolverNotIdle   = errors.New("solver already ran; call Reset first")
	ErrInvalidConfig   = errors.New("invalid solver configuration")
)

// Status is the state of one search run. Won, Exhausted and
// BudgetExceeded are terminal until Reset.
type Status uint8

const (
	StatusIdle Status = iota
	StatusRunning
	StatusWon
	StatusExhausted
	StatusBudgetExceeded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusWon:
		return "won"
	case StatusExhausted:
		return "exhausted"
	case StatusBudgetExceeded:
		return "budget-exceeded"
	}
	return "unknown"
}

const progressInterval = 100_000

// Solver runs best-first searches. Every node owns an independent copy
// of its position, so abandoning a branch only means dropping nodes;
// nothing is ever undone. A Solver is not safe for concurrent use.
type Solver struct {
	cfg       Config
	eval      heuristic.Evaluator
	newGen    func() movegen.MoveGenerator
	logStream io.Writer

	status Status

	// onExpand, when set, sees the fingerprint of every expanded node.
	onExpand func(fp uint64)
}

func NewSolver(cfg Config, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{cfg: cfg}
	for _, o := range opts {
		o(s)
	}
	if s.eval == nil {
		s.eval = heuristic.NewWeightedEvaluator(cfg.Weights)
	}
	if s.newGen == nil {
		s.newGen = func() movegen.MoveGenerator { return movegen.NewGenerator() }
	}
	return s, nil
}

func (s *Solver) Config() Config { return s.cfg }

func (s *Solver) Status() Status { return s.status }

// Reset returns a finished solver to Idle.
func (s *Solver) Reset() {
	s.status = StatusIdle
}

func (s *Solver) begin(g *game.Game) error {
	if s.status != StatusIdle {
		return ErrSolverNotIdle
	}
	if g == nil {
		return fmt.Errorf("%w: no game", game.ErrInvalidDeal)
	}
	if s.cfg.DrawCount != 0 && g.DrawCount() != s.cfg.DrawCount {
		return fmt.Errorf("%w: game draws %d, solver is set up for %d",
			game.ErrInvalidDeal, g.DrawCount(), s.cfg.DrawCount)
	}
	if err := g.CheckInvariants(); err != nil {
		return fmt.Errorf("%w: %w", game.ErrInvalidDeal, err)
	}
	s.status = StatusRunning
	return nil
}

// Solve searches from g, which is left untouched. The returned error is
// only for runs that could not start; how a run ended is in the
// Result, whose Err method maps it onto ErrExhaustedSearch and
// ErrBudgetExceeded.
func (s *Solver) Solve(ctx context.Context, g *game.Game) (*Result, error) {
	if err := s.begin(g); err != nil {
		return nil, err
	}
	log.Info().
		Str("deal", g.DealID()).
		Int("node-budget", s.cfg.NodeBudget).
		Dur("time-budget", s.cfg.TimeBudget).
		Float64("depth-penalty", s.cfg.DepthPenalty).
		Msg("solve-starting")

	res := s.search(ctx, g.Copy(), s.cfg.NodeBudget, nil, 0)
	s.status = res.Status
	res.log()
	return res, nil
}

// promote makes n the best node, releasing the state held by the one it
// replaces. The root keeps its state.
func promote(prev, n, root *node) *node {
	if prev != root {
		prev.state = nil
	}
	return n
}

func (s *Solver) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.TimeBudget > 0 {
		return context.WithTimeout(ctx, s.cfg.TimeBudget)
	}
	return context.WithCancel(ctx)
}

// search runs one best-first search from root. If firstMoves is not
// nil, the root is expanded with those moves instead of the generator's.
func (s *Solver) search(ctx context.Context, root *game.Game, nodeBudget int,
	firstMoves []move.Move, thread int) *Result {

	ctx, cancel := s.withBudget(ctx)
	defer cancel()

	tstart := time.Now()
	gen := s.newGen()
	trace := s.logStream
	if firstMoves != nil {
		// parallel workers would interleave their traces
		trace = nil
	}
	visited := make(map[uint64]struct{})
	stats := Stats{}
	// v looks at the node being expanded, cv at each child in turn.
	v, cv := game.NewView(root), game.NewView(root)

	rootNode := &node{state: root, score: s.eval.Evaluate(v)}
	rootNode.priority = rootNode.score
	pq := &frontier{}
	pq.push(rootNode)
	var seq uint64

	best, bestState := rootNode, root
	// firstChild is the root's most promising move, the fallback plan
	// when the budget runs out before anything beats the root.
	var firstChild *node
	var firstState *game.Game
	status := StatusExhausted
	var won *node

	for pq.Len() > 0 {
		if nodeBudget > 0 && stats.Popped >= nodeBudget {
			status = StatusBudgetExceeded
			break
		}
		if ctx.Err() != nil {
			status = StatusBudgetExceeded
			break
		}
		n := pq.pop()
		stats.Popped++
		if stats.Popped%progressInterval == 0 {
			log.Debug().Int("thread", thread).Int("popped", stats.Popped).
				Int("frontier", pq.Len()).Int("visited", len(visited)).
				Msg("search-progress")
		}

		fp := n.state.Fingerprint()
		if _, seen := visited[fp]; seen {
			stats.Duplicates++
			n.state = nil
			continue
		}
		visited[fp] = struct{}{}

		if n.state.IsWon() {
			won = n
			status = StatusWon
			break
		}
		if n.score > best.score {
			best = promote(best, n, rootNode)
			bestState = n.state
		}

		if s.onExpand != nil {
			s.onExpand(fp)
		}
		stats.Expanded++
		v.Rebind(n.state)
		moves := firstMoves
		if n != rootNode || firstMoves == nil {
			moves = gen.GenAll(v)
		}
		if trace != nil {
			fmt.Fprintf(trace, "- pop: %d\n  depth: %d\n  score: %.2f\n  move: %q\n  children:\n",
				stats.Popped, n.depth, n.score, n.move.String())
		}
		for _, m := range moves {
			child := n.state.Copy()
			if err := child.PlayMove(m); err != nil {
				// The generator only offers legal moves.
				panic(fmt.Sprintf("generated move %v is illegal: %v", m, err))
			}
			cv.Rebind(child)
			score := s.eval.Evaluate(cv)
			depth := n.depth + 1
			seq++
			cn := &node{
				state:    child,
				parent:   n,
				move:     m,
				depth:    depth,
				score:    score,
				priority: score - s.cfg.DepthPenalty*float64(depth),
				seq:      seq,
			}
			if firstChild == nil {
				firstChild, firstState = cn, child
			}
			pq.push(cn)
			stats.Generated++
			if trace != nil {
				fmt.Fprintf(trace, "  - move: %q\n    score: %.2f\n", m.String(), score)
			}
		}
		stats.MaxFrontier = max(stats.MaxFrontier, pq.Len())
		// The popped state is no longer needed unless it is the best so far.
		if n.state != bestState {
			n.state = nil
		}
	}
	stats.Elapsed = time.Since(tstart)

	res := &Result{Status: status, Stats: stats}
	switch {
	case won != nil:
		res.Outcome = OutcomeWon
		res.Moves = won.path()
		res.Final = won.state
		res.Score = won.score
	case best == rootNode && status == StatusExhausted:
		res.Outcome = OutcomeStuck
		res.Moves = move.List{}
		res.Final = root
		res.Score = rootNode.score
	case best == rootNode && firstChild != nil:
		res.Outcome = OutcomeBestEffort
		res.Moves = move.List{firstChild.move}
		res.Final = firstState
		res.Score = firstChild.score
	case best == rootNode:
		// stopped before the root was expanded
		res.Outcome = OutcomeBestEffort
		res.Moves = move.List{}
		res.Final = root
		res.Score = rootNode.score
	default:
		res.Outcome = OutcomeBestEffort
		res.Moves = best.path()
		res.Final = bestState
		res.Score = best.score
	}
	return res
}
