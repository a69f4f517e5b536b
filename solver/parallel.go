package solver

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
)

// SolveParallel splits the root's moves round-robin over workers. Each
// worker owns a copy of the position, its own visited set and an even
// share of the node budget. The first worker to win cancels the rest.
// Which worker wins first depends on scheduling, so unlike Solve the
// result is not reproducible. workers <= 0 means Config.Threads.
func (s *Solver) SolveParallel(ctx context.Context, g *game.Game, workers int) (*Result, error) {
	if workers <= 0 {
		workers = max(1, s.cfg.Threads)
	}
	if err := s.begin(g); err != nil {
		return nil, err
	}

	root := g.Copy()
	rootMoves := append([]move.Move(nil), s.newGen().GenAll(root.View())...)
	workers = min(workers, len(rootMoves))
	if workers <= 1 || root.IsWon() {
		res := s.search(ctx, root, s.cfg.NodeBudget, nil, 0)
		s.status = res.Status
		res.log()
		return res, nil
	}

	log.Info().
		Str("deal", g.DealID()).
		Int("workers", workers).
		Int("root-moves", len(rootMoves)).
		Int("node-budget", s.cfg.NodeBudget).
		Dur("time-budget", s.cfg.TimeBudget).
		Msg("parallel-solve-starting")

	budget := s.cfg.NodeBudget
	if budget > 0 {
		budget = max(1, budget/workers)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var firstWin *Result
	results := make([]*Result, workers)
	eg, ectx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		var share []move.Move
		for i := w; i < len(rootMoves); i += workers {
			share = append(share, rootMoves[i])
		}
		eg.Go(func() error {
			res := s.search(ectx, root.Copy(), budget, share, w)
			results[w] = res
			log.Debug().Int("thread", w).Str("outcome", res.Outcome.String()).
				Int("popped", res.Stats.Popped).Msg("worker-done")
			if res.Outcome == OutcomeWon {
				mu.Lock()
				if firstWin == nil {
					firstWin = res
				}
				mu.Unlock()
				cancel()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := combine(results, firstWin)
	s.status = res.Status
	res.log()
	return res, nil
}

// combine picks the first win, or else the highest-scoring plan (lowest
// worker on ties), and sums the stats.
func combine(results []*Result, firstWin *Result) *Result {
	var stats Stats
	exhausted := true
	var best *Result
	for _, r := range results {
		stats.add(r.Stats)
		if r.Status != StatusExhausted {
			exhausted = false
		}
		if r.Outcome == OutcomeStuck {
			continue
		}
		if best == nil || r.Score > best.Score {
			best = r
		}
	}
	var out Result
	switch {
	case firstWin != nil:
		out = *firstWin
	case best != nil:
		out = *best
	default:
		out = *results[0]
	}
	if firstWin == nil {
		out.Status = StatusBudgetExceeded
		if exhausted {
			out.Status = StatusExhausted
		}
	}
	out.Stats = stats
	return &out
}
