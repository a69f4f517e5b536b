package solver

import (
	"context"
	"time"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/movegen"
)

// Greedy is the baseline player: it never looks ahead and always takes
// the generator's first move into a position it has not seen yet.
type Greedy struct {
	gen  movegen.MoveGenerator
	eval heuristic.Evaluator
}

func NewGreedy(gen movegen.MoveGenerator, eval heuristic.Evaluator) *Greedy {
	return &Greedy{gen: gen, eval: eval}
}

// Next picks a move for g, skipping moves into fingerprints in seen.
// seen may be nil.
func (gr *Greedy) Next(g *game.Game, seen map[uint64]bool) (move.Move, bool) {
	for _, m := range gr.gen.GenAll(g.View()) {
		child, err := g.Apply(m)
		if err != nil {
			panic(err)
		}
		if !seen[child.Fingerprint()] {
			return m, true
		}
	}
	return move.Move{}, false
}

// Play runs Greedy from a copy of g for at most maxMoves moves
// (0 for no limit).
func (gr *Greedy) Play(ctx context.Context, g *game.Game, maxMoves int) *Result {
	tstart := time.Now()
	cur := g.Copy()
	seen := map[uint64]bool{cur.Fingerprint(): true}
	res := &Result{Status: StatusExhausted, Moves: move.List{}}
	for !cur.IsWon() {
		if ctx.Err() != nil || (maxMoves > 0 && len(res.Moves) >= maxMoves) {
			res.Status = StatusBudgetExceeded
			break
		}
		m, ok := gr.Next(cur, seen)
		if !ok {
			break
		}
		if err := cur.PlayMove(m); err != nil {
			panic(err)
		}
		seen[cur.Fingerprint()] = true
		res.Moves = append(res.Moves, m)
		res.Stats.Expanded++
	}
	res.Final = cur
	res.Score = gr.eval.Evaluate(cur.View())
	res.Stats.Popped = res.Stats.Expanded
	res.Stats.Elapsed = time.Since(tstart)
	switch {
	case cur.IsWon():
		res.Outcome = OutcomeWon
		res.Status = StatusWon
	case len(res.Moves) == 0:
		res.Outcome = OutcomeStuck
	default:
		res.Outcome = OutcomeBestEffort
	}
	return res
}
