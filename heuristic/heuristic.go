// Package heuristic scores positions for the search. Scores are only
// compared with each other; higher means closer to a win.
package heuristic

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/solitaire/game"
)

// Evaluator scores the position behind a view. Implementations must be
// pure: the same visible position always gets the same score.
type Evaluator interface {
	Evaluate(v *game.View) float64
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(v *game.View) float64

func (f EvaluatorFunc) Evaluate(v *game.View) float64 { return f(v) }

// Weights are the knobs of the weighted evaluator. Each one multiplies
// a count taken from the view.
type Weights struct {
	// per card on a foundation
	Foundation float64 `mapstructure:"foundation" yaml:"foundation"`

	// per face-up tableau card
	FaceUp float64 `mapstructure:"face_up" yaml:"face_up"`

	// per face-down tableau card; normally negative
	FaceDown float64 `mapstructure:"face_down" yaml:"face_down"`

	// per empty tableau column
	EmptyColumn float64 `mapstructure:"empty_column" yaml:"empty_column"`

	// per card left in stock and waste; normally negative
	StockWaste float64 `mapstructure:"stock_waste" yaml:"stock_waste"`

	// per recycle of the waste so far; normally negative
	Recycle float64 `mapstructure:"recycle" yaml:"recycle"`

	// added once the game is won
	Won float64 `mapstructure:"won" yaml:"won"`
}

func DefaultWeights() Weights {
	return Weights{
		Foundation:  10,
		FaceUp:      1,
		FaceDown:    -5,
		EmptyColumn: 3,
		StockWaste:  -1,
		Recycle:     -2,
		Won:         1000,
	}
}

// Validate rejects weights that would reward going backwards.
func (w Weights) Validate() error {
	switch {
	case w.Foundation < 0:
		return fmt.Errorf("foundation weight must not be negative: %v", w.Foundation)
	case w.FaceUp < 0:
		return fmt.Errorf("face_up weight must not be negative: %v", w.FaceUp)
	case w.FaceDown > 0:
		return fmt.Errorf("face_down weight must not be positive: %v", w.FaceDown)
	case w.EmptyColumn < 0:
		return fmt.Errorf("empty_column weight must not be negative: %v", w.EmptyColumn)
	}
	return nil
}

type term struct {
	name   string
	weight float64
	count  func(v *game.View) int
}

// WeightedEvaluator sums weight times count over its terms.
type WeightedEvaluator struct {
	weights Weights
	terms   []term
}

func NewWeightedEvaluator(w Weights) *WeightedEvaluator {
	terms := []term{
		{"foundation", w.Foundation, (*game.View).FoundationCount},
		{"face_up", w.FaceUp, (*game.View).FaceUpCount},
		{"face_down", w.FaceDown, (*game.View).FaceDownCount},
		{"empty_column", w.EmptyColumn, (*game.View).EmptyColumns},
		{"stock_waste", w.StockWaste, func(v *game.View) int { return v.StockLen() + v.WasteLen() }},
		{"recycle", w.Recycle, (*game.View).Recycles},
		{"won", w.Won, func(v *game.View) int {
			if v.IsWon() {
				return 1
			}
			return 0
		}},
	}
	// Zero-weight terms cost a view query and add nothing.
	terms = lo.Filter(terms, func(t term, _ int) bool { return t.weight != 0 })
	return &WeightedEvaluator{weights: w, terms: terms}
}

func (e *WeightedEvaluator) Weights() Weights {
	return e.weights
}

func (e *WeightedEvaluator) Evaluate(v *game.View) float64 {
	return lo.SumBy(e.terms, func(t term) float64 {
		return t.weight * float64(t.count(v))
	})
}

// Explain breaks a score into its weighted terms.
func (e *WeightedEvaluator) Explain(v *game.View) map[string]float64 {
	return lo.SliceToMap(e.terms, func(t term) (string, float64) {
		return t.name, t.weight * float64(t.count(v))
	})
}
