package heuristic

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/testhelpers"
)

func TestEvaluateTerms(t *testing.T) {
	is := is.New(t)
	g, err := game.FromText(testhelpers.AlmostWonLayout())
	is.NoErr(err)
	e := NewWeightedEvaluator(DefaultWeights())
	v := g.View()
	// 48 foundation cards, 3 face up, 5 empty columns, 1 waste card
	is.Equal(e.Evaluate(v), 48*10.0+3*1.0+5*3.0-1.0)
	is.Equal(e.Evaluate(v), e.Evaluate(v))

	parts := e.Explain(v)
	is.Equal(parts["foundation"], 480.0)
	_, ok := parts["face_down"]
	is.True(ok)
}

func TestProgressScoresHigher(t *testing.T) {
	is := is.New(t)
	g, err := game.FromText(testhelpers.AlmostWonLayout())
	is.NoErr(err)
	e := NewWeightedEvaluator(DefaultWeights())
	before := e.Evaluate(g.View())
	child, err := g.Apply(move.NewTransfer(move.Waste, move.Foundation(card.Spades), 1))
	is.NoErr(err)
	is.True(e.Evaluate(child.View()) > before)

	won := child
	for _, m := range []move.Move{
		move.NewTransfer(move.Tableau(1), move.Foundation(card.Hearts), 1),
		move.NewTransfer(move.Tableau(0), move.Foundation(card.Hearts), 1),
		move.NewTransfer(move.Tableau(0), move.Foundation(card.Hearts), 1),
	} {
		is.NoErr(won.PlayMove(m))
	}
	is.True(won.IsWon())
	is.True(e.Evaluate(won.View()) > e.Evaluate(child.View())+DefaultWeights().Won-1)
}

func TestZeroWeightsDropped(t *testing.T) {
	is := is.New(t)
	e := NewWeightedEvaluator(Weights{Foundation: 1})
	is.Equal(len(e.terms), 1)
	g, err := game.Deal(1, 1)
	is.NoErr(err)
	is.Equal(e.Evaluate(g.View()), 0.0)
	is.Equal(e.Weights().Foundation, 1.0)
}

func TestValidate(t *testing.T) {
	is := is.New(t)
	is.NoErr(DefaultWeights().Validate())
	w := DefaultWeights()
	w.FaceDown = 2
	is.True(w.Validate() != nil)
	w = DefaultWeights()
	w.Foundation = -1
	is.True(w.Validate() != nil)
	w = DefaultWeights()
	w.FaceUp = -0.5
	is.True(w.Validate() != nil)
	w.FaceUp = 0
	is.NoErr(w.Validate())
}

func TestEvaluatorFunc(t *testing.T) {
	is := is.New(t)
	var e Evaluator = EvaluatorFunc(func(v *game.View) float64 { return float64(v.StockLen()) })
	g, err := game.Deal(2, 1)
	is.NoErr(err)
	is.Equal(e.Evaluate(g.View()), 24.0)
}
