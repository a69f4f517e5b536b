// Package movegen orders the legal moves of a position so that the
// search tries the promising ones first.
package movegen

import (
	"slices"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
)

// MoveGenerator lists candidate moves for the position behind a view.
// The list is empty when the game is stuck or already won. The returned
// slice belongs to the generator and is only valid until the next call.
type MoveGenerator interface {
	GenAll(v *game.View) []move.Move
}

// Priority classes, best first.
const (
	ClassToFoundation = iota
	ClassOpensTableau
	ClassWasteToTableau
	ClassTableauShuffle
	ClassFromFoundation
	ClassDraw
	ClassRecycle
)

// Class returns the priority class of m. Lower is tried first.
func Class(m move.Move) int {
	switch {
	case m.Action() == move.Draw:
		return ClassDraw
	case m.Action() == move.Recycle:
		return ClassRecycle
	case m.To().IsFoundation():
		return ClassToFoundation
	case m.From() == move.Waste:
		return ClassWasteToTableau
	case m.From().IsFoundation():
		return ClassFromFoundation
	case m.Reveals() || m.EmptiesColumn():
		return ClassOpensTableau
	}
	return ClassTableauShuffle
}

// Generator sorts the rules' moves by Class, keeping the rules order
// (source, destination, count) within a class. It is not safe for
// concurrent use; give each search thread its own.
type Generator struct {
	plays []move.Move
}

func NewGenerator() *Generator {
	return &Generator{plays: make([]move.Move, 0, 64)}
}

func (gen *Generator) GenAll(v *game.View) []move.Move {
	gen.plays = append(gen.plays[:0], v.LegalMoves()...)
	slices.SortStableFunc(gen.plays, func(a, b move.Move) int {
		return Class(a) - Class(b)
	})
	return gen.plays
}

// Plays returns the moves from the last GenAll call.
func (gen *Generator) Plays() []move.Move {
	return gen.plays
}
