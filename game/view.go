package game

import (
	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/move"
)

// View is a read-only window onto one Game at one version. Making one
// copies nothing. Face-down card identities are not exposed.
//
// Composite facts are computed on first use and cached in the view.
// Every query panics with ErrStaleView once the game has been mutated
// after the view was made. A View must not be shared between
// goroutines.
type View struct {
	g       *Game
	version uint64

	runsDone bool
	runs     [NumColumns]int

	countsDone bool
	faceUp     int
	faceDown   int
	empty      int

	legalDone bool
	legal     []move.Move
}

func NewView(g *Game) *View {
	return &View{g: g, version: g.version}
}

// View is shorthand for NewView(g).
func (g *Game) View() *View {
	return NewView(g)
}

// Rebind points v at g, dropping cached facts but keeping buffers.
func (v *View) Rebind(g *Game) {
	legal := v.legal[:0]
	*v = View{g: g, version: g.version, legal: legal}
}

// Stale is true once the underlying game has changed.
func (v *View) Stale() bool {
	return v.g.version != v.version
}

func (v *View) check() {
	if v.Stale() {
		panic(ErrStaleView)
	}
}

func (v *View) ColumnLen(i int) int {
	v.check()
	return len(v.g.tableau[i])
}

func (v *View) HiddenCount(i int) int {
	v.check()
	return v.g.hidden[i]
}

// FaceUp returns the face-up part of column i, bottom to top. Callers
// must not modify it.
func (v *View) FaceUp(i int) []card.Card {
	v.check()
	return v.g.tableau[i][v.g.hidden[i]:]
}

// TopOfColumn is card.NoCard for an empty column.
func (v *View) TopOfColumn(i int) card.Card {
	v.check()
	return v.g.below(i)
}

func (v *View) Stock() []card.Card {
	v.check()
	return v.g.stock
}

func (v *View) StockLen() int {
	v.check()
	return len(v.g.stock)
}

func (v *View) Waste() []card.Card {
	v.check()
	return v.g.waste
}

func (v *View) WasteLen() int {
	v.check()
	return len(v.g.waste)
}

// TopOfWaste is card.NoCard for an empty waste.
func (v *View) TopOfWaste() card.Card {
	v.check()
	return v.g.topOf(move.Waste)
}

func (v *View) FoundationLen(s card.Suit) int {
	v.check()
	return v.g.foundations[s]
}

// FoundationTop is card.NoCard for an empty foundation.
func (v *View) FoundationTop(s card.Suit) card.Card {
	v.check()
	return v.g.topOf(move.Foundation(s))
}

func (v *View) DrawCount() int {
	v.check()
	return v.g.drawCount
}

func (v *View) Recycles() int {
	v.check()
	return v.g.recycles
}

func (v *View) MoveCount() int {
	v.check()
	return v.g.moves
}

func (v *View) Score() int {
	v.check()
	return v.g.score
}

func (v *View) IsWon() bool {
	v.check()
	return v.g.IsWon()
}

func (v *View) ensureRuns() {
	if v.runsDone {
		return
	}
	for i := range v.runs {
		v.runs[i] = v.g.movableRun(i)
	}
	v.runsDone = true
}

// MovableRun is the length of the ordered run at the top of column i.
func (v *View) MovableRun(i int) int {
	v.check()
	v.ensureRuns()
	return v.runs[i]
}

// RunStart reports whether position pos of column i (0 at the bottom)
// begins a run that can be picked up as a unit.
func (v *View) RunStart(i, pos int) bool {
	v.check()
	v.ensureRuns()
	n := len(v.g.tableau[i])
	return pos >= n-v.runs[i] && pos < n
}

func (v *View) ensureCounts() {
	if v.countsDone {
		return
	}
	for i, col := range v.g.tableau {
		v.faceDown += v.g.hidden[i]
		v.faceUp += len(col) - v.g.hidden[i]
		if len(col) == 0 {
			v.empty++
		}
	}
	v.countsDone = true
}

// FaceUpCount counts face-up tableau cards.
func (v *View) FaceUpCount() int {
	v.check()
	v.ensureCounts()
	return v.faceUp
}

// FaceDownCount counts face-down tableau cards.
func (v *View) FaceDownCount() int {
	v.check()
	v.ensureCounts()
	return v.faceDown
}

func (v *View) EmptyColumns() int {
	v.check()
	v.ensureCounts()
	return v.empty
}

func (v *View) FoundationCount() int {
	v.check()
	return v.g.foundationTotal()
}

func (v *View) CanDraw() bool {
	v.check()
	return v.g.Playing() && len(v.g.stock) > 0
}

func (v *View) CanRecycle() bool {
	v.check()
	return v.g.Playing() && len(v.g.stock) == 0 && len(v.g.waste) > 0
}

// LegalMoves lists the legal moves in rules order. The slice belongs to
// the view.
func (v *View) LegalMoves() []move.Move {
	v.check()
	if !v.legalDone {
		v.ensureRuns()
		v.legal = v.g.appendLegalMoves(v.legal[:0], &v.runs)
		v.legalDone = true
	}
	return v.legal
}
