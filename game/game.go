// Package game holds the authoritative Klondike state, the rules that
// mutate it and the read-only View handed to decision makers.
package game

import (
	"errors"
	"fmt"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/zobrist"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrInvalidDeal = errors.New("invalid deal")
	ErrStaleView   = errors.New("view is stale: game changed since the view was made")
)

const NumColumns = move.NumTableau

// Scoring, as in the classic Windows rules.
const (
	WasteToFoundationScore   = 10
	WasteToTableauScore      = 5
	TableauToFoundationScore = 10
	FoundationToTableauScore = -15
	RevealScore              = 5
	RecycleScore             = -100
)

type Status uint8

const (
	StatusPlaying Status = iota
	StatusWon
)

func (s Status) String() string {
	if s == StatusWon {
		return "won"
	}
	return "playing"
}

// Game is the full position. Face-down cards in a column always form a
// prefix: hidden[i] cards at the bottom of column i are face down.
// The last element of every pile is its top.
type Game struct {
	tableau     [NumColumns][]card.Card
	hidden      [NumColumns]int
	foundations [card.NumSuits]int
	stock       []card.Card
	waste       []card.Card

	drawCount int
	seed      uint64
	moves     int
	recycles  int
	score     int
	status    Status

	// version changes on every mutation; views compare against it.
	version uint64
	hash    uint64
	z       *zobrist.Zobrist
}

func (g *Game) DrawCount() int { return g.drawCount }
func (g *Game) Seed() uint64   { return g.seed }
func (g *Game) MoveCount() int { return g.moves }
func (g *Game) Recycles() int  { return g.recycles }
func (g *Game) Score() int     { return g.score }
func (g *Game) Status() Status { return g.status }

// Fingerprint identifies the card layout: tableau piles with their face
// flags, foundations, stock and waste. Counters and score are not part
// of it. Column order does not matter.
func (g *Game) Fingerprint() uint64 { return g.hash }

func (g *Game) Version() uint64 { return g.version }

func (g *Game) IsWon() bool { return g.status == StatusWon }

func (g *Game) Playing() bool { return g.status == StatusPlaying }

// IsStuck is true when the game is not won and no legal move remains.
func (g *Game) IsStuck() bool {
	if g.IsWon() {
		return false
	}
	var buf [64]move.Move
	return len(g.LegalMoves(buf[:0])) == 0
}

// Column returns column i from bottom to top. Callers must not modify it.
func (g *Game) Column(i int) []card.Card { return g.tableau[i] }

func (g *Game) HiddenCount(i int) int { return g.hidden[i] }

// FoundationLen is the number of cards on the foundation of suit s.
func (g *Game) FoundationLen(s card.Suit) int { return g.foundations[s] }

func (g *Game) Stock() []card.Card { return g.stock }
func (g *Game) Waste() []card.Card { return g.waste }

func (g *Game) foundationTotal() int {
	t := 0
	for _, n := range g.foundations {
		t += n
	}
	return t
}

// Copy returns an independent game. All piles share one backing buffer
// with capacities clipped, so growing a pile in the copy reallocates it
// instead of clobbering a neighbour.
func (g *Game) Copy() *Game {
	cp := *g
	buf := make([]card.Card, card.DeckSize)
	off := 0
	clone := func(src []card.Card) []card.Card {
		n := len(src)
		dst := buf[off : off+n : off+n]
		copy(dst, src)
		off += n
		return dst
	}
	for i := range g.tableau {
		cp.tableau[i] = clone(g.tableau[i])
	}
	cp.stock = clone(g.stock)
	cp.waste = clone(g.waste)
	return &cp
}

// Apply returns a copy of g with m played on it. g is untouched.
func (g *Game) Apply(m move.Move) (*Game, error) {
	cp := g.Copy()
	if err := cp.PlayMove(m); err != nil {
		return nil, err
	}
	return cp, nil
}

// CheckInvariants verifies that the 52 cards are partitioned across the
// piles, that the face-down structure is sound and that the fingerprint
// matches the piles.
func (g *Game) CheckInvariants() error {
	if err := g.checkPartition(); err != nil {
		return err
	}
	if g.hash != g.computeHash() {
		return errors.New("fingerprint out of sync")
	}
	return nil
}

func (g *Game) checkPartition() error {
	var seen [card.DeckSize]bool
	mark := func(c card.Card, where string) error {
		if !c.Valid() {
			return fmt.Errorf("invalid card %v in %s", c, where)
		}
		if seen[c.Index()] {
			return fmt.Errorf("duplicate card %v in %s", c, where)
		}
		seen[c.Index()] = true
		return nil
	}
	for s := card.Suit(0); s < card.NumSuits; s++ {
		n := g.foundations[s]
		if n < 0 || n > card.NumRanks {
			return fmt.Errorf("foundation %v has %d cards", s, n)
		}
		for r := 1; r <= n; r++ {
			if err := mark(card.New(s, card.Rank(r)), "foundation"); err != nil {
				return err
			}
		}
	}
	for i, col := range g.tableau {
		if g.hidden[i] < 0 || g.hidden[i] > len(col) {
			return fmt.Errorf("column %d: %d hidden of %d", i+1, g.hidden[i], len(col))
		}
		if len(col) > 0 && g.hidden[i] == len(col) {
			return fmt.Errorf("column %d: top card is face down", i+1)
		}
		for _, c := range col {
			if err := mark(c, fmt.Sprintf("column %d", i+1)); err != nil {
				return err
			}
		}
	}
	for _, c := range g.stock {
		if err := mark(c, "stock"); err != nil {
			return err
		}
	}
	for _, c := range g.waste {
		if err := mark(c, "waste"); err != nil {
			return err
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("card %v is missing", card.FromIndex(i))
		}
	}
	return nil
}
