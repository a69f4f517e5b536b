// Package testhelpers has positions shared by tests across packages.
// They are returned as text so that any package can use them.
package testhelpers

import (
	"fmt"
	"strings"

	"github.com/domino14/solitaire/card"
)

// SolvedLayout has each suit in its own face-up column, king at the
// bottom and ace on top, so that all 52 cards go straight to the
// foundations.
func SolvedLayout() string {
	var sb strings.Builder
	sb.WriteString("draw 1\n")
	for s := card.Suit(0); s < card.NumSuits; s++ {
		fmt.Fprintf(&sb, "T%d", s+1)
		for r := card.King; r >= card.Ace; r-- {
			sb.WriteString(" " + card.New(s, r).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DrawOnlyLayout deals seven red cards that cannot move anywhere and
// leaves the other 45 in the stock, ace of spades on top.
func DrawOnlyLayout() string {
	tops := []string{"2H", "3H", "4H", "5H", "2D", "3D", "4D"}
	used := map[string]bool{"AS": true}
	var sb strings.Builder
	sb.WriteString("draw 1\n")
	for i, t := range tops {
		fmt.Fprintf(&sb, "T%d %s\n", i+1, t)
		used[t] = true
	}
	sb.WriteString("S")
	for _, c := range card.NewDeck() {
		if !used[c.String()] {
			sb.WriteString(" " + c.String())
		}
	}
	sb.WriteString(" AS\n")
	return sb.String()
}

// AlmostWonLayout is four foundation moves from a win: the king of
// spades sits on the waste and the top hearts are split over two columns.
func AlmostWonLayout() string {
	return "draw 3\nFH 10\nFD 13\nFC 13\nFS 12\nT1 KH QH\nT2 JH\nW KS\n"
}

// Seeds are deals known to exercise the whole rule set.
var Seeds = []uint64{1, 2, 3, 7, 42, 1234, 98765}
