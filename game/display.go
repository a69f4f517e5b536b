package game

import (
	"fmt"
	"strings"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/move"
)

// ToDisplayText draws the table for a terminal. Face-down cards show
// as ##.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder

	stockTop := "[  ]"
	if len(g.stock) > 0 {
		stockTop = "[##]"
	}
	wasteTop := "    "
	if n := len(g.waste); n > 0 {
		wasteTop = fmt.Sprintf("%4s", g.waste[n-1])
	}
	fmt.Fprintf(&sb, "%s %s (%d/%d)    ", stockTop, wasteTop, len(g.stock), len(g.waste))
	for s := card.Suit(0); s < card.NumSuits; s++ {
		if g.foundations[s] == 0 {
			fmt.Fprintf(&sb, " [%2s]", s)
			continue
		}
		fmt.Fprintf(&sb, " %4s", card.New(s, card.Rank(g.foundations[s])))
	}
	sb.WriteString("\n\n")

	for i := 0; i < NumColumns; i++ {
		fmt.Fprintf(&sb, " %4s", move.Tableau(i))
	}
	sb.WriteByte('\n')
	depth := 0
	for _, col := range g.tableau {
		depth = max(depth, len(col))
	}
	for row := 0; row < depth; row++ {
		for i, col := range g.tableau {
			switch {
			case row >= len(col):
				sb.WriteString("     ")
			case row < g.hidden[i]:
				sb.WriteString("   ##")
			default:
				fmt.Fprintf(&sb, " %4s", col[row])
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nmoves: %d  score: %d  recycles: %d  draw: %d  %v\n",
		g.moves, g.score, g.recycles, g.drawCount, g.status)
	return sb.String()
}
