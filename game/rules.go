package game

import (
	"fmt"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/move"
)

// movableRun is the length of the ordered, alternating-colour run of
// face-up cards at the top of column col.
func (g *Game) movableRun(col int) int {
	pile := g.tableau[col]
	n := len(pile)
	if n == 0 {
		return 0
	}
	run := 1
	for i := n - 1; i > g.hidden[col]; i-- {
		if !pile[i].CanStackOn(pile[i-1]) {
			break
		}
		run++
	}
	return run
}

func (g *Game) drawSize() int {
	return min(g.drawCount, len(g.stock))
}

// topOf returns the card that would leave from a waste or foundation
// source, or card.NoCard.
func (g *Game) topOf(l move.Location) card.Card {
	switch {
	case l == move.Waste:
		if len(g.waste) == 0 {
			return card.NoCard
		}
		return g.waste[len(g.waste)-1]
	case l.IsFoundation():
		s := l.FoundationSuit()
		if g.foundations[s] == 0 {
			return card.NoCard
		}
		return card.New(s, card.Rank(g.foundations[s]))
	case l.IsTableau():
		return g.below(l.TableauIndex())
	}
	return card.NoCard
}

// accepts reports whether lead (the bottom card of what is moving) can be
// placed on destination to. wholeColumn marks a move of an entire
// tableau column, which is never allowed into an empty column.
func (g *Game) accepts(to move.Location, lead card.Card, count int, wholeColumn bool) bool {
	switch {
	case to.IsFoundation():
		s := to.FoundationSuit()
		return count == 1 && lead.Suit() == s &&
			int(lead.Rank()) == g.foundations[s]+1
	case to.IsTableau():
		col := to.TableauIndex()
		if len(g.tableau[col]) == 0 {
			return lead.Rank() == card.King && !wholeColumn
		}
		return lead.CanStackOn(g.below(col))
	}
	return false
}

// ValidateMove returns an error wrapping ErrIllegalMove if m cannot be
// played now.
func (g *Game) ValidateMove(m move.Move) error {
	if !g.Playing() {
		return fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	switch m.Action() {
	case move.Draw:
		if len(g.stock) == 0 {
			return fmt.Errorf("%w: stock is empty", ErrIllegalMove)
		}
		if m.Count() != g.drawSize() {
			return fmt.Errorf("%w: draw must turn %d cards", ErrIllegalMove, g.drawSize())
		}
		return nil
	case move.Recycle:
		if len(g.stock) != 0 || len(g.waste) == 0 {
			return fmt.Errorf("%w: can only recycle a non-empty waste onto an empty stock",
				ErrIllegalMove)
		}
		if m.Count() != len(g.waste) {
			return fmt.Errorf("%w: recycle must turn %d cards", ErrIllegalMove, len(g.waste))
		}
		return nil
	}

	from, to, count := m.From(), m.To(), m.Count()
	if from == to || count < 1 {
		return fmt.Errorf("%w: %v", ErrIllegalMove, m)
	}
	var lead card.Card
	wholeColumn := false
	switch {
	case from == move.Waste || from.IsFoundation():
		if count != 1 {
			return fmt.Errorf("%w: only one card leaves %v", ErrIllegalMove, from)
		}
		if from.IsFoundation() && !to.IsTableau() {
			return fmt.Errorf("%w: foundation cards only go back to the tableau", ErrIllegalMove)
		}
		lead = g.topOf(from)
	case from.IsTableau():
		col := from.TableauIndex()
		if count > g.movableRun(col) {
			return fmt.Errorf("%w: %v has no movable run of %d", ErrIllegalMove, from, count)
		}
		pile := g.tableau[col]
		lead = pile[len(pile)-count]
		wholeColumn = count == len(pile)
	default:
		return fmt.Errorf("%w: cannot move from %v", ErrIllegalMove, from)
	}
	if lead == card.NoCard {
		return fmt.Errorf("%w: %v is empty", ErrIllegalMove, from)
	}
	if !g.accepts(to, lead, count, wholeColumn) {
		return fmt.Errorf("%w: %v cannot go on %v", ErrIllegalMove, lead, to)
	}
	return nil
}

// LegalMoves appends every legal move to buf, ordered by source,
// destination and count, and returns it.
func (g *Game) LegalMoves(buf []move.Move) []move.Move {
	var runs [NumColumns]int
	for i := range runs {
		runs[i] = g.movableRun(i)
	}
	return g.appendLegalMoves(buf, &runs)
}

func (g *Game) appendLegalMoves(buf []move.Move, runs *[NumColumns]int) []move.Move {
	if !g.Playing() {
		return buf
	}
	if len(g.stock) > 0 {
		buf = append(buf, move.NewDraw(g.drawSize()))
	}
	if len(g.waste) > 0 {
		if len(g.stock) == 0 {
			buf = append(buf, move.NewRecycle(len(g.waste)))
		}
		top := g.waste[len(g.waste)-1]
		buf = g.appendDestinations(buf, move.Waste, top)
	}
	for s := card.Suit(0); s < card.NumSuits; s++ {
		if g.foundations[s] == 0 {
			continue
		}
		top := card.New(s, card.Rank(g.foundations[s]))
		for j := 0; j < NumColumns; j++ {
			to := move.Tableau(j)
			if g.accepts(to, top, 1, false) {
				buf = append(buf, move.NewTransfer(move.Foundation(s), to, 1))
			}
		}
	}
	for i := 0; i < NumColumns; i++ {
		if runs[i] == 0 {
			continue
		}
		pile := g.tableau[i]
		from := move.Tableau(i)
		top := pile[len(pile)-1]
		faceUp := len(pile) - g.hidden[i]
		for s := card.Suit(0); s < card.NumSuits; s++ {
			to := move.Foundation(s)
			if g.accepts(to, top, 1, false) {
				buf = append(buf, g.annotate(move.NewTransfer(from, to, 1), i, faceUp))
			}
		}
		for j := 0; j < NumColumns; j++ {
			if j == i {
				continue
			}
			to := move.Tableau(j)
			for n := 1; n <= runs[i]; n++ {
				lead := pile[len(pile)-n]
				if g.accepts(to, lead, n, n == len(pile)) {
					buf = append(buf, g.annotate(move.NewTransfer(from, to, n), i, faceUp))
				}
			}
		}
	}
	return buf
}

// appendDestinations adds every single-card move of c off the waste.
func (g *Game) appendDestinations(buf []move.Move, from move.Location, c card.Card) []move.Move {
	for s := card.Suit(0); s < card.NumSuits; s++ {
		to := move.Foundation(s)
		if g.accepts(to, c, 1, false) {
			buf = append(buf, move.NewTransfer(from, to, 1))
		}
	}
	for j := 0; j < NumColumns; j++ {
		to := move.Tableau(j)
		if g.accepts(to, c, 1, false) {
			buf = append(buf, move.NewTransfer(from, to, 1))
		}
	}
	return buf
}

func (g *Game) annotate(m move.Move, col, faceUp int) move.Move {
	n := m.Count()
	return m.WithEffects(n == faceUp && g.hidden[col] > 0, n == len(g.tableau[col]))
}

// PlayMove validates and applies m. On error the game is unchanged.
func (g *Game) PlayMove(m move.Move) error {
	if err := g.ValidateMove(m); err != nil {
		return err
	}
	switch m.Action() {
	case move.Draw:
		for i := 0; i < m.Count(); i++ {
			g.pushWaste(g.popStock())
		}
	case move.Recycle:
		for len(g.waste) > 0 {
			g.pushStock(g.popWaste())
		}
		g.recycles++
		g.addScore(RecycleScore)
	case move.Transfer:
		g.transfer(m)
	}
	g.moves++
	g.version++
	if g.foundationTotal() == card.DeckSize {
		g.status = StatusWon
	}
	return nil
}

func (g *Game) transfer(m move.Move) {
	from, to, count := m.From(), m.To(), m.Count()

	var moving [card.NumRanks]card.Card
	switch {
	case from == move.Waste:
		moving[0] = g.popWaste()
	case from.IsFoundation():
		moving[0] = g.popFoundation(from.FoundationSuit())
	default:
		col := from.TableauIndex()
		for i := count - 1; i >= 0; i-- {
			moving[i] = g.popTableau(col)
		}
	}

	if to.IsFoundation() {
		g.pushFoundation(to.FoundationSuit())
	} else {
		col := to.TableauIndex()
		for _, c := range moving[:count] {
			g.pushTableau(col, c)
		}
	}

	switch {
	case from == move.Waste && to.IsFoundation():
		g.addScore(WasteToFoundationScore)
	case from == move.Waste:
		g.addScore(WasteToTableauScore)
	case from.IsTableau() && to.IsFoundation():
		g.addScore(TableauToFoundationScore)
	case from.IsFoundation():
		g.addScore(FoundationToTableauScore)
	}

	if from.IsTableau() {
		col := from.TableauIndex()
		if n := len(g.tableau[col]); n > 0 && g.hidden[col] == n {
			g.flip(col)
			g.addScore(RevealScore)
		}
	}
}

func (g *Game) addScore(delta int) {
	g.score = max(0, g.score+delta)
}
