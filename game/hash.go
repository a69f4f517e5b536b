package game

import "github.com/domino14/solitaire/card"

// The pile primitives below are the only code that changes pile
// contents. Each keeps the fingerprint in step.

func (g *Game) below(col int) card.Card {
	n := len(g.tableau[col])
	if n == 0 {
		return card.NoCard
	}
	return g.tableau[col][n-1]
}

func (g *Game) pushTableau(col int, c card.Card) {
	g.hash ^= g.z.Tableau(c, g.below(col), true)
	g.tableau[col] = append(g.tableau[col], c)
}

func (g *Game) popTableau(col int) card.Card {
	n := len(g.tableau[col])
	c := g.tableau[col][n-1]
	g.tableau[col] = g.tableau[col][:n-1]
	g.hash ^= g.z.Tableau(c, g.below(col), true)
	return c
}

// flip turns the top card of col face up.
func (g *Game) flip(col int) {
	n := len(g.tableau[col])
	c := g.tableau[col][n-1]
	var under card.Card
	if n > 1 {
		under = g.tableau[col][n-2]
	}
	g.hash ^= g.z.Tableau(c, under, false) ^ g.z.Tableau(c, under, true)
	g.hidden[col]--
}

func (g *Game) pushStock(c card.Card) {
	g.hash ^= g.z.Stock(len(g.stock), c)
	g.stock = append(g.stock, c)
}

func (g *Game) popStock() card.Card {
	n := len(g.stock) - 1
	c := g.stock[n]
	g.stock = g.stock[:n]
	g.hash ^= g.z.Stock(n, c)
	return c
}

func (g *Game) pushWaste(c card.Card) {
	g.hash ^= g.z.Waste(len(g.waste), c)
	g.waste = append(g.waste, c)
}

func (g *Game) popWaste() card.Card {
	n := len(g.waste) - 1
	c := g.waste[n]
	g.waste = g.waste[:n]
	g.hash ^= g.z.Waste(n, c)
	return c
}

func (g *Game) pushFoundation(s card.Suit) {
	n := g.foundations[s]
	g.hash ^= g.z.Foundation(s, n) ^ g.z.Foundation(s, n+1)
	g.foundations[s]++
}

func (g *Game) popFoundation(s card.Suit) card.Card {
	n := g.foundations[s]
	g.hash ^= g.z.Foundation(s, n) ^ g.z.Foundation(s, n-1)
	g.foundations[s]--
	return card.New(s, card.Rank(n))
}

// computeHash recomputes the fingerprint from scratch.
func (g *Game) computeHash() uint64 {
	var h uint64
	for i, col := range g.tableau {
		for j, c := range col {
			under := card.NoCard
			if j > 0 {
				under = col[j-1]
			}
			h ^= g.z.Tableau(c, under, j >= g.hidden[i])
		}
	}
	for p, c := range g.stock {
		h ^= g.z.Stock(p, c)
	}
	for p, c := range g.waste {
		h ^= g.z.Waste(p, c)
	}
	for s, n := range g.foundations {
		h ^= g.z.Foundation(card.Suit(s), n)
	}
	return h
}
