package game

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/zobrist"
)

// Deal shuffles a deck deterministically from seed and lays out a
// standard Klondike deal: column i gets i+1 cards with only the top one
// face up, and the remaining 24 cards form the stock.
func Deal(seed uint64, drawCount int) (*Game, error) {
	if drawCount != 1 && drawCount != 3 {
		return nil, fmt.Errorf("%w: draw count must be 1 or 3, got %d", ErrInvalidDeal, drawCount)
	}
	deck := Shuffled(seed)
	l := &Layout{DrawCount: drawCount}
	next := 0
	for row := 0; row < NumColumns; row++ {
		for col := row; col < NumColumns; col++ {
			l.Tableau[col] = append(l.Tableau[col], deck[next])
			next++
		}
	}
	for i := range l.Hidden {
		l.Hidden[i] = i
	}
	l.Stock = deck[next:]
	g, err := FromLayout(l)
	if err != nil {
		// A fresh shuffle always makes a valid deal.
		panic(err)
	}
	g.seed = seed
	return g, nil
}

// Shuffled returns the deck permuted by a ChaCha stream keyed on seed.
func Shuffled(seed uint64) []card.Card {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	rng := frand.NewCustom(key[:], 256, 12)
	deck := card.NewDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Layout is a position described pile by pile, every pile listed bottom
// to top. Foundations hold the number of cards per suit.
type Layout struct {
	Tableau     [NumColumns][]card.Card
	Hidden      [NumColumns]int
	Foundations [card.NumSuits]int
	Stock       []card.Card
	Waste       []card.Card
	DrawCount   int
}

// FromLayout builds a game from an arbitrary position. It fails with
// ErrInvalidDeal unless all 52 cards are accounted for exactly once and
// every non-empty column shows a face-up top card.
func FromLayout(l *Layout) (*Game, error) {
	if l.DrawCount != 1 && l.DrawCount != 3 {
		return nil, fmt.Errorf("%w: draw count must be 1 or 3, got %d", ErrInvalidDeal, l.DrawCount)
	}
	g := &Game{
		drawCount:   l.DrawCount,
		foundations: l.Foundations,
		hidden:      l.Hidden,
		z:           zobrist.Default,
	}
	buf := make([]card.Card, 0, card.DeckSize)
	take := func(src []card.Card) []card.Card {
		start := len(buf)
		buf = append(buf, src...)
		return buf[start:len(buf):len(buf)]
	}
	count := 0
	for i := range l.Tableau {
		count += len(l.Tableau[i])
	}
	count += len(l.Stock) + len(l.Waste)
	for _, n := range l.Foundations {
		count += n
	}
	if count != card.DeckSize {
		return nil, fmt.Errorf("%w: layout holds %d cards", ErrInvalidDeal, count)
	}
	for i := range l.Tableau {
		g.tableau[i] = take(l.Tableau[i])
	}
	g.stock = take(l.Stock)
	g.waste = take(l.Waste)
	if err := g.checkPartition(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeal, err)
	}
	g.hash = g.computeHash()
	if g.foundationTotal() == card.DeckSize {
		g.status = StatusWon
	}
	return g, nil
}

// Layout returns the position pile by pile. The slices are fresh copies.
func (g *Game) Layout() *Layout {
	l := &Layout{
		Hidden:      g.hidden,
		Foundations: g.foundations,
		DrawCount:   g.drawCount,
		Stock:       append([]card.Card(nil), g.stock...),
		Waste:       append([]card.Card(nil), g.waste...),
	}
	for i := range g.tableau {
		l.Tableau[i] = append([]card.Card(nil), g.tableau[i]...)
	}
	return l
}

// Encode writes the canonical text form of the position, one pile per
// line. Face-down cards carry a leading '*'.
//
//	draw 1
//	FH 3
//	T1 *5D *7C 5H 4S
//	S 2C 9D
//	W JH
func (g *Game) Encode() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "draw %d\n", g.drawCount)
	for s := card.Suit(0); s < card.NumSuits; s++ {
		fmt.Fprintf(&sb, "%v %d\n", move.Foundation(s), g.foundations[s])
	}
	for i, col := range g.tableau {
		sb.WriteString(move.Tableau(i).String())
		for j, c := range col {
			sb.WriteByte(' ')
			if j < g.hidden[i] {
				sb.WriteByte('*')
			}
			sb.WriteString(c.String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("S")
	for _, c := range g.stock {
		sb.WriteString(" " + c.String())
	}
	sb.WriteString("\nW")
	for _, c := range g.waste {
		sb.WriteString(" " + c.String())
	}
	sb.WriteByte('\n')
	return sb.String()
}

// DealID is a short stable identifier for the position.
func (g *Game) DealID() string {
	return fmt.Sprintf("%016x", xxhash.Sum64([]byte(g.Encode())))
}

// ParseLayout reads the format written by Encode. Missing piles are
// empty and a missing draw line means draw 1.
func ParseLayout(text string) (*Layout, error) {
	l := &Layout{DrawCount: 1}
	for lineno, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		bad := func(why string) error {
			return fmt.Errorf("%w: line %d: %s", ErrInvalidDeal, lineno+1, why)
		}
		if fields[0] == "draw" {
			if len(fields) != 2 {
				return nil, bad("expected draw <n>")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, bad(err.Error())
			}
			l.DrawCount = n
			continue
		}
		loc, err := move.LocationFromString(fields[0])
		if err != nil {
			return nil, bad(err.Error())
		}
		if loc.IsFoundation() {
			if len(fields) != 2 {
				return nil, bad("expected a card count")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 || n > card.NumRanks {
				return nil, bad("bad foundation count")
			}
			l.Foundations[loc.FoundationSuit()] = n
			continue
		}
		var cards []card.Card
		hidden := 0
		for _, f := range fields[1:] {
			down := strings.HasPrefix(f, "*")
			if down {
				if hidden != len(cards) || !loc.IsTableau() {
					return nil, bad("face-down cards must sit at the bottom of a column")
				}
				hidden++
				f = f[1:]
			}
			c, err := card.FromString(f)
			if err != nil {
				return nil, bad(err.Error())
			}
			cards = append(cards, c)
		}
		switch {
		case loc == move.Stock:
			l.Stock = cards
		case loc == move.Waste:
			l.Waste = cards
		default:
			l.Tableau[loc.TableauIndex()] = cards
			l.Hidden[loc.TableauIndex()] = hidden
		}
	}
	return l, nil
}

// FromText is ParseLayout followed by FromLayout.
func FromText(text string) (*Game, error) {
	l, err := ParseLayout(text)
	if err != nil {
		return nil, err
	}
	return FromLayout(l)
}
