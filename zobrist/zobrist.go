// Package zobrist builds the random key tables used to fingerprint a
// Klondike position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/domino14/solitaire/card"
)

const bignum = 1<<63 - 2

// DefaultSeed seeds the package-level tables. Fingerprints are only
// comparable between games hashed with the same tables.
const DefaultSeed = 0x5eed50117a12e

// NoCard stands in for "nothing below" when keying the bottom card of a
// tableau column.
const NoCard = card.DeckSize

// Zobrist keys tableau cards by (card, card below, face up) rather than
// by column, so a fingerprint does not depend on which column a pile
// sits in. Stock and waste cards are keyed by position.
type Zobrist struct {
	tableau    [card.DeckSize][card.DeckSize + 1][2]uint64
	stock      [card.DeckSize][card.DeckSize]uint64
	waste      [card.DeckSize][card.DeckSize]uint64
	foundation [card.NumSuits][card.NumRanks + 1]uint64
}

var Default = New(DefaultSeed)

// New fills a table deterministically from seed.
func New(seed uint64) *Zobrist {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	rng := frand.NewCustom(key[:], 1024, 12)
	next := func() uint64 {
		return rng.Uint64n(bignum) + 1
	}

	z := &Zobrist{}
	for c := range z.tableau {
		for b := range z.tableau[c] {
			z.tableau[c][b][0] = next()
			z.tableau[c][b][1] = next()
		}
	}
	for p := range z.stock {
		for c := range z.stock[p] {
			z.stock[p][c] = next()
			z.waste[p][c] = next()
		}
	}
	for s := range z.foundation {
		for n := range z.foundation[s] {
			z.foundation[s][n] = next()
		}
	}
	return z
}

// Tableau keys card c lying directly on below (card.NoCard at the
// bottom of a column).
func (z *Zobrist) Tableau(c, below card.Card, faceUp bool) uint64 {
	b := NoCard
	if below != card.NoCard {
		b = below.Index()
	}
	up := 0
	if faceUp {
		up = 1
	}
	return z.tableau[c.Index()][b][up]
}

func (z *Zobrist) Stock(pos int, c card.Card) uint64 {
	return z.stock[pos][c.Index()]
}

func (z *Zobrist) Waste(pos int, c card.Card) uint64 {
	return z.waste[pos][c.Index()]
}

// Foundation keys a foundation of suit s holding n cards.
func (z *Zobrist) Foundation(s card.Suit, n int) uint64 {
	return z.foundation[s][n]
}
