package card

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestDeck(t *testing.T) {
	is := is.New(t)
	deck := NewDeck()
	is.Equal(len(deck), DeckSize)
	seen := map[Card]bool{}
	for i, c := range deck {
		is.True(c.Valid())
		is.Equal(c.Index(), i)
		is.Equal(FromIndex(i), c)
		is.True(!seen[c])
		seen[c] = true
	}
}

func TestParse(t *testing.T) {
	is := is.New(t)
	type tc struct {
		in   string
		out  Card
		repr string
	}
	cases := []tc{
		{"AH", New(Hearts, Ace), "AH"},
		{"10s", New(Spades, 10), "10S"},
		{"td", New(Diamonds, 10), "10D"},
		{" kc", New(Clubs, King), "KC"},
	}
	for _, c := range cases {
		card, err := FromString(c.in)
		is.NoErr(err)
		is.Equal(card, c.out)
		is.Equal(card.String(), c.repr)
	}
	for _, bad := range []string{"", "X", "1H", "AX", "14S"} {
		_, err := FromString(bad)
		is.True(errors.Is(err, ErrBadCard))
	}
}

func TestCanStackOn(t *testing.T) {
	is := is.New(t)
	is.True(New(Hearts, 9).CanStackOn(New(Spades, 10)))
	is.True(New(Clubs, Queen).CanStackOn(New(Diamonds, King)))
	is.True(!New(Clubs, Queen).CanStackOn(New(Spades, King)))
	is.True(!New(Hearts, 8).CanStackOn(New(Spades, 10)))
	is.True(!New(Hearts, King).CanStackOn(New(Spades, Ace)))
}

func TestParseCards(t *testing.T) {
	is := is.New(t)
	cards, err := ParseCards("AH 2S 10D")
	is.NoErr(err)
	is.Equal(len(cards), 3)
	is.Equal(ToString(cards), "AH 2S 10D")
	is.Equal(Hearts.Color(), Red)
	is.Equal(Spades.Color(), Black)
}
