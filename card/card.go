// Package card holds the 52-card French deck used by Klondike.
package card

import (
	"errors"
	"fmt"
	"strings"
)

type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const NumSuits = 4

type Color uint8

const (
	Red Color = iota
	Black
)

type Rank uint8

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

const (
	NumRanks = 13
	DeckSize = NumSuits * NumRanks
)

// Card packs the suit in the high nibble and the rank in the low one.
// The zero value means "no card".
type Card uint8

const NoCard Card = 0

var ErrBadCard = errors.New("unrecognized card")

var suitLetters = [NumSuits]string{"H", "D", "C", "S"}

var rankNames = [NumRanks + 1]string{"?", "A", "2", "3", "4", "5", "6", "7",
	"8", "9", "10", "J", "Q", "K"}

func New(s Suit, r Rank) Card {
	if s >= NumSuits || r < Ace || r > King {
		panic(fmt.Sprintf("card out of range: suit %d rank %d", s, r))
	}
	return Card(uint8(s)<<4 | uint8(r))
}

// FromIndex is the inverse of Index.
func FromIndex(i int) Card {
	return New(Suit(i/NumRanks), Rank(i%NumRanks+1))
}

func (c Card) Suit() Suit { return Suit(c >> 4) }
func (c Card) Rank() Rank { return Rank(c & 0x0f) }

func (c Card) Color() Color {
	return c.Suit().Color()
}

// Index returns a dense index in [0, 52).
func (c Card) Index() int {
	return int(c.Suit())*NumRanks + int(c.Rank()) - 1
}

func (c Card) Valid() bool {
	return c.Suit() < NumSuits && c.Rank() >= Ace && c.Rank() <= King
}

func (c Card) String() string {
	if c == NoCard {
		return "--"
	}
	if !c.Valid() {
		return fmt.Sprintf("?%02x", uint8(c))
	}
	return rankNames[c.Rank()] + suitLetters[c.Suit()]
}

// CanStackOn reports whether c may be placed on top of below in a
// tableau column: opposite colour, one rank lower.
func (c Card) CanStackOn(below Card) bool {
	return c.Color() != below.Color() && c.Rank()+1 == below.Rank()
}

func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

func (s Suit) String() string {
	if s >= NumSuits {
		return "?"
	}
	return suitLetters[s]
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// FromString parses cards like "AH", "10s", "TD" or "kc".
func FromString(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return NoCard, fmt.Errorf("%w: %q", ErrBadCard, s)
	}
	rs, ss := s[:len(s)-1], s[len(s)-1:]
	var suit Suit = NumSuits
	for i, l := range suitLetters {
		if l == ss {
			suit = Suit(i)
		}
	}
	if suit == NumSuits {
		return NoCard, fmt.Errorf("%w: bad suit in %q", ErrBadCard, s)
	}
	if rs == "T" {
		rs = "10"
	}
	for r := Ace; r <= King; r++ {
		if rankNames[r] == rs {
			return New(suit, r), nil
		}
	}
	return NoCard, fmt.Errorf("%w: bad rank in %q", ErrBadCard, s)
}

// NewDeck returns the 52 cards in canonical order: hearts A..K, then
// diamonds, clubs and spades.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Suit(0); s < NumSuits; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, New(s, r))
		}
	}
	return deck
}

// ToString joins cards with single spaces.
func ToString(cards []Card) string {
	var sb strings.Builder
	for i, c := range cards {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// ParseCards is the inverse of ToString.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := FromString(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
