package move

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/solitaire/card"
)

// Location addresses a pile on the table.
type Location uint8

const (
	Stock Location = iota
	Waste
	foundationBase
)

const (
	NumTableau = 7

	tableauBase  = foundationBase + card.NumSuits
	NumLocations = tableauBase + NumTableau
)

// Foundation returns the foundation pile for suit s.
func Foundation(s card.Suit) Location {
	return foundationBase + Location(s)
}

// Tableau returns the location of column i, 0-based.
func Tableau(i int) Location {
	if i < 0 || i >= NumTableau {
		panic(fmt.Sprintf("tableau column out of range: %d", i))
	}
	return tableauBase + Location(i)
}

func (l Location) IsTableau() bool {
	return l >= tableauBase && l < NumLocations
}

func (l Location) IsFoundation() bool {
	return l >= foundationBase && l < tableauBase
}

func (l Location) TableauIndex() int {
	return int(l - tableauBase)
}

func (l Location) FoundationSuit() card.Suit {
	return card.Suit(l - foundationBase)
}

func (l Location) String() string {
	switch {
	case l == Stock:
		return "S"
	case l == Waste:
		return "W"
	case l.IsFoundation():
		return "F" + l.FoundationSuit().String()
	case l.IsTableau():
		return "T" + strconv.Itoa(l.TableauIndex()+1)
	}
	return "?"
}

// LocationFromString parses S, W, FH/FD/FC/FS and T1..T7.
func LocationFromString(s string) (Location, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case s == "S":
		return Stock, nil
	case s == "W":
		return Waste, nil
	case len(s) == 2 && s[0] == 'F':
		for st := card.Suit(0); st < card.NumSuits; st++ {
			if st.String() == s[1:] {
				return Foundation(st), nil
			}
		}
	case len(s) == 2 && s[0] == 'T':
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 1 && n <= NumTableau {
			return Tableau(n - 1), nil
		}
	}
	return 0, fmt.Errorf("%w: location %q", ErrBadMove, s)
}
