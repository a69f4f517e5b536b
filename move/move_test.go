package move

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/solitaire/card"
)

func TestLocationRoundTrip(t *testing.T) {
	is := is.New(t)
	for l := Location(0); l < NumLocations; l++ {
		parsed, err := LocationFromString(l.String())
		is.NoErr(err)
		is.Equal(parsed, l)
	}
	is.Equal(Foundation(card.Spades).String(), "FS")
	is.Equal(Tableau(0).String(), "T1")
	is.True(Tableau(6).IsTableau())
	is.True(!Waste.IsTableau())
	is.Equal(Foundation(card.Clubs).FoundationSuit(), card.Clubs)
}

func TestMoveFromString(t *testing.T) {
	is := is.New(t)
	type tc struct {
		in     string
		action Action
		err    bool
	}
	cases := []tc{
		{"S W 3", Draw, false},
		{"W S 20", Recycle, false},
		{"T3 FH 1", Transfer, false},
		{"W T1 1", Transfer, false},
		{"FD T7 1", Transfer, false},
		{"T1 T1 1", 0, true},
		{"T1 W 1", 0, true},
		{"T2 T3 0", 0, true},
		{"T9 T3 1", 0, true},
		{"T2 T3", 0, true},
	}
	for _, c := range cases {
		m, err := FromString(c.in)
		if c.err {
			is.True(errors.Is(err, ErrBadMove))
			continue
		}
		is.NoErr(err)
		is.Equal(m.Action(), c.action)
		is.Equal(m.String(), c.in)
	}
}

func TestReversible(t *testing.T) {
	is := is.New(t)
	is.True(NewDraw(1).Reversible())
	is.True(!NewRecycle(5).Reversible())
	is.True(!NewTransfer(Tableau(0), Foundation(card.Hearts), 1).Reversible())
	tt := NewTransfer(Tableau(0), Tableau(1), 2)
	is.True(tt.Reversible())
	is.True(!tt.WithEffects(true, false).Reversible())
	is.True(tt.WithEffects(true, false).Equals(tt))
}

func TestParseList(t *testing.T) {
	is := is.New(t)
	l := List{NewDraw(1), NewTransfer(Waste, Tableau(2), 1), NewRecycle(3)}
	parsed, err := ParseList("# plan\n" + l.String() + "\n")
	is.NoErr(err)
	is.Equal(len(parsed), 3)
	for i := range l {
		is.True(parsed[i].Equals(l[i]))
	}
	_, err = ParseList("S W 1\nbogus\n")
	is.True(errors.Is(err, ErrBadMove))
}
