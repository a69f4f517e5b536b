package movegen

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestOrdering(t *testing.T) {
	is := is.New(t)
	gen := NewGenerator()
	for _, seed := range testhelpers.Seeds {
		g, err := game.Deal(seed, 1)
		is.NoErr(err)
		for step := 0; step < 60 && g.Playing(); step++ {
			v := g.View()
			plays := gen.GenAll(v)
			legal := g.LegalMoves(nil)
			is.Equal(len(plays), len(legal))
			if len(plays) == 0 {
				is.True(g.IsStuck())
				break
			}
			seen := map[string]bool{}
			for i, m := range plays {
				is.True(!seen[m.String()])
				seen[m.String()] = true
				if i > 0 {
					is.True(Class(plays[i-1]) <= Class(m))
				}
			}
			// Generation never touches the game.
			is.True(!v.Stale())
			is.Equal(gen.Plays(), plays)
			is.NoErr(g.PlayMove(plays[0]))
		}
	}
}

func TestFoundationFirst(t *testing.T) {
	is := is.New(t)
	g, err := game.FromText(testhelpers.AlmostWonLayout())
	is.NoErr(err)
	plays := NewGenerator().GenAll(g.View())
	is.True(len(plays) > 0)
	is.Equal(Class(plays[0]), ClassToFoundation)
	is.True(plays[0].Equals(move.NewTransfer(move.Waste, move.Foundation(card.Spades), 1)))
}

func TestNothingAfterWin(t *testing.T) {
	is := is.New(t)
	g, err := game.FromText(testhelpers.AlmostWonLayout())
	is.NoErr(err)
	gen := NewGenerator()
	for i := 0; i < 10 && g.Playing(); i++ {
		plays := gen.GenAll(g.View())
		is.True(len(plays) > 0)
		is.Equal(Class(plays[0]), ClassToFoundation)
		is.NoErr(g.PlayMove(plays[0]))
	}
	is.True(g.IsWon())
	is.Equal(len(gen.GenAll(g.View())), 0)
	// won is not stuck
	is.True(!g.IsStuck())
}

func TestDrawOnly(t *testing.T) {
	is := is.New(t)
	g, err := game.FromText(testhelpers.DrawOnlyLayout())
	is.NoErr(err)
	plays := NewGenerator().GenAll(g.View())
	is.Equal(len(plays), 1)
	is.Equal(plays[0].Action(), move.Draw)
}

func TestClass(t *testing.T) {
	is := is.New(t)
	t1, t2 := move.Tableau(0), move.Tableau(1)
	is.Equal(Class(move.NewDraw(1)), ClassDraw)
	is.Equal(Class(move.NewRecycle(4)), ClassRecycle)
	is.Equal(Class(move.NewTransfer(t1, move.Foundation(card.Clubs), 1)), ClassToFoundation)
	is.Equal(Class(move.NewTransfer(move.Waste, t1, 1)), ClassWasteToTableau)
	is.Equal(Class(move.NewTransfer(move.Foundation(card.Clubs), t1, 1)), ClassFromFoundation)
	is.Equal(Class(move.NewTransfer(t1, t2, 2)), ClassTableauShuffle)
	is.Equal(Class(move.NewTransfer(t1, t2, 2).WithEffects(true, false)), ClassOpensTableau)
	is.Equal(Class(move.NewTransfer(t1, t2, 2).WithEffects(false, true)), ClassOpensTableau)
}
