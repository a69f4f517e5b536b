package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "solves.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLatest(t *testing.T) {
	is := is.New(t)
	s := openTemp(t)
	ctx := context.Background()

	first := &Record{DealID: "abc", Seed: 1<<63 + 5, DrawCount: 3, Player: "search",
		Outcome: "best-effort", Status: "budget-exceeded", Plan: "S W 3\n", Moves: 1,
		Popped: 10, Expanded: 9, Elapsed: 1500 * time.Millisecond}
	is.NoErr(s.Save(ctx, first))
	is.True(first.ID > 0)
	second := &Record{DealID: "abc", Seed: 1<<63 + 5, DrawCount: 3, Player: "search",
		Outcome: "won", Status: "won", Moves: 120, Score: 600}
	is.NoErr(s.Save(ctx, second))

	got, err := s.Latest(ctx, "abc")
	is.NoErr(err)
	is.Equal(got.ID, second.ID)
	is.Equal(got.Outcome, "won")
	is.Equal(got.Seed, uint64(1<<63+5))
	is.Equal(got.Score, 600)

	recent, err := s.Recent(ctx, 10)
	is.NoErr(err)
	is.Equal(len(recent), 2)
	is.Equal(recent[1].Elapsed, 1500*time.Millisecond)
	is.Equal(recent[1].Plan, "S W 3\n")
	is.Equal(recent[1].CreatedAt.UnixMilli(), first.CreatedAt.UnixMilli())
}

func TestLatestMissing(t *testing.T) {
	is := is.New(t)
	s := openTemp(t)
	_, err := s.Latest(context.Background(), "nope")
	is.True(errors.Is(err, ErrNotFound))
}

func TestTotals(t *testing.T) {
	is := is.New(t)
	s := openTemp(t)
	ctx := context.Background()
	for _, r := range []Record{
		{DealID: "a", Player: "search", Outcome: "won"},
		{DealID: "b", Player: "search", Outcome: "stuck"},
		{DealID: "c", Player: "greedy", Outcome: "best-effort"},
		{DealID: "d", Player: "greedy", Outcome: "won"},
	} {
		is.NoErr(s.Save(ctx, &r))
	}
	all, err := s.Totals(ctx, "")
	is.NoErr(err)
	is.Equal(all, Totals{Played: 4, Won: 2, Stuck: 1})
	greedy, err := s.Totals(ctx, "greedy")
	is.NoErr(err)
	is.Equal(greedy, Totals{Played: 2, Won: 1})
}

func TestOpenEmptyPath(t *testing.T) {
	is := is.New(t)
	_, err := Open("  ")
	is.True(err != nil)
}

func TestIsBusy(t *testing.T) {
	is := is.New(t)
	is.True(!isBusy(errors.New("database is locked")))
	is.True(!isBusy(nil))
}
