package automatic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/solitaire/solver"
	"github.com/domino14/solitaire/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func smallConfig() solver.Config {
	cfg := solver.DefaultConfig()
	cfg.NodeBudget = 200
	cfg.TimeBudget = 0
	return cfg
}

func TestRunGreedy(t *testing.T) {
	is := is.New(t)
	var log strings.Builder
	r, err := NewRunner(smallConfig(), WithPlayer(GreedyPlayer), WithThreads(3),
		WithLogFile(&log))
	is.NoErr(err)
	sum, err := r.Run(context.Background(), SeedRange(1, 10))
	is.NoErr(err)
	is.Equal(sum.Played, 10)
	is.Equal(sum.Won+sum.Stuck+sum.BestEffort, 10)
	is.Equal(sum.Nodes.Iterations(), 10)
	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	is.Equal(len(lines), 11)
	is.Equal(lines[0]+"\n", logHeader)
	is.True(strings.Contains(sum.String(), "Games played: 10"))

	analysis, err := analyzeLog(strings.NewReader(log.String()))
	is.NoErr(err)
	is.True(strings.HasPrefix(analysis, "greedy: played 10,"))
}

func TestRunSearchDeterministic(t *testing.T) {
	is := is.New(t)
	r, err := NewRunner(smallConfig(), WithThreads(4))
	is.NoErr(err)
	seeds := SeedRange(100, 6)
	a, err := r.Run(context.Background(), seeds)
	is.NoErr(err)
	b, err := r.Run(context.Background(), seeds)
	is.NoErr(err)
	is.Equal(a.Played, 6)
	is.Equal(a.Won, b.Won)
	is.Equal(a.Nodes.Mean(), b.Nodes.Mean())
	// no game may pop past its budget
	is.True(a.Nodes.Max() <= 200)
}

func TestPlayOneStores(t *testing.T) {
	is := is.New(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "solves.db"))
	is.NoErr(err)
	defer st.Close()

	r, err := NewRunner(smallConfig(), WithStore(st))
	is.NoErr(err)
	gr, err := r.PlayOne(context.Background(), 42)
	is.NoErr(err)
	rec, err := st.Latest(context.Background(), gr.DealID)
	is.NoErr(err)
	is.Equal(rec.Seed, uint64(42))
	is.Equal(rec.Player, SearchPlayer)
	is.Equal(rec.Outcome, gr.Result.Outcome.String())
	is.Equal(rec.Moves, len(gr.Result.Moves))
	is.Equal(rec.Popped, gr.Result.Stats.Popped)
}

func TestRunCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewRunner(smallConfig())
	is.NoErr(err)
	sum, err := r.Run(ctx, SeedRange(1, 5))
	is.NoErr(err)
	is.Equal(sum.Played, 0)
}

func TestBadRunner(t *testing.T) {
	is := is.New(t)
	_, err := NewRunner(smallConfig(), WithPlayer("oracle"))
	is.True(err != nil)
	cfg := smallConfig()
	cfg.DrawCount = 2
	_, err = NewRunner(cfg)
	is.True(err != nil)
}

func TestSeedsRoundTrip(t *testing.T) {
	is := is.New(t)
	seeds := GenerateSeeds(20)
	is.Equal(len(seeds), 20)
	path := filepath.Join(t.TempDir(), "seeds.txt")
	is.NoErr(SaveSeeds(seeds, path))
	loaded, err := LoadSeeds(path)
	is.NoErr(err)
	is.Equal(loaded, seeds)

	is.NoErr(os.WriteFile(path, []byte("# x\n12\n\nnope\n"), 0o600))
	_, err = LoadSeeds(path)
	is.True(err != nil)
}
