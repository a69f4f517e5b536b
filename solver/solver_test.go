package solver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/domino14/solitaire/card"
	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/movegen"
	"github.com/domino14/solitaire/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func nodeConfig(budget int) Config {
	cfg := DefaultConfig()
	cfg.NodeBudget = budget
	cfg.TimeBudget = 0
	return cfg
}

func mustSolver(t *testing.T, cfg Config, opts ...Option) *Solver {
	t.Helper()
	s, err := NewSolver(cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustGame(t *testing.T, text string) *game.Game {
	t.Helper()
	g, err := game.FromText(text)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSolvedLayout(t *testing.T) {
	is := is.New(t)
	g := mustGame(t, testhelpers.SolvedLayout())
	s := mustSolver(t, nodeConfig(60))
	res, err := s.Solve(context.Background(), g)
	is.NoErr(err)
	is.Equal(res.Outcome, OutcomeWon)
	is.Equal(res.Status, StatusWon)
	is.NoErr(res.Err())
	is.Equal(len(res.Moves), 52)
	is.Equal(res.Stats.Popped, 53)
	is.Equal(res.Stats.Duplicates, 0)
	is.True(res.Final.IsWon())
	is.Equal(s.Status(), StatusWon)

	replayed, err := res.Replay(g)
	is.NoErr(err)
	is.True(replayed.IsWon())
	// the input game is untouched
	is.Equal(g.MoveCount(), 0)
}

func TestWinIsReturnedImmediately(t *testing.T) {
	is := is.New(t)
	g := mustGame(t, testhelpers.AlmostWonLayout())
	res, err := mustSolver(t, nodeConfig(1000)).Solve(context.Background(), g)
	is.NoErr(err)
	is.Equal(res.Outcome, OutcomeWon)
	is.Equal(len(res.Moves), 4)
	// the root plus one pop per move; nothing after the first win
	is.Equal(res.Stats.Popped, 5)
	for _, m := range res.Moves {
		is.True(m.To().IsFoundation())
	}
}

func TestAlreadyWon(t *testing.T) {
	is := is.New(t)
	g := mustGame(t, "FH 13\nFD 13\nFC 13\nFS 13\n")
	res, err := mustSolver(t, nodeConfig(10)).Solve(context.Background(), g)
	is.NoErr(err)
	is.Equal(res.Outcome, OutcomeWon)
	is.Equal(len(res.Moves), 0)
	is.Equal(res.Stats.Popped, 1)
	is.Equal(res.Stats.Expanded, 0)
}

func TestDrawsBeforeGivingUp(t *testing.T) {
	is := is.New(t)
	for _, budget := range []int{2, 50, 2000} {
		g := mustGame(t, testhelpers.DrawOnlyLayout())
		res, err := mustSolver(t, nodeConfig(budget)).Solve(context.Background(), g)
		is.NoErr(err)
		is.True(res.Outcome != OutcomeStuck)
		is.True(len(res.Moves) > 0)
		is.Equal(res.Moves[0].Action(), move.Draw)
		_, err = res.Replay(g)
		is.NoErr(err)
	}
}

func TestStuck(t *testing.T) {
	is := is.New(t)
	l, err := game.ParseLayout("T2 3H\nT3 4H\nT4 5H\nT5 2D\nT6 3D\nT7 4D\n")
	is.NoErr(err)
	// everything else face down under a red two
	seen := map[card.Card]bool{}
	for _, col := range l.Tableau {
		for _, c := range col {
			seen[c] = true
		}
	}
	twoH := card.New(card.Hearts, 2)
	for _, c := range card.NewDeck() {
		if !seen[c] && c != twoH {
			l.Tableau[0] = append(l.Tableau[0], c)
		}
	}
	l.Hidden[0] = len(l.Tableau[0])
	l.Tableau[0] = append(l.Tableau[0], twoH)
	g, err := game.FromLayout(l)
	is.NoErr(err)

	res, err := mustSolver(t, nodeConfig(100)).Solve(context.Background(), g)
	is.NoErr(err)
	is.Equal(res.Outcome, OutcomeStuck)
	is.Equal(res.Status, StatusExhausted)
	is.True(errors.Is(res.Err(), ErrExhaustedSearch))
	is.Equal(len(res.Moves), 0)
	is.Equal(res.Stats.Popped, 1)
}

func TestNodeBudget(t *testing.T) {
	is := is.New(t)
	for _, budget := range []int{1, 10, 50} {
		g, err := game.Deal(42, 1)
		is.NoErr(err)
		res, err := mustSolver(t, nodeConfig(budget)).Solve(context.Background(), g)
		is.NoErr(err)
		is.Equal(res.Stats.Popped, budget)
		is.Equal(res.Status, StatusBudgetExceeded)
		is.True(errors.Is(res.Err(), ErrBudgetExceeded))
		is.True(res.Outcome != OutcomeStuck)
		_, err = res.Replay(g)
		is.NoErr(err)
	}
}

func TestNoFingerprintExpandedTwice(t *testing.T) {
	is := is.New(t)
	for _, seed := range testhelpers.Seeds {
		for _, draw := range []int{1, 3} {
			g, err := game.Deal(seed, draw)
			is.NoErr(err)
			s := mustSolver(t, nodeConfig(3000))
			expanded := map[uint64]int{}
			s.onExpand = func(fp uint64) { expanded[fp]++ }
			res, err := s.Solve(context.Background(), g)
			is.NoErr(err)
			is.Equal(len(expanded), res.Stats.Expanded)
			for _, n := range expanded {
				is.Equal(n, 1)
			}
			is.Equal(res.Stats.Popped, res.Stats.Expanded+res.Stats.Duplicates+wonPops(res))
		}
	}
}

// wonPops is 1 when the last pop was the winning position, which is
// not expanded.
func wonPops(r *Result) int {
	if r.Outcome == OutcomeWon {
		return 1
	}
	return 0
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	var first *Result
	for i := 0; i < 3; i++ {
		g, err := game.Deal(1234, 1)
		is.NoErr(err)
		res, err := mustSolver(t, nodeConfig(4000)).Solve(context.Background(), g)
		is.NoErr(err)
		if first == nil {
			first = res
			continue
		}
		is.Equal(res.String(), first.String())
		is.Equal(res.Stats.Popped, first.Stats.Popped)
		is.Equal(res.Stats.Generated, first.Stats.Generated)
		is.Equal(res.Final.Fingerprint(), first.Final.Fingerprint())
	}
}

func TestBestEffortReplays(t *testing.T) {
	is := is.New(t)
	for _, seed := range testhelpers.Seeds {
		g, err := game.Deal(seed, 3)
		is.NoErr(err)
		res, err := mustSolver(t, nodeConfig(1500)).Solve(context.Background(), g)
		is.NoErr(err)
		final, err := res.Replay(g)
		is.NoErr(err)
		is.Equal(final.Fingerprint(), res.Final.Fingerprint())
		if res.Outcome == OutcomeBestEffort {
			ev := heuristic.NewWeightedEvaluator(DefaultConfig().Weights)
			is.True(res.Score >= ev.Evaluate(g.View()) || len(res.Moves) == 1)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	is := is.New(t)
	g, err := game.Deal(2, 1)
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := mustSolver(t, nodeConfig(100)).Solve(ctx, g)
	is.NoErr(err)
	is.Equal(res.Status, StatusBudgetExceeded)
	is.Equal(res.Stats.Popped, 0)
	is.Equal(res.Outcome, OutcomeBestEffort)
	is.Equal(len(res.Moves), 0)
}

func TestTimeBudget(t *testing.T) {
	is := is.New(t)
	g, err := game.Deal(98765, 3)
	is.NoErr(err)
	cfg := DefaultConfig()
	cfg.NodeBudget = 0
	cfg.TimeBudget = 200 * time.Millisecond
	cfg.DrawCount = 3

	start := time.Now()
	res, err := mustSolver(t, cfg).Solve(context.Background(), g)
	is.NoErr(err)
	elapsed := time.Since(start)

	is.Equal(res.Status, StatusBudgetExceeded)
	is.True(errors.Is(res.Err(), ErrBudgetExceeded))
	is.Equal(res.Outcome, OutcomeBestEffort)
	is.True(len(res.Moves) > 0)
	is.True(elapsed < 5*cfg.TimeBudget)

	final, err := res.Replay(g)
	is.NoErr(err)
	is.Equal(final.Fingerprint(), res.Final.Fingerprint())
}

func TestFrontierTieBreak(t *testing.T) {
	is := is.New(t)
	pq := &frontier{}
	pq.push(&node{priority: 1, depth: 3, seq: 1})
	pq.push(&node{priority: 1, depth: 2, seq: 5})
	pq.push(&node{priority: 1, depth: 2, seq: 4})
	pq.push(&node{priority: 2, depth: 9, seq: 9})

	type key struct {
		priority float64
		depth    int
		seq      uint64
	}
	var order []key
	for pq.Len() > 0 {
		n := pq.pop()
		order = append(order, key{n.priority, n.depth, n.seq})
	}
	is.Equal(order, []key{
		{2, 9, 9},
		{1, 2, 4},
		{1, 2, 5},
		{1, 3, 1},
	})
}

func TestPromoteReleasesState(t *testing.T) {
	is := is.New(t)
	g, err := game.Deal(7, 1)
	is.NoErr(err)
	root := &node{state: g}
	a := &node{state: g.Copy(), score: 1}
	b := &node{state: g.Copy(), score: 2}

	best := promote(root, a, root)
	is.Equal(best, a)
	is.True(root.state != nil)

	best = promote(best, b, root)
	is.Equal(best, b)
	is.True(a.state == nil)
	is.True(b.state != nil)
}

func TestStateMachine(t *testing.T) {
	is := is.New(t)
	g := mustGame(t, testhelpers.AlmostWonLayout())
	s := mustSolver(t, nodeConfig(100))
	is.Equal(s.Status(), StatusIdle)
	_, err := s.Solve(context.Background(), g)
	is.NoErr(err)
	is.Equal(s.Status(), StatusWon)
	_, err = s.Solve(context.Background(), g)
	is.True(errors.Is(err, ErrSolverNotIdle))
	_, err = s.SolveParallel(context.Background(), g, 2)
	is.True(errors.Is(err, ErrSolverNotIdle))
	s.Reset()
	is.Equal(s.Status(), StatusIdle)
	_, err = s.Solve(context.Background(), g)
	is.NoErr(err)
}

func TestDrawCountMismatch(t *testing.T) {
	is := is.New(t)
	cfg := nodeConfig(10)
	cfg.DrawCount = 1
	g := mustGame(t, testhelpers.AlmostWonLayout()) // draws 3
	s := mustSolver(t, cfg)
	_, err := s.Solve(context.Background(), g)
	is.True(errors.Is(err, game.ErrInvalidDeal))
	is.Equal(s.Status(), StatusIdle)
}

func TestInvalidConfig(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.NodeBudget, c.TimeBudget = 0, 0 },
		func(c *Config) { c.NodeBudget = -1 },
		func(c *Config) { c.TimeBudget = -1 },
		func(c *Config) { c.DrawCount = 2 },
		func(c *Config) { c.DepthPenalty = -0.1 },
		func(c *Config) { c.Threads = -1 },
		func(c *Config) { c.Weights.FaceDown = 1 },
	}
	for _, mod := range cases {
		cfg := DefaultConfig()
		mod(&cfg)
		_, err := NewSolver(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
	_, err := NewSolver(DefaultConfig())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, DefaultNodeBudget(), minDefaultNodeBudget)
	assert.LessOrEqual(t, DefaultNodeBudget(), maxDefaultNodeBudget)
}

func TestCustomGeneratorAndEvaluator(t *testing.T) {
	is := is.New(t)
	calls := 0
	eval := heuristic.EvaluatorFunc(func(v *game.View) float64 {
		calls++
		return float64(v.FoundationCount())
	})
	s := mustSolver(t, nodeConfig(100),
		WithEvaluator(eval),
		WithMoveGenerator(func() movegen.MoveGenerator { return movegen.NewGenerator() }))
	res, err := s.Solve(context.Background(), mustGame(t, testhelpers.AlmostWonLayout()))
	is.NoErr(err)
	is.Equal(res.Outcome, OutcomeWon)
	is.True(calls > 0)
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	s := mustSolver(t, nodeConfig(100), WithLogStream(&buf))
	res, err := s.Solve(context.Background(), mustGame(t, testhelpers.AlmostWonLayout()))
	is.NoErr(err)
	var entries []map[string]any
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &entries))
	is.Equal(len(entries), res.Stats.Expanded)
}

func TestResultYAML(t *testing.T) {
	is := is.New(t)
	res, err := mustSolver(t, nodeConfig(100)).Solve(context.Background(),
		mustGame(t, testhelpers.AlmostWonLayout()))
	is.NoErr(err)
	out, err := res.YAML()
	is.NoErr(err)
	var parsed struct {
		Outcome string   `yaml:"outcome"`
		Moves   []string `yaml:"moves"`
	}
	is.NoErr(yaml.Unmarshal([]byte(out), &parsed))
	is.Equal(parsed.Outcome, "won")
	is.Equal(len(parsed.Moves), 4)

	l, err := move.ParseList(res.String())
	is.NoErr(err)
	is.Equal(len(l), 4)
}
