// Package automatic plays batches of seeded deals unattended, with
// either the search solver or the greedy baseline, and summarizes how
// they went.
package automatic

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/movegen"
	"github.com/domino14/solitaire/solver"
	"github.com/domino14/solitaire/store"
)

const (
	SearchPlayer = "search"
	GreedyPlayer = "greedy"

	// greedyMoveCap stops greedy games that wander without ever
	// revisiting a position.
	greedyMoveCap = 2000

	logHeader = "seed,dealID,player,outcome,status,moves,score,popped,elapsedMs\n"
)

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int
)

func init() {
	GamesPlayed = expvar.NewInt("solitaireGamesPlayed")
	IsPlaying = expvar.NewInt("solitaireIsPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// GameResult is how one deal went.
type GameResult struct {
	Seed   uint64
	DealID string
	Player string
	Result *solver.Result
}

// Runner is the master struct for batch play.
type Runner struct {
	cfg       solver.Config
	drawCount int
	player    string
	threads   int
	store     *store.Store
	logfile   io.Writer
}

type RunnerOption func(*Runner)

// WithPlayer picks SearchPlayer or GreedyPlayer.
func WithPlayer(p string) RunnerOption {
	return func(r *Runner) { r.player = p }
}

// WithThreads sets how many deals are played at once.
func WithThreads(n int) RunnerOption {
	return func(r *Runner) { r.threads = n }
}

// WithStore records every game in st.
func WithStore(st *store.Store) RunnerOption {
	return func(r *Runner) { r.store = st }
}

// WithLogFile writes one CSV line per game to w.
func WithLogFile(w io.Writer) RunnerOption {
	return func(r *Runner) { r.logfile = w }
}

func NewRunner(cfg solver.Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, drawCount: cfg.DrawCount, player: SearchPlayer, threads: 1}
	if r.drawCount == 0 {
		r.drawCount = 1
	}
	for _, o := range opts {
		o(r)
	}
	if r.player != SearchPlayer && r.player != GreedyPlayer {
		return nil, fmt.Errorf("unknown player %q", r.player)
	}
	if r.threads < 1 {
		r.threads = 1
	}
	return r, nil
}

// PlayOne deals seed and plays it out.
func (r *Runner) PlayOne(ctx context.Context, seed uint64) (*GameResult, error) {
	g, err := game.Deal(seed, r.drawCount)
	if err != nil {
		return nil, err
	}
	gr := &GameResult{Seed: seed, DealID: g.DealID(), Player: r.player}
	switch r.player {
	case GreedyPlayer:
		greedy := solver.NewGreedy(movegen.NewGenerator(),
			heuristic.NewWeightedEvaluator(r.cfg.Weights))
		gr.Result = greedy.Play(ctx, g, greedyMoveCap)
	default:
		// Each deal gets its own solver; they are not safe to share.
		s, err := solver.NewSolver(r.cfg)
		if err != nil {
			return nil, err
		}
		gr.Result, err = s.Solve(ctx, g)
		if err != nil {
			return nil, err
		}
	}
	if r.store != nil {
		if err := r.store.Save(ctx, gr.Record(r.drawCount)); err != nil {
			return nil, fmt.Errorf("saving seed %d: %w", seed, err)
		}
	}
	return gr, nil
}

// Record is the store row for this game.
func (gr *GameResult) Record(drawCount int) *store.Record {
	res := gr.Result
	rec := &store.Record{
		DealID:     gr.DealID,
		Seed:       gr.Seed,
		DrawCount:  drawCount,
		Player:     gr.Player,
		Outcome:    res.Outcome.String(),
		Status:     res.Status.String(),
		Plan:       res.Moves.String(),
		Moves:      len(res.Moves),
		Popped:     res.Stats.Popped,
		Expanded:   res.Stats.Expanded,
		Duplicates: res.Stats.Duplicates,
		Elapsed:    res.Stats.Elapsed,
	}
	if res.Final != nil {
		rec.Score = res.Final.Score()
	}
	return rec
}

func (gr *GameResult) csvLine() string {
	score := 0
	if gr.Result.Final != nil {
		score = gr.Result.Final.Score()
	}
	return fmt.Sprintf("%d,%s,%s,%s,%s,%d,%d,%d,%d\n",
		gr.Seed, gr.DealID, gr.Player,
		gr.Result.Outcome, gr.Result.Status,
		len(gr.Result.Moves), score, gr.Result.Stats.Popped,
		gr.Result.Stats.Elapsed.Milliseconds())
}

// Run plays every seed, threads at a time. Games that were not started
// before ctx ended are left out of the summary.
func (r *Runner) Run(ctx context.Context, seeds []uint64) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	log.Debug().Int("games", len(seeds)).Int("threads", r.threads).
		Str("player", r.player).Msg("starting-games")
	tstart := time.Now()

	var logChan chan string
	logDone := make(chan struct{})
	if r.logfile != nil {
		logChan = make(chan string, 100)
		go func() {
			defer close(logDone)
			io.WriteString(r.logfile, logHeader)
			for msg := range logChan {
				io.WriteString(r.logfile, msg)
			}
		}()
	} else {
		close(logDone)
	}

	results := make([]*GameResult, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.threads)
	for i, seed := range seeds {
		if gctx.Err() != nil {
			log.Info().Int("queued", i).Msg("got-stop-signal")
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			gr, err := r.PlayOne(gctx, seed)
			if err != nil {
				return err
			}
			results[i] = gr
			GamesPlayed.Add(1)
			if logChan != nil {
				logChan <- gr.csvLine()
			}
			return nil
		})
	}
	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	<-logDone
	if err != nil {
		return nil, err
	}

	sum := NewSummary()
	for _, gr := range results {
		if gr != nil {
			sum.Add(gr)
		}
	}
	sum.Elapsed = time.Since(tstart)
	log.Info().Int("played", sum.Played).Int("won", sum.Won).
		Float64("time-elapsed-sec", sum.Elapsed.Seconds()).Msg("games-finished")
	return sum, nil
}
