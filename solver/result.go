package solver

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
)

type Outcome uint8

const (
	// OutcomeWon: Moves win the game.
	OutcomeWon Outcome = iota
	// OutcomeBestEffort: Moves lead to the best position found.
	OutcomeBestEffort
	// OutcomeStuck: nothing reachable improves on the starting position.
	OutcomeStuck
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeBestEffort:
		return "best-effort"
	case OutcomeStuck:
		return "stuck"
	}
	return "unknown"
}

type Stats struct {
	// Popped counts frontier pops, duplicates included.
	Popped int `yaml:"popped"`
	// Expanded counts positions whose children were generated.
	Expanded    int           `yaml:"expanded"`
	Duplicates  int           `yaml:"duplicates"`
	Generated   int           `yaml:"generated"`
	MaxFrontier int           `yaml:"max_frontier"`
	Elapsed     time.Duration `yaml:"elapsed"`
}

func (s *Stats) add(o Stats) {
	s.Popped += o.Popped
	s.Expanded += o.Expanded
	s.Duplicates += o.Duplicates
	s.Generated += o.Generated
	s.MaxFrontier = max(s.MaxFrontier, o.MaxFrontier)
	s.Elapsed = max(s.Elapsed, o.Elapsed)
}

type Result struct {
	Outcome Outcome
	Status  Status
	Moves   move.List
	// Final is the position the moves lead to.
	Final *game.Game
	// Score is the heuristic score of Final.
	Score float64
	Stats Stats
}

// Err maps a run that did not win onto ErrExhaustedSearch or
// ErrBudgetExceeded. The plan in the result is still usable.
func (r *Result) Err() error {
	switch r.Status {
	case StatusExhausted:
		return ErrExhaustedSearch
	case StatusBudgetExceeded:
		return ErrBudgetExceeded
	}
	return nil
}

// String is the move list, one move per line.
func (r *Result) String() string {
	return r.Moves.String()
}

// Replay plays the moves on a copy of g and returns the final position.
func (r *Result) Replay(g *game.Game) (*game.Game, error) {
	cp := g.Copy()
	for i, m := range r.Moves {
		if err := cp.PlayMove(m); err != nil {
			return nil, fmt.Errorf("move %d (%v): %w", i+1, m, err)
		}
	}
	return cp, nil
}

type resultYAML struct {
	Outcome   string   `yaml:"outcome"`
	Status    string   `yaml:"status"`
	Score     float64  `yaml:"score"`
	GameScore int      `yaml:"game_score"`
	Moves     []string `yaml:"moves"`
	Stats     Stats    `yaml:"stats"`
}

func (r *Result) MarshalYAML() (any, error) {
	out := resultYAML{
		Outcome: r.Outcome.String(),
		Status:  r.Status.String(),
		Score:   r.Score,
		Moves:   make([]string, len(r.Moves)),
		Stats:   r.Stats,
	}
	if r.Final != nil {
		out.GameScore = r.Final.Score()
	}
	for i, m := range r.Moves {
		out.Moves[i] = m.String()
	}
	return out, nil
}

// YAML renders the result for export.
func (r *Result) YAML() (string, error) {
	bts, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

func (r *Result) log() {
	log.Info().
		Str("outcome", r.Outcome.String()).
		Str("status", r.Status.String()).
		Int("moves", len(r.Moves)).
		Int("popped", r.Stats.Popped).
		Int("expanded", r.Stats.Expanded).
		Int("duplicates", r.Stats.Duplicates).
		Int("max-frontier", r.Stats.MaxFrontier).
		Float64("time-elapsed-sec", r.Stats.Elapsed.Seconds()).
		Msg("solve-returning")
}
