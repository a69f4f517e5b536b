// Package store keeps a sqlite log of solved deals.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
)

const (
	sqliteBusy   = 5
	sqliteLocked = 6
	opTimeout    = 5 * time.Second
)

var ErrNotFound = errors.New("no record for deal")

// Record is one solve of one deal.
type Record struct {
	ID         int64
	DealID     string
	Seed       uint64
	DrawCount  int
	Player     string
	Outcome    string
	Status     string
	Plan       string
	Moves      int
	Score      int
	Popped     int
	Expanded   int
	Duplicates int
	Elapsed    time.Duration
	CreatedAt  time.Time
}

// Totals aggregates records by outcome.
type Totals struct {
	Played int
	Won    int
	Stuck  int
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is allowed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty sqlite database path")
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("opened-solve-store")
	return &Store{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS solves (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    deal_id       TEXT    NOT NULL,
    seed          INTEGER NOT NULL,
    draw_count    INTEGER NOT NULL,
    player        TEXT    NOT NULL,
    outcome       TEXT    NOT NULL,
    status        TEXT    NOT NULL,
    plan          TEXT    NOT NULL,
    moves         INTEGER NOT NULL,
    score         INTEGER NOT NULL,
    popped        INTEGER NOT NULL,
    expanded      INTEGER NOT NULL,
    duplicates    INTEGER NOT NULL,
    elapsed_ns    INTEGER NOT NULL,
    created_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS solves_deal_idx ON solves (deal_id, id);
`)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqliteBusy || code == sqliteLocked
}

// withRetry retries fn while the database reports itself busy.
func withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(20*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Msg("store-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Save inserts rec and sets its ID and CreatedAt.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return withRetry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		res, err := s.db.ExecContext(ctx, `
INSERT INTO solves (
    deal_id, seed, draw_count, player, outcome, status, plan, moves, score,
    popped, expanded, duplicates, elapsed_ns, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.DealID, int64(rec.Seed), rec.DrawCount, rec.Player, rec.Outcome,
			rec.Status, rec.Plan, rec.Moves, rec.Score, rec.Popped, rec.Expanded,
			rec.Duplicates, int64(rec.Elapsed), rec.CreatedAt.UnixMilli())
		if err != nil {
			return err
		}
		rec.ID, err = res.LastInsertId()
		return err
	})
}

const selectColumns = `id, deal_id, seed, draw_count, player, outcome, status, plan,
    moves, score, popped, expanded, duplicates, elapsed_ns, created_at_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		seed      int64
		elapsed   int64
		createdMs int64
	)
	err := row.Scan(&rec.ID, &rec.DealID, &seed, &rec.DrawCount, &rec.Player,
		&rec.Outcome, &rec.Status, &rec.Plan, &rec.Moves, &rec.Score, &rec.Popped,
		&rec.Expanded, &rec.Duplicates, &elapsed, &createdMs)
	if err != nil {
		return nil, err
	}
	rec.Seed = uint64(seed)
	rec.Elapsed = time.Duration(elapsed)
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &rec, nil
}

// Latest returns the newest record for a deal.
func (s *Store) Latest(ctx context.Context, dealID string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+`
FROM solves WHERE deal_id = ? ORDER BY id DESC LIMIT 1`, dealID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %s", ErrNotFound, dealID)
	}
	return rec, err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+`
FROM solves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Totals counts records per outcome, optionally for one player only.
func (s *Store) Totals(ctx context.Context, player string) (Totals, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var t Totals
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN outcome = 'stuck' THEN 1 ELSE 0 END), 0)
FROM solves WHERE ? = '' OR player = ?`, player, player).
		Scan(&t.Played, &t.Won, &t.Stuck)
	return t, err
}
