package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// seqGlobal orders LLM events and learner activities in a single stream so
// "newest first" is well defined even when timestamps tie.
const seqGlobal = "global"

// sequenceCounter is a set of named monotonic counters kept in the
// counters table. Values start at 1.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create counters table: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the next value of the global counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	return sc.next(ctx, seqGlobal)
}

func (sc *sequenceCounter) next(ctx context.Context, name string) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var v int64
	err := sc.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return v, nil
}

// current reports the last value handed out, 0 if none.
func (sc *sequenceCounter) current(ctx context.Context, name string) (int64, error) {
	var v int64
	err := sc.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", name, err)
	}
	return v, nil
}
