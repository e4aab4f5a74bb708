package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// SQLiteProgress implements ProgressRepo.
type SQLiteProgress struct {
	mu  sync.Mutex
	db  *sql.DB
	seq *sequenceCounter
}

var _ ProgressRepo = (*SQLiteProgress)(nil)

var profileColumns = []string{"user_id", "name", "completed_lessons", "total_lessons", "created_at", "updated_at"}

func (r *SQLiteProgress) GetProfile(ctx context.Context, userID string) (*ProfileRecord, error) {
	p, err := r.loadProfile(ctx, r.db, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *SQLiteProgress) UpdateProfile(ctx context.Context, userID string, fn func(*ProfileRecord) error) (*ProfileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	p, err := r.loadProfile(ctx, tx, userID)
	found := err == nil
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = &ProfileRecord{UserID: userID, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.UserID = userID
	p.UpdatedAt = now

	completed, err := json.Marshal(nonNil(p.CompletedLessons))
	if err != nil {
		return nil, fmt.Errorf("encode completed lessons: %w", err)
	}

	var query string
	var args []any
	if found {
		query, args = entsql.Dialect(dialect.SQLite).
			Update(UserProfilesTable.Name).
			Set("name", p.Name).
			Set("completed_lessons", completed).
			Set("total_lessons", p.TotalLessons).
			Set("updated_at", p.UpdatedAt).
			Where(entsql.EQ("user_id", userID)).
			Query()
	} else {
		query, args = entsql.Dialect(dialect.SQLite).
			Insert(UserProfilesTable.Name).
			Columns(profileColumns...).
			Values(userID, p.Name, completed, p.TotalLessons, p.CreatedAt, p.UpdatedAt).
			Query()
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return p, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteProgress) loadProfile(ctx context.Context, q queryRower, userID string) (*ProfileRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(profileColumns...).
		From(entsql.Table(UserProfilesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		p         ProfileRecord
		completed []byte
	)
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&p.UserID, &p.Name, &completed, &p.TotalLessons, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &p.CompletedLessons); err != nil {
			return nil, fmt.Errorf("decode completed lessons: %w", err)
		}
	}
	return &p, nil
}

func (r *SQLiteProgress) AddActivity(ctx context.Context, a ActivityRecord) (ActivityRecord, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return a, err
	}
	a.Sequence = seq

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ActivitiesTable.Name).
		Columns("id", "sequence", "user_id", "kind", "lesson_id", "title", "detail", "score", "timestamp").
		Values(a.ID, a.Sequence, a.UserID, a.Kind, a.LessonID, a.Title, a.Detail, a.Score, a.Timestamp).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return a, fmt.Errorf("save activity: %w", err)
	}
	return a, nil
}

func (r *SQLiteProgress) RecentActivities(ctx context.Context, userID string, limit int) ([]ActivityRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "sequence", "user_id", "kind", "lesson_id", "title", "detail", "score", "timestamp").
		From(entsql.Table(ActivitiesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out []ActivityRecord
	for rows.Next() {
		var a ActivityRecord
		if err := rows.Scan(&a.ID, &a.Sequence, &a.UserID, &a.Kind, &a.LessonID, &a.Title, &a.Detail, &a.Score, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteUser removes a user's profile and activities.
func (r *SQLiteProgress) DeleteUser(ctx context.Context, userID string) error {
	for _, table := range []string{UserProfilesTable.Name, ActivitiesTable.Name} {
		query, args := entsql.Dialect(dialect.SQLite).
			Delete(table).
			Where(entsql.EQ("user_id", userID)).
			Query()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
