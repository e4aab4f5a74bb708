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
)

// Document keys maintained by every CacheRepo implementation.
const (
	DocCreatedAt = "createdAt"
	DocUpdatedAt = "updatedAt"
)

// SQLiteCache implements CacheRepo with one JSON document per row.
type SQLiteCache struct {
	mu sync.Mutex
	db *sql.DB
}

var _ CacheRepo = (*SQLiteCache)(nil)

func (c *SQLiteCache) Get(ctx context.Context, userID, lessonID string) (*CacheEntry, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("document", "created_at", "updated_at").
		From(entsql.Table(LessonCacheTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("lesson_id", lessonID))).
		Query()

	var raw []byte
	entry := &CacheEntry{UserID: userID, LessonID: lessonID}
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&raw, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	if err := json.Unmarshal(raw, &entry.Document); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, nil
}

// Merge reads, merges and writes the document inside one transaction.
func (c *SQLiteCache) Merge(ctx context.Context, userID, lessonID string, patch map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := entsql.Dialect(dialect.SQLite).
		Select("document", "created_at").
		From(entsql.Table(LessonCacheTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("lesson_id", lessonID))).
		Query()

	var (
		raw       []byte
		createdAt time.Time
		existing  map[string]any
	)
	found := true
	switch err := tx.QueryRowContext(ctx, query, args...).Scan(&raw, &createdAt); {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return fmt.Errorf("read cache entry: %w", err)
	default:
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("decode cache entry: %w", err)
		}
	}

	now := time.Now().UTC()
	if !found {
		createdAt = now
	}
	doc := stampDocument(DeepMerge(existing, patch), createdAt, now)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	var stmt string
	if found {
		stmt, args = entsql.Dialect(dialect.SQLite).
			Update(LessonCacheTable.Name).
			Set("document", data).
			Set("updated_at", now).
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("lesson_id", lessonID))).
			Query()
	} else {
		stmt, args = entsql.Dialect(dialect.SQLite).
			Insert(LessonCacheTable.Name).
			Columns("user_id", "lesson_id", "document", "created_at", "updated_at").
			Values(userID, lessonID, data, createdAt, now).
			Query()
	}
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return tx.Commit()
}

func (c *SQLiteCache) Delete(ctx context.Context, userID, lessonID string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(LessonCacheTable.Name).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("lesson_id", lessonID))).
		Query()
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// DeleteAll clears every cache entry, or only one user's when userID is set.
// It returns the number of removed entries.
func (c *SQLiteCache) DeleteAll(ctx context.Context, userID string) (int64, error) {
	del := entsql.Dialect(dialect.SQLite).Delete(LessonCacheTable.Name)
	if userID != "" {
		del.Where(entsql.EQ("user_id", userID))
	}
	query, args := del.Query()
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// DeepMerge merges patch into dst and returns the result. Nested maps are
// merged recursively; every other value in patch replaces the one in dst.
// Neither argument is modified.
func DeepMerge(dst, patch map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = v
	}
	for k, pv := range patch {
		pm, pIsMap := pv.(map[string]any)
		dm, dIsMap := out[k].(map[string]any)
		if pIsMap && dIsMap {
			out[k] = DeepMerge(dm, pm)
			continue
		}
		out[k] = pv
	}
	return out
}

func stampDocument(doc map[string]any, createdAt, updatedAt time.Time) map[string]any {
	if _, ok := doc[DocCreatedAt]; !ok {
		doc[DocCreatedAt] = createdAt.Format(time.RFC3339Nano)
	}
	doc[DocUpdatedAt] = updatedAt.Format(time.RFC3339Nano)
	return doc
}

func parseDocTime(doc map[string]any, key string) time.Time {
	s, _ := doc[key].(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
