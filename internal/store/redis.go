package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "nibble:lesson:"
	redisMergeAttempts = 5
)

// RedisCache implements CacheRepo on Redis. Each entry is a JSON string
// under nibble:lesson:{user}:{lesson} with both ids query-escaped, so
// neither can contain ':' or a glob metacharacter. Merges use an
// optimistic WATCH transaction.
type RedisCache struct {
	client *redis.Client
}

var _ CacheRepo = (*RedisCache)(nil)

// OpenRedisCache parses url, connects and pings the server.
func OpenRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func redisKey(userID, lessonID string) string {
	return redisKeyPrefix + url.QueryEscape(userID) + ":" + url.QueryEscape(lessonID)
}

// redisScanPattern matches every entry, or one user's entries.
func redisScanPattern(userID string) string {
	if userID == "" {
		return redisKeyPrefix + "*"
	}
	return redisKeyPrefix + globEscape(url.QueryEscape(userID)) + ":*"
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string {
	return globEscaper.Replace(s)
}

func (c *RedisCache) Get(ctx context.Context, userID, lessonID string) (*CacheEntry, error) {
	raw, err := c.client.Get(ctx, redisKey(userID, lessonID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	entry := &CacheEntry{UserID: userID, LessonID: lessonID}
	if err := json.Unmarshal(raw, &entry.Document); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	entry.CreatedAt = parseDocTime(entry.Document, DocCreatedAt)
	entry.UpdatedAt = parseDocTime(entry.Document, DocUpdatedAt)
	return entry, nil
}

func (c *RedisCache) Merge(ctx context.Context, userID, lessonID string, patch map[string]any) error {
	key := redisKey(userID, lessonID)

	txf := func(tx *redis.Tx) error {
		var existing map[string]any
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &existing); err != nil {
				return fmt.Errorf("decode cache entry: %w", err)
			}
		}

		now := time.Now().UTC()
		data, err := json.Marshal(stampDocument(DeepMerge(existing, patch), now, now))
		if err != nil {
			return fmt.Errorf("encode cache entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for range redisMergeAttempts {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("merge cache entry: %w", err)
		}
		return nil
	}
	return fmt.Errorf("merge cache entry: %w", redis.TxFailedErr)
}

func (c *RedisCache) Delete(ctx context.Context, userID, lessonID string) error {
	if err := c.client.Del(ctx, redisKey(userID, lessonID)).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// DeleteAll removes every entry, or only one user's when userID is set.
func (c *RedisCache) DeleteAll(ctx context.Context, userID string) (int64, error) {
	var removed int64
	iter := c.client.Scan(ctx, 0, redisScanPattern(userID), 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("clear cache: %w", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("clear cache: %w", err)
	}
	return removed, nil
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
