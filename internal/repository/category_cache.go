package repository

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
)

const categoryKeyPrefix = "categorize:v1:"

// CategoryCache memoizes categorization results by text.
type CategoryCache interface {
	Get(ctx context.Context, text string) (categorize.Result, bool, error)
	Set(ctx context.Context, text string, res categorize.Result) error
}

type redisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache builds a Redis backed cache. ttl <= 0 keeps entries
// until evicted.
func NewCategoryCache(client *redis.Client, ttl time.Duration) CategoryCache {
	return &redisCategoryCache{client: client, ttl: ttl}
}

// CategoryKey returns the cache key for text.
func CategoryKey(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return categoryKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *redisCategoryCache) Get(ctx context.Context, text string) (categorize.Result, bool, error) {
	raw, err := c.client.Get(ctx, CategoryKey(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return categorize.Result{}, false, nil
	}
	if err != nil {
		return categorize.Result{}, false, fmt.Errorf("get cached category: %w", err)
	}
	var res categorize.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		// Entries written by another table version are treated as misses.
		return categorize.Result{}, false, nil
	}
	return res, true, nil
}

func (c *redisCategoryCache) Set(ctx context.Context, text string, res categorize.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, CategoryKey(text), raw, max(c.ttl, 0)).Err(); err != nil {
		return fmt.Errorf("cache category: %w", err)
	}
	return nil
}
