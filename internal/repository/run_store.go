package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

const (
	runKeyPrefix = "runs:"
	latestRunKey = "runs:latest"
)

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// RunStore keeps run reports for the API.
type RunStore interface {
	Save(ctx context.Context, report domain.RunReport) error
	Get(ctx context.Context, id string) (domain.RunReport, error)
	Latest(ctx context.Context) (domain.RunReport, error)
}

type redisRunStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunStore builds a Redis backed run store. Reports expire after ttl;
// ttl <= 0 keeps them.
func NewRunStore(client *redis.Client, ttl time.Duration) RunStore {
	return &redisRunStore{client: client, ttl: ttl}
}

// Save writes the report and points the latest marker at it.
func (s *redisRunStore) Save(ctx context.Context, report domain.RunReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	ttl := max(s.ttl, 0)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, runKeyPrefix+report.ID, raw, ttl)
		pipe.Set(ctx, latestRunKey, report.ID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.ID, err)
	}
	return nil
}

func (s *redisRunStore) Get(ctx context.Context, id string) (domain.RunReport, error) {
	raw, err := s.client.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RunReport{}, ErrRunNotFound
	}
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("get run %s: %w", id, err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.RunReport{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return report, nil
}

func (s *redisRunStore) Latest(ctx context.Context) (domain.RunReport, error) {
	id, err := s.client.Get(ctx, latestRunKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.RunReport{}, ErrRunNotFound
	}
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("get latest run: %w", err)
	}
	return s.Get(ctx, id)
}
