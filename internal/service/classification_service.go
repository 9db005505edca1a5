package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/repository"
)

// ClassificationService categorizes single texts for the API and the CLI,
// memoizing results when a cache is configured.
type ClassificationService struct {
	engine  *categorize.Engine
	cache   repository.CategoryCache
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewClassificationService builds the service. cache may be nil.
func NewClassificationService(engine *categorize.Engine, cache repository.CategoryCache, metrics *observability.Metrics, logger *zap.Logger) *ClassificationService {
	return &ClassificationService{engine: engine, cache: cache, metrics: metrics, logger: logger}
}

// Classify scores text. Cache failures degrade to scoring without the
// cache.
func (s *ClassificationService) Classify(ctx context.Context, text string) categorize.Result {
	if s.cache != nil {
		res, ok, err := s.cache.Get(ctx, text)
		if err != nil {
			s.logger.Warn("category cache read failed", zap.Error(err))
		} else {
			s.metrics.RecordCacheLookup(ok)
			if ok {
				s.metrics.RecordCategorized(res.Category, res.Adjusted)
				return res
			}
		}
	}

	res := s.engine.Score(text)
	s.metrics.RecordCategorized(res.Category, res.Adjusted)

	if s.cache != nil {
		if err := s.cache.Set(ctx, text, res); err != nil {
			s.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return res
}
