// Package bootstrap assembles the services shared by the API server and
// the command line tool.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/events"
	"github.com/spec-kit/ticket-dataset/internal/export"
	"github.com/spec-kit/ticket-dataset/internal/normalize"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/persistence"
	"github.com/spec-kit/ticket-dataset/internal/repository"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/internal/worker"
)

// Container holds the wired services. Postgres and Redis backed parts are
// nil when their store is not configured.
type Container struct {
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Metrics    *observability.Metrics
	Pool       *worker.Pool
	Engine     *categorize.Engine
	Dispatcher events.Dispatcher

	Tickets   repository.TicketRepository
	ChangeLog repository.ChangeLogRepository
	Cache     repository.CategoryCache
	Runs      repository.RunStore

	Classifier *service.ClassificationService
	Repair     *service.RepairService
	Pipeline   *service.PipelineService
	Notifier   *service.NotificationService
}

// New connects the stores, runs migrations when asked to, and builds the
// services from cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	sources, err := ParseSources(cfg.Pipeline.Sources)
	if err != nil {
		return nil, err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	rdb := persistence.NewRedis(cfg.Redis, logger)

	c := &Container{
		Postgres:   pg,
		Redis:      rdb,
		Metrics:    observability.NewMetrics(),
		Pool:       worker.NewPool(cfg.Pipeline.Workers),
		Engine:     categorize.Default(),
		Dispatcher: events.NewInMemoryDispatcher(),
	}

	if pg.Enabled() {
		c.Tickets = repository.NewTicketRepository(pg.PoolHandle())
		c.ChangeLog = repository.NewChangeLogRepository(pg.PoolHandle())
	}
	if rdb.Enabled() {
		c.Cache = repository.NewCategoryCache(rdb.Client, cfg.Redis.CategoryCacheTTL())
		c.Runs = repository.NewRunStore(rdb.Client, cfg.Redis.RunRetention())
	}

	layout := export.Layout{OutDir: cfg.Pipeline.OutDir, LogsDir: cfg.Pipeline.LogsDir}
	sinks := []service.ChangeLogSink{
		export.ChangeLogFileSink{Path: filepath.Join(layout.LogsDir, export.ChangeLogFile)},
	}
	if c.ChangeLog != nil {
		sinks = append(sinks, c.ChangeLog)
	}

	c.Classifier = service.NewClassificationService(c.Engine, c.Cache, c.Metrics, logger)
	c.Repair = service.NewRepairService(c.Pool, c.ChangeLog, c.Metrics)
	c.Pipeline = service.NewPipelineService(service.PipelineOptions{
		Sources:  sources,
		Layout:   layout,
		Workbook: cfg.Pipeline.ExportXLSX,
		Persist:  cfg.Pipeline.Persist,
	}, service.PipelineDependencies{
		Engine:     c.Engine,
		Repair:     c.Repair,
		Pool:       c.Pool,
		Sinks:      sinks,
		Tickets:    c.Tickets,
		Runs:       c.Runs,
		Dispatcher: c.Dispatcher,
		Metrics:    c.Metrics,
	}, logger)

	c.Notifier = service.NewNotificationService(c.Dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(c.Notifier)
	return c, nil
}

// Close waits for background runs and releases the stores.
func (c *Container) Close() {
	if c.Pipeline != nil {
		c.Pipeline.Wait()
	}
	c.Redis.Close()
	c.Postgres.Close()
}

// ParseSources reads "name=path" entries.
func ParseSources(specs []string) ([]normalize.Source, error) {
	out := make([]normalize.Source, 0, len(specs))
	for _, spec := range specs {
		src, err := normalize.ParseSource(spec)
		if err != nil {
			return nil, fmt.Errorf("pipeline sources: %w", err)
		}
		out = append(out, src)
	}
	return out, nil
}
