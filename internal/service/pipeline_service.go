package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/events"
	"github.com/spec-kit/ticket-dataset/internal/export"
	"github.com/spec-kit/ticket-dataset/internal/normalize"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/repository"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
	"github.com/spec-kit/ticket-dataset/internal/worker"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// ErrRunInProgress is returned when a run is requested while another one
// is still going.
var ErrRunInProgress = errorutil.NewConflict("a pipeline run is already in progress", nil)

// ChangeLogSink receives the change log of every run.
type ChangeLogSink interface {
	Name() string
	Record(ctx context.Context, runID string, entries []domain.ChangeLogEntry) error
}

// PipelineOptions describes what a run reads and writes.
type PipelineOptions struct {
	Sources  []normalize.Source
	Layout   export.Layout
	Workbook bool
	// Persist upserts the dataset into the ticket repository when one is
	// configured.
	Persist bool
}

// PipelineDependencies bundles the collaborators of the pipeline. Only
// Engine, Repair and Pool are required.
type PipelineDependencies struct {
	Engine     *categorize.Engine
	Repair     *RepairService
	Pool       *worker.Pool
	Sinks      []ChangeLogSink
	Tickets    repository.TicketRepository
	Runs       repository.RunStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// PipelineService runs normalize, categorize, repair and export over the
// configured sources. At most one run executes at a time.
type PipelineService struct {
	opts    PipelineOptions
	deps    PipelineDependencies
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() string
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPipelineService builds the service.
func NewPipelineService(opts PipelineOptions, deps PipelineDependencies, logger *zap.Logger) *PipelineService {
	return &PipelineService{
		opts:   opts,
		deps:   deps,
		logger: logger,
		clock:  time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run executes a run synchronously and returns its report. The report is
// returned on failure too, with the failed status and error.
func (s *PipelineService) Run(ctx context.Context) (domain.RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.RunReport{}, ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.execute(ctx, s.newReport())
}

// Start launches a run in the background and returns its initial report.
// The run outlives ctx's cancellation but keeps its values.
func (s *PipelineService) Start(ctx context.Context) (domain.RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.RunReport{}, ErrRunInProgress
	}
	report := s.newReport()
	s.saveRun(ctx, report)

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		if _, err := s.execute(runCtx, report); err != nil {
			s.logger.Error("background run failed", zap.String("run_id", report.ID), zap.Error(err))
		}
	}()
	return report, nil
}

// Wait blocks until background runs have finished.
func (s *PipelineService) Wait() {
	s.wg.Wait()
}

// Running reports whether a run is in progress.
func (s *PipelineService) Running() bool {
	return s.running.Load()
}

// GetRun returns a stored run report.
func (s *PipelineService) GetRun(ctx context.Context, id string) (domain.RunReport, error) {
	if s.deps.Runs == nil {
		return domain.RunReport{}, errorutil.NewUnavailable("run store")
	}
	report, err := s.deps.Runs.Get(ctx, id)
	if errors.Is(err, repository.ErrRunNotFound) {
		return domain.RunReport{}, errorutil.NewNotFound("run", map[string]any{"id": id})
	}
	return report, err
}

// LatestRun returns the most recently started run.
func (s *PipelineService) LatestRun(ctx context.Context) (domain.RunReport, error) {
	if s.deps.Runs == nil {
		return domain.RunReport{}, errorutil.NewUnavailable("run store")
	}
	report, err := s.deps.Runs.Latest(ctx)
	if errors.Is(err, repository.ErrRunNotFound) {
		return domain.RunReport{}, errorutil.NewNotFound("run", nil)
	}
	return report, err
}

func (s *PipelineService) newReport() domain.RunReport {
	return domain.RunReport{
		ID:        s.newID(),
		Status:    domain.RunStatusRunning,
		StartedAt: s.clock().UTC(),
	}
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func (s *PipelineService) execute(ctx context.Context, report domain.RunReport) (domain.RunReport, error) {
	logger := s.logger.With(zap.String("run_id", report.ID))
	names := make([]string, len(s.opts.Sources))
	for i, src := range s.opts.Sources {
		names[i] = src.Name
	}
	s.publish(ctx, report.ID, events.EventRunStarted, events.RunStartedPayload{Sources: names, Workers: s.deps.Pool.Workers()})
	logger.Info("pipeline run started", zap.Strings("sources", names))

	err := s.stages(ctx, &report, logger)
	report.FinishedAt = s.clock().UTC()
	duration := report.FinishedAt.Sub(report.StartedAt)

	if err != nil {
		report.Status = domain.RunStatusFailed
		report.Error = err.Error()
		stage := "run"
		var se *stageError
		if errors.As(err, &se) {
			stage = se.stage
		}
		s.saveRun(ctx, report)
		s.deps.Metrics.RecordRun(report.Status, duration)
		s.publish(ctx, report.ID, events.EventRunFailed, events.RunFailedPayload{Stage: stage, Error: err.Error()})
		logger.Error("pipeline run failed", zap.String("stage", stage), zap.Error(err))
		return report, err
	}

	report.Status = domain.RunStatusCompleted
	if report.Outputs.Report != "" {
		if err := export.WriteReportFile(report.Outputs.Report, report); err != nil {
			logger.Warn("write run report failed", zap.Error(err))
		}
	}
	s.saveRun(ctx, report)
	s.deps.Metrics.RecordRun(report.Status, duration)
	s.publish(ctx, report.ID, events.EventRunCompleted, events.RunCompletedPayload{Report: report})
	logger.Info("pipeline run completed",
		zap.Int("total", report.Total),
		zap.Any("changes_by_rule", report.ChangesByRule),
		zap.Duration("duration", duration))
	return report, nil
}

func (s *PipelineService) stages(ctx context.Context, report *domain.RunReport, logger *zap.Logger) error {
	if len(s.opts.Sources) == 0 {
		return &stageError{stage: "normalize", err: errors.New("no sources configured")}
	}

	report.DictionaryImpact = make(map[string]domain.SourceImpact, len(s.opts.Sources))
	var all []domain.Ticket
	for _, src := range s.opts.Sources {
		if err := ctx.Err(); err != nil {
			return &stageError{stage: "normalize", err: err}
		}
		tickets, err := normalize.Load(src)
		if err != nil {
			return &stageError{stage: "normalize", err: fmt.Errorf("source %s: %w", src.Name, err)}
		}
		categorized, impact, err := s.categorize(ctx, tickets)
		if err != nil {
			return &stageError{stage: "categorize", err: err}
		}
		report.DictionaryImpact[src.Name] = impact
		logger.Info("source normalized",
			zap.String("source", src.Name),
			zap.Int("rows", impact.Rows),
			zap.Int("rows_with_add", impact.RowsWithAdd),
			zap.Int("rows_with_neg", impact.RowsWithNeg),
			zap.Int("rows_adjusted_by_rules", impact.RowsAdjustedByRules))
		all = append(all, categorized...)
	}

	fixed, changes, now, err := s.deps.Repair.RepairBatch(ctx, all)
	if err != nil {
		return &stageError{stage: "repair", err: err}
	}
	report.ProcessingTime = timestamp.Format(now)
	report.Tally(fixed)
	report.TallyChanges(changes)
	report.Outputs = s.opts.Layout.Outputs(s.opts.Workbook)

	for _, sink := range s.deps.Sinks {
		if err := sink.Record(ctx, report.ID, changes); err != nil {
			s.deps.Metrics.RecordSinkFailure(sink.Name())
			return &stageError{stage: "deliver", err: fmt.Errorf("sink %s: %w", sink.Name(), err)}
		}
	}

	if s.opts.Persist && s.deps.Tickets != nil {
		n, err := s.deps.Tickets.UpsertAll(ctx, report.ID, fixed)
		if err != nil {
			return &stageError{stage: "persist", err: err}
		}
		logger.Info("dataset persisted", zap.Int64("rows", n))
	}

	if err := ctx.Err(); err != nil {
		return &stageError{stage: "export", err: err}
	}
	if err := export.WriteDatasetFile(report.Outputs.Dataset, fixed); err != nil {
		return &stageError{stage: "export", err: err}
	}
	if err := export.WriteChannelFiles(report.Outputs.ByChannel, fixed); err != nil {
		return &stageError{stage: "export", err: err}
	}
	if report.Outputs.Workbook != "" {
		if err := export.WriteWorkbook(report.Outputs.Workbook, fixed, changes); err != nil {
			return &stageError{stage: "export", err: err}
		}
	}
	return nil
}

// categorize assigns categories in parallel and counts how the
// reinforcement, penalty and rule tables touched the rows.
func (s *PipelineService) categorize(ctx context.Context, tickets []domain.Ticket) ([]domain.Ticket, domain.SourceImpact, error) {
	type scored struct {
		ticket domain.Ticket
		res    categorize.Result
	}
	results, err := worker.Map(ctx, s.deps.Pool, tickets, func(t domain.Ticket) scored {
		res := s.deps.Engine.Score(t.Text())
		t.Category = res.Category
		return scored{ticket: t, res: res}
	})
	if err != nil {
		return nil, domain.SourceImpact{}, err
	}

	impact := domain.SourceImpact{Rows: len(results)}
	out := make([]domain.Ticket, len(results))
	for i, r := range results {
		out[i] = r.ticket
		if r.res.AddHits > 0 {
			impact.RowsWithAdd++
		}
		if r.res.NegHits > 0 {
			impact.RowsWithNeg++
		}
		if r.res.Adjusted {
			impact.RowsAdjustedByRules++
		}
		s.deps.Metrics.RecordCategorized(r.res.Category, r.res.Adjusted)
	}
	return out, impact, nil
}

func (s *PipelineService) saveRun(ctx context.Context, report domain.RunReport) {
	if s.deps.Runs == nil {
		return
	}
	if err := s.deps.Runs.Save(ctx, report); err != nil {
		s.logger.Warn("save run report failed", zap.String("run_id", report.ID), zap.Error(err))
	}
}

func (s *PipelineService) publish(ctx context.Context, runID string, typ events.EventType, payload interface{}) {
	if s.deps.Dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		RunID:     runID,
		Timestamp: s.clock().UTC(),
		Payload:   payload,
	}
	if err := s.deps.Dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(typ)), zap.Error(err))
	}
}
