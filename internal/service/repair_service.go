package service

import (
	"context"
	"time"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/repair"
	"github.com/spec-kit/ticket-dataset/internal/repository"
	"github.com/spec-kit/ticket-dataset/internal/worker"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// RepairService runs the temporal coherence repair over batches.
type RepairService struct {
	pool    *worker.Pool
	changes repository.ChangeLogRepository
	metrics *observability.Metrics
	clock   func() time.Time
}

// NewRepairService builds the service. changes may be nil when no audit
// database is configured.
func NewRepairService(pool *worker.Pool, changes repository.ChangeLogRepository, metrics *observability.Metrics) *RepairService {
	return &RepairService{pool: pool, changes: changes, metrics: metrics, clock: time.Now}
}

// RepairBatch captures the processing time once and repairs tickets in
// parallel. Tickets keep their order and change entries follow ticket
// order, each ticket's entries in rule order.
func (s *RepairService) RepairBatch(ctx context.Context, tickets []domain.Ticket) ([]domain.Ticket, []domain.ChangeLogEntry, time.Time, error) {
	r := repair.New(s.clock())
	fixed, changes, err := worker.Collect(ctx, s.pool, tickets, r.Repair)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	s.metrics.RecordRepairChanges(changes)
	return fixed, changes, r.Now(), nil
}

// TicketChanges lists the stored audit entries of one ticket.
func (s *RepairService) TicketChanges(ctx context.Context, ticketID string) ([]repository.StoredChange, error) {
	if s.changes == nil {
		return nil, errorutil.NewUnavailable("change log store")
	}
	return s.changes.ListByTicket(ctx, ticketID)
}
