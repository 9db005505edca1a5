package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// StoredChange is a change log entry as kept in the audit table.
type StoredChange struct {
	RunID     string
	Seq       int
	CreatedAt time.Time
	domain.ChangeLogEntry
}

// ChangeLogRepository stores close timestamp audit entries.
type ChangeLogRepository interface {
	Name() string
	Record(ctx context.Context, runID string, entries []domain.ChangeLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]StoredChange, error)
}

type changeLogRepository struct {
	pool *pgxpool.Pool
}

// NewChangeLogRepository builds repository.
func NewChangeLogRepository(pool *pgxpool.Pool) ChangeLogRepository {
	return &changeLogRepository{pool: pool}
}

func (r *changeLogRepository) Name() string {
	return "postgres"
}

// Record appends entries in one batch, numbered in log order. Re-recording
// a run is a no-op for the entries already stored.
func (r *changeLogRepository) Record(ctx context.Context, runID string, entries []domain.ChangeLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ticket_close_changes (run_id, seq, ticket_id, rule, close_before, close_after)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (run_id, seq) DO NOTHING`

	batch := &pgx.Batch{}
	for i, e := range entries {
		batch.Queue(query, runID, i, e.TicketID, string(e.Rule), e.CloseBefore, e.CloseAfter)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record %d changes: %w", len(entries), err)
	}
	return nil
}

func (r *changeLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]StoredChange, error) {
	const query = `
        SELECT run_id, seq, created_at, ticket_id, rule, close_before, close_after
        FROM ticket_close_changes WHERE ticket_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredChange
	for rows.Next() {
		var c StoredChange
		if err := rows.Scan(
			&c.RunID,
			&c.Seq,
			&c.CreatedAt,
			&c.TicketID,
			&c.Rule,
			&c.CloseBefore,
			&c.CloseAfter,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
