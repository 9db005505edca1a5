package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
)

// TicketRepository persists the normalized dataset.
type TicketRepository interface {
	UpsertAll(ctx context.Context, runID string, tickets []domain.Ticket) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

var ticketColumns = []string{
	"id_ticket", "canal", "fecha_creacion", "first_reply_at", "fecha_cierre",
	"estado", "prioridad", "categoria", "agente_id", "sla_target_horas", "sla_met",
	"resumen", "descripcion", "run_id",
}

// UpsertAll copies tickets into a staging table and merges them by id. A
// later row wins over an earlier row with the same id.
func (r *ticketRepository) UpsertAll(ctx context.Context, runID string, tickets []domain.Ticket) (int64, error) {
	if len(tickets) == 0 {
		return 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const stage = `
        CREATE TEMP TABLE dataset_tickets_stage (
            LIKE dataset_tickets INCLUDING DEFAULTS,
            ord INTEGER NOT NULL
        ) ON COMMIT DROP`
	if _, err := tx.Exec(ctx, stage); err != nil {
		return 0, fmt.Errorf("create stage: %w", err)
	}

	cols := append(append([]string{}, ticketColumns...), "ord")
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"dataset_tickets_stage"}, cols,
		pgx.CopyFromSlice(len(tickets), func(i int) ([]any, error) {
			return append(ticketRow(tickets[i], runID), i), nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy tickets: %w", err)
	}

	list := strings.Join(ticketColumns, ", ")
	updates := make([]string, 0, len(ticketColumns))
	for _, c := range ticketColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s=EXCLUDED.%s", c, c))
	}
	merge := fmt.Sprintf(`
        INSERT INTO dataset_tickets (%s)
        SELECT DISTINCT ON (id_ticket) %s FROM dataset_tickets_stage ORDER BY id_ticket, ord DESC
        ON CONFLICT (id_ticket) DO UPDATE SET %s, updated_at=NOW()`,
		list, list, strings.Join(updates, ", "))
	cmd, err := tx.Exec(ctx, merge)
	if err != nil {
		return 0, fmt.Errorf("merge tickets: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM dataset_tickets WHERE id_ticket=$1`,
		strings.Join(ticketColumns[:len(ticketColumns)-1], ", "))

	var (
		t                        domain.Ticket
		created, first, closedAt *time.Time
		slaMet                   *bool
		category                 string
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Channel,
		&created,
		&first,
		&closedAt,
		&t.Status,
		&t.Priority,
		&category,
		&t.AgentID,
		&t.SLATargetHours,
		&slaMet,
		&t.Summary,
		&t.Description,
	); err != nil {
		return nil, err
	}
	cat, err := domain.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", id, err)
	}
	t.Category = cat
	t.CreatedAt = formatTime(created)
	t.FirstReplyAt = formatTime(first)
	t.ClosedAt = formatTime(closedAt)
	t.SLAMet = formatBool(slaMet)
	return &t, nil
}

func ticketRow(t domain.Ticket, runID string) []any {
	return []any{
		t.ID,
		string(t.Channel),
		parseTime(t.CreatedAt),
		parseTime(t.FirstReplyAt),
		parseTime(t.ClosedAt),
		string(t.Status),
		string(t.Priority),
		t.Category.String(),
		t.AgentID,
		t.SLATargetHours,
		parseBool(t.SLAMet),
		t.Summary,
		t.Description,
		runID,
	}
}

func parseTime(s string) *time.Time {
	t, ok := timestamp.Parse(s)
	if !ok {
		return nil
	}
	return &t
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timestamp.Format(*t)
}

func parseBool(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "true"
	}
	return "false"
}
