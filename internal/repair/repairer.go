// Package repair reconciles each ticket's close timestamp with its status
// and its other timestamps, recording every change it makes.
package repair

import (
	"time"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
)

// Repairer applies the rule pipeline against one processing time. It holds
// no mutable state and may be shared between goroutines.
type Repairer struct {
	now time.Time
}

// New builds a Repairer for a run started at now. Only the wall clock of
// now is used.
func New(now time.Time) *Repairer {
	return &Repairer{now: timestamp.Naive(now)}
}

// Now returns the processing time the rules compare against.
func (r *Repairer) Now() time.Time {
	return r.now
}

// Repair returns t with a coherent close timestamp, and one change log
// entry per rule that altered it, in rule order. The close field of the
// result is always in the canonical layout (or empty).
func (r *Repairer) Repair(t domain.Ticket) (domain.Ticket, []domain.ChangeLogEntry) {
	s := state{
		status:  t.Status,
		created: timestamp.ParseValue(t.CreatedAt),
		first:   timestamp.ParseValue(t.FirstReplyAt),
		close:   timestamp.ParseValue(t.ClosedAt),
	}

	var changes []domain.ChangeLogEntry
	for _, apply := range pipeline {
		next, tag, fired := apply(s, r.now)
		if !fired || sameValue(next, s.close) {
			continue
		}
		changes = append(changes, domain.ChangeLogEntry{
			TicketID:    t.ID,
			Rule:        tag,
			CloseBefore: s.close.String(),
			CloseAfter:  next.String(),
		})
		s.close = next
	}

	t.ClosedAt = s.close.String()
	return t, changes
}

// RepairAll repairs tickets in order. The input slice is not modified.
func (r *Repairer) RepairAll(tickets []domain.Ticket) ([]domain.Ticket, []domain.ChangeLogEntry) {
	out := make([]domain.Ticket, len(tickets))
	var changes []domain.ChangeLogEntry
	for i, t := range tickets {
		fixed, c := r.Repair(t)
		out[i] = fixed
		changes = append(changes, c...)
	}
	return out, changes
}
