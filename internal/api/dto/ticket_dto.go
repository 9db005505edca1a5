package dto

import (
	"time"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/repository"
)

// TicketPayload is a dataset row keyed by its column names.
type TicketPayload struct {
	ID             string `json:"id_ticket"`
	Channel        string `json:"canal"`
	CreatedAt      string `json:"fecha_creacion"`
	FirstReplyAt   string `json:"first_reply_at"`
	ClosedAt       string `json:"fecha_cierre"`
	Status         string `json:"estado"`
	Priority       string `json:"prioridad"`
	Category       string `json:"categoria"`
	AgentID        string `json:"agente_id"`
	SLATargetHours string `json:"sla_target_horas"`
	SLAMet         string `json:"sla_met"`
	Summary        string `json:"resumen"`
	Description    string `json:"descripcion"`
}

// Ticket converts the payload. An unknown category is left to the default.
func (p TicketPayload) Ticket() domain.Ticket {
	cat, err := domain.ParseCategory(p.Category)
	if err != nil {
		cat = domain.CategoryDefault
	}
	return domain.Ticket{
		ID:             p.ID,
		Channel:        domain.Channel(p.Channel),
		CreatedAt:      p.CreatedAt,
		FirstReplyAt:   p.FirstReplyAt,
		ClosedAt:       p.ClosedAt,
		Status:         domain.TicketStatus(p.Status),
		Priority:       domain.TicketPriority(p.Priority),
		Category:       cat,
		AgentID:        p.AgentID,
		SLATargetHours: p.SLATargetHours,
		SLAMet:         p.SLAMet,
		Summary:        p.Summary,
		Description:    p.Description,
	}
}

// NewTicketPayload renders t.
func NewTicketPayload(t domain.Ticket) TicketPayload {
	return TicketPayload{
		ID:             t.ID,
		Channel:        string(t.Channel),
		CreatedAt:      t.CreatedAt,
		FirstReplyAt:   t.FirstReplyAt,
		ClosedAt:       t.ClosedAt,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Category:       t.Category.String(),
		AgentID:        t.AgentID,
		SLATargetHours: t.SLATargetHours,
		SLAMet:         t.SLAMet,
		Summary:        t.Summary,
		Description:    t.Description,
	}
}

// RepairRequest payload.
type RepairRequest struct {
	Tickets []TicketPayload `json:"tickets"`
}

// RepairResponse returns the repaired batch and its change log.
type RepairResponse struct {
	ProcessingTime string                  `json:"processing_time"`
	Tickets        []TicketPayload         `json:"tickets"`
	Changes        []domain.ChangeLogEntry `json:"changes"`
}

// ChangeResponse is a stored audit entry.
type ChangeResponse struct {
	RunID       string    `json:"run_id"`
	Seq         int       `json:"seq"`
	RecordedAt  time.Time `json:"recorded_at"`
	Rule        string    `json:"rule"`
	CloseBefore string    `json:"close_before"`
	CloseAfter  string    `json:"close_after"`
}

// NewChangeResponses renders stored changes.
func NewChangeResponses(changes []repository.StoredChange) []ChangeResponse {
	out := make([]ChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = ChangeResponse{
			RunID:       c.RunID,
			Seq:         c.Seq,
			RecordedAt:  c.CreatedAt,
			Rule:        string(c.Rule),
			CloseBefore: c.CloseBefore,
			CloseAfter:  c.CloseAfter,
		}
	}
	return out
}
