package domain

// TicketStatus enumerates lifecycle states for tickets. Values are the
// labels written to the normalized dataset.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Abierto"
	TicketStatusInProgress TicketStatus = "En curso"
	TicketStatusResolved   TicketStatus = "Resuelto"
	TicketStatusClosed     TicketStatus = "Cerrado"
	TicketStatusReopened   TicketStatus = "Reabierto"
)

// IsOpen reports whether the status still expects work on the ticket.
func (s TicketStatus) IsOpen() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusReopened:
		return true
	}
	return false
}

// IsClosed reports whether the status marks the ticket as finished.
func (s TicketStatus) IsClosed() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "Crítica"
	TicketPriorityHigh     TicketPriority = "Alta"
	TicketPriorityMedium   TicketPriority = "Media"
	TicketPriorityLow      TicketPriority = "Baja"
)

// Channel enumerates the intake channels of the unified dataset.
type Channel string

const (
	ChannelEmail            Channel = "EMAIL"
	ChannelSupportPortal    Channel = "PORTAL_SOPORTE"
	ChannelDocumentalPortal Channel = "PORTAL_DOCUMENTAL"
	ChannelInternalPortal   Channel = "PORTAL_INTERNO"
)

// Channels lists every channel in export order.
var Channels = []Channel{
	ChannelEmail,
	ChannelSupportPortal,
	ChannelDocumentalPortal,
	ChannelInternalPortal,
}

// Ticket is one normalized support request. Timestamps hold the dataset
// representation (YYYY-MM-DD HH:MM) or "" when absent.
type Ticket struct {
	ID             string
	Channel        Channel
	CreatedAt      string
	FirstReplyAt   string
	ClosedAt       string
	Status         TicketStatus
	Priority       TicketPriority
	Category       Category
	AgentID        string
	SLATargetHours string
	SLAMet         string
	Summary        string
	Description    string
}

// Text returns the free text used for categorization: summary, then
// description.
func (t Ticket) Text() string {
	return t.Summary + " | " + t.Description
}

// DatasetColumns is the fixed column order of the normalized dataset.
var DatasetColumns = []string{
	"id_ticket", "canal", "fecha_creacion", "first_reply_at", "fecha_cierre",
	"estado", "prioridad", "categoria", "agente_id", "sla_target_horas", "sla_met",
	"resumen", "descripcion",
}

// Record renders the ticket in DatasetColumns order.
func (t Ticket) Record() []string {
	return []string{
		t.ID,
		string(t.Channel),
		t.CreatedAt,
		t.FirstReplyAt,
		t.ClosedAt,
		string(t.Status),
		string(t.Priority),
		t.Category.String(),
		t.AgentID,
		t.SLATargetHours,
		t.SLAMet,
		t.Summary,
		t.Description,
	}
}
