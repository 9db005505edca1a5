package normalize

import (
	"strings"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/textnorm"
)

// Canonical field names.
const (
	FieldID           = "id_ticket"
	FieldChannel      = "canal"
	FieldCreatedAt    = "fecha_creacion"
	FieldFirstReplyAt = "first_reply_at"
	FieldClosedAt     = "fecha_cierre"
	FieldStatus       = "estado"
	FieldPriority     = "prioridad"
	FieldCategory     = "categoria"
	FieldAgentID      = "agente_id"
	FieldSLATarget    = "sla_target_horas"
	FieldSLAMet       = "sla_met"
	FieldSummary      = "resumen"
	FieldDescription  = "descripcion"
)

// aliases maps normalized header names onto canonical fields. Canonical
// names map to themselves.
var aliases = func() map[string]string {
	m := make(map[string]string, 64)
	for _, c := range domain.DatasetColumns {
		m[c] = c
	}
	add := func(field string, names ...string) {
		for _, n := range names {
			m[n] = field
		}
	}
	add(FieldID, "ticket_id", "number")
	add(FieldChannel, "channel", "contact_type", "ticket_channel")
	add(FieldCreatedAt, "date", "created_at", "creation_date", "open_date", "created")
	add(FieldFirstReplyAt, "first_response_time", "first_response", "response_time", "first_contact_date")
	add(FieldClosedAt, "resolved_at", "time_to_resolution", "closed_at", "resolution_date", "close_date", "resolved")
	add(FieldStatus, "status", "ticket_status", "state")
	add(FieldPriority, "priority", "ticket_priority")
	add(FieldAgentID, "agent", "agent_id", "assignee", "owner")
	add(FieldSLATarget, "sla_target_hours", "sla_target")
	add(FieldSummary, "subject", "short_description", "ticket_subject")
	add(FieldDescription, "content", "description", "ticket_description", "body")
	return m
}()

// CanonicalField resolves a raw header to its canonical field, if any.
func CanonicalField(header string) (string, bool) {
	f, ok := aliases[textnorm.Identifier(header)]
	return f, ok
}

// Record is one source row keyed by canonical field. Fields missing in the
// source read as "".
type Record map[string]string

// Get returns the value of field, trimmed of surrounding whitespace.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Records renames the columns of t to canonical fields. When several
// columns land on the same field the first non-blank value wins per row.
// Columns without a canonical name are dropped.
func (t *Table) Records() []Record {
	fields := make([]string, len(t.Header))
	for i, h := range t.Header {
		if f, ok := CanonicalField(h); ok {
			fields[i] = f
		}
	}

	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(domain.DatasetColumns))
		for i, f := range fields {
			if f == "" || i >= len(row) {
				continue
			}
			if strings.TrimSpace(rec[f]) == "" {
				rec[f] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
