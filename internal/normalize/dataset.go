package normalize

import (
	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// LoadDataset reads a file previously written in the normalized layout.
// Values are taken as they are; only the category code is parsed, and an
// unknown code falls back to the default category.
func LoadDataset(path string) ([]domain.Ticket, error) {
	table, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return DatasetTickets(table.Records()), nil
}

// DatasetTickets maps already normalized records to tickets.
func DatasetTickets(records []Record) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(records))
	for _, rec := range records {
		cat, err := domain.ParseCategory(rec.Get(FieldCategory))
		if err != nil {
			cat = domain.CategoryDefault
		}
		out = append(out, domain.Ticket{
			ID:             rec.Get(FieldID),
			Channel:        domain.Channel(rec.Get(FieldChannel)),
			CreatedAt:      rec.Get(FieldCreatedAt),
			FirstReplyAt:   rec.Get(FieldFirstReplyAt),
			ClosedAt:       rec.Get(FieldClosedAt),
			Status:         domain.TicketStatus(rec.Get(FieldStatus)),
			Priority:       domain.TicketPriority(rec.Get(FieldPriority)),
			Category:       cat,
			AgentID:        rec.Get(FieldAgentID),
			SLATargetHours: rec.Get(FieldSLATarget),
			SLAMet:         rec.Get(FieldSLAMet),
			Summary:        rec[FieldSummary],
			Description:    rec[FieldDescription],
		})
	}
	return out
}
