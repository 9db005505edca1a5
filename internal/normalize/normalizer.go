package normalize

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
)

// SourceKind selects the channel mapping and id prefix of an export.
type SourceKind string

const (
	SourceKaggle1   SourceKind = "kaggle_1"
	SourceKaggle2   SourceKind = "kaggle_2"
	SourceSynthetic SourceKind = "synthetic"
)

// ParseSourceKind resolves a source name; unknown names are synthetic.
func ParseSourceKind(name string) SourceKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kaggle_1", "kaggle1":
		return SourceKaggle1
	case "kaggle_2", "kaggle2":
		return SourceKaggle2
	}
	return SourceSynthetic
}

func (k SourceKind) idPrefix() string {
	switch k {
	case SourceKaggle1:
		return "kaggle1_"
	case SourceKaggle2:
		return "kaggle2_"
	}
	return "synt_"
}

func (k SourceKind) channel(v string) domain.Channel {
	switch k {
	case SourceKaggle1:
		return channelFirstSource(v)
	case SourceKaggle2:
		return channelSecondSource(v)
	}
	return channelCanonical(v)
}

// Source is one export to ingest.
type Source struct {
	Name string
	Path string
	Kind SourceKind
}

// ParseSource reads "name=path". A bare path is named after its file.
func ParseSource(spec string) (Source, error) {
	name, path, ok := strings.Cut(spec, "=")
	if !ok {
		path = spec
		name = strings.TrimSuffix(filepath.Base(spec), filepath.Ext(spec))
	}
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if name == "" || path == "" {
		return Source{}, fmt.Errorf("invalid source %q, want name=path", spec)
	}
	return Source{Name: name, Path: path, Kind: ParseSourceKind(name)}, nil
}

// BuildID prefixes the source id, or generates a reproducible one from the
// 0-based row index when the source has none.
func BuildID(kind SourceKind, original string, row int) string {
	original = strings.TrimSpace(original)
	if original == "" {
		return kind.idPrefix() + "GEN" + strconv.Itoa(row+1)
	}
	return kind.idPrefix() + original
}

// Load reads and normalizes src.
func Load(src Source) ([]domain.Ticket, error) {
	table, err := ReadCSV(src.Path)
	if err != nil {
		return nil, err
	}
	return Tickets(src.Kind, table.Records()), nil
}

// Tickets maps canonical records to tickets. Categories are left for the
// categorization engine.
func Tickets(kind SourceKind, records []Record) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(records))
	for i, rec := range records {
		t := domain.Ticket{
			ID:             BuildID(kind, rec.Get(FieldID), i),
			Channel:        kind.channel(rec.Get(FieldChannel)),
			CreatedAt:      timestamp.Normalize(rec.Get(FieldCreatedAt)),
			FirstReplyAt:   timestamp.Normalize(rec.Get(FieldFirstReplyAt)),
			ClosedAt:       timestamp.Normalize(rec.Get(FieldClosedAt)),
			Status:         MapStatus(rec.Get(FieldStatus)),
			Priority:       MapPriority(rec.Get(FieldPriority)),
			AgentID:        rec.Get(FieldAgentID),
			SLATargetHours: rec.Get(FieldSLATarget),
			SLAMet:         MapSLAMet(rec.Get(FieldSLAMet)),
			Summary:        rec[FieldSummary],
			Description:    rec[FieldDescription],
		}
		if MentionsDocumentation(t.Summary + " " + t.Description) {
			t.Channel = domain.ChannelDocumentalPortal
		}
		out = append(out, t)
	}
	return out
}
