package export

import (
	"encoding/json"
	"io"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r domain.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// WriteReportFile writes r to path.
func WriteReportFile(path string, r domain.RunReport) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteReport(w, r)
	})
}
