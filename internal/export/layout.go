// Package export writes the normalized dataset and the run artifacts.
package export

import (
	"path/filepath"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

const (
	DatasetFile   = "tickets_normalizados.csv"
	WorkbookFile  = "tickets_normalizados.xlsx"
	ChangeLogFile = "postfix_changes.csv"
	ReportFile    = "normalizar_report.json"
)

var channelFiles = map[domain.Channel]string{
	domain.ChannelEmail:            "email.csv",
	domain.ChannelSupportPortal:    "portal_soporte.csv",
	domain.ChannelDocumentalPortal: "portal_documental.csv",
	domain.ChannelInternalPortal:   "portal_interno.csv",
}

// Layout places run artifacts: datasets under OutDir, the change log and
// the report under LogsDir.
type Layout struct {
	OutDir  string
	LogsDir string
}

// Outputs returns the paths a run with this layout writes.
func (l Layout) Outputs(workbook bool) domain.RunOutputs {
	out := domain.RunOutputs{
		Dataset:   filepath.Join(l.OutDir, DatasetFile),
		ByChannel: make(map[domain.Channel]string, len(channelFiles)),
		ChangeLog: filepath.Join(l.LogsDir, ChangeLogFile),
		Report:    filepath.Join(l.LogsDir, ReportFile),
	}
	for _, ch := range domain.Channels {
		out.ByChannel[ch] = filepath.Join(l.OutDir, channelFiles[ch])
	}
	if workbook {
		out.Workbook = filepath.Join(l.OutDir, WorkbookFile)
	}
	return out
}
