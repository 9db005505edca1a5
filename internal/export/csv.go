package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

const bom = "\ufeff"

// ChangeLogColumns is the header of the change log file.
var ChangeLogColumns = []string{"id_ticket", "regla", "antes_fecha_cierre", "despues_fecha_cierre"}

// WriteDataset writes tickets as a BOM-prefixed, semicolon separated CSV
// with the canonical header.
func WriteDataset(w io.Writer, tickets []domain.Ticket) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(domain.DatasetColumns); err != nil {
		return err
	}
	for _, t := range tickets {
		if err := cw.Write(t.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChangeLog writes entries as a BOM-prefixed, comma separated CSV.
func WriteChangeLog(w io.Writer, entries []domain.ChangeLogEntry) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ChangeLogColumns); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.TicketID, string(e.Rule), e.CloseBefore, e.CloseAfter}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDatasetFile writes the unified dataset to path.
func WriteDatasetFile(path string, tickets []domain.Ticket) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteDataset(w, tickets)
	})
}

// WriteChannelFiles writes one dataset per channel. Every channel gets a
// file, empty channels a header only.
func WriteChannelFiles(paths map[domain.Channel]string, tickets []domain.Ticket) error {
	byChannel := make(map[domain.Channel][]domain.Ticket, len(paths))
	for _, t := range tickets {
		byChannel[t.Channel] = append(byChannel[t.Channel], t)
	}
	for _, ch := range domain.Channels {
		path, ok := paths[ch]
		if !ok {
			continue
		}
		if err := WriteDatasetFile(path, byChannel[ch]); err != nil {
			return err
		}
	}
	return nil
}

// ChangeLogFileSink writes each run's change log to a fixed path,
// replacing the previous run's file.
type ChangeLogFileSink struct {
	Path string
}

// Name identifies the sink in logs.
func (s ChangeLogFileSink) Name() string {
	return "csv:" + s.Path
}

// Record writes entries; the run id is not part of the file format.
func (s ChangeLogFileSink) Record(_ context.Context, _ string, entries []domain.ChangeLogEntry) error {
	return writeFile(s.Path, func(w io.Writer) error {
		return WriteChangeLog(w, entries)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
