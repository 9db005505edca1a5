package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// ChangeLogSheet names the workbook sheet holding the change log.
const ChangeLogSheet = "postfix_changes"

// WriteWorkbook writes one sheet per channel plus the change log.
func WriteWorkbook(path string, tickets []domain.Ticket, changes []domain.ChangeLogEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	byChannel := make(map[domain.Channel][]domain.Ticket)
	for _, t := range tickets {
		byChannel[t.Channel] = append(byChannel[t.Channel], t)
	}

	first := true
	for _, ch := range domain.Channels {
		name := string(ch)
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		rows := make([][]string, 0, len(byChannel[ch]))
		for _, t := range byChannel[ch] {
			rows = append(rows, t.Record())
		}
		if err := writeSheet(f, name, domain.DatasetColumns, rows); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(ChangeLogSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", ChangeLogSheet, err)
	}
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{c.TicketID, string(c.Rule), c.CloseBefore, c.CloseAfter})
	}
	if err := writeSheet(f, ChangeLogSheet, ChangeLogColumns, rows); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream sheet %s: %w", sheet, err)
	}
	if err := sw.SetRow("A1", cells(header)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return sw.Flush()
}

// cells keeps every value a string cell so ids and timestamps are not
// reinterpreted as numbers or dates.
func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
