// Package normalize reads heterogeneous ticket exports and maps them onto
// the canonical dataset fields.
package normalize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Table is a raw CSV export: a header and string cells.
type Table struct {
	Header    []string
	Rows      [][]string
	Encoding  string
	Delimiter rune
}

var delimiters = []rune{';', ',', '|', '\t'}

const sniffSample = 4096

// ReadCSV loads path, detecting its encoding and delimiter.
func ReadCSV(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table, err := ParseCSV(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// ParseCSV decodes raw bytes and splits them into a Table.
func ParseCSV(raw []byte) (*Table, error) {
	text, enc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	delim := sniffDelimiter(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &Table{Encoding: enc, Delimiter: delim}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &Table{Header: header, Encoding: enc, Delimiter: delim}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}
		if isBlank(rec) {
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

// decode tries UTF-8 (with or without BOM), then BOM-marked UTF-16, then
// Latin-1, which accepts any byte sequence.
func decode(raw []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), "utf-8-sig", nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", "", fmt.Errorf("decode utf-16: %w", err)
		}
		return string(out), "utf-16", nil
	case utf8.Valid(raw):
		return string(raw), "utf-8", nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(out), "latin-1", nil
}

// sniffDelimiter picks the candidate that splits the first lines into the
// same, largest number of fields.
func sniffDelimiter(text string) rune {
	sample := text
	if len(sample) > sniffSample {
		sample = sample[:sniffSample]
	}
	var lines []string
	for _, l := range strings.Split(sample, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
		if len(lines) == 10 {
			break
		}
	}
	// The last sampled line may be cut short.
	if len(sample) < len(text) && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	best, bestCount := rune(0), 0
	for _, d := range delimiters {
		count := -1
		for _, l := range lines {
			n := strings.Count(l, string(d))
			if count == -1 {
				count = n
			} else if n != count {
				count = 0
				break
			}
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	if best != 0 {
		return best
	}
	if strings.Count(sample, ",") >= strings.Count(sample, ";") {
		return ','
	}
	return ';'
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
