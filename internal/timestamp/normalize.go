package timestamp

import (
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Day-first layouts win over month-first ones for ambiguous dates.
var sourceLayouts = []string{
	"2006-01-02 15:04:05",
	Layout,
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// Normalize converts a raw source date into the canonical layout, or ""
// when it cannot be read.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "T") {
		iso := strings.Replace(s, "Z", "+00:00", 1)
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, iso); err == nil {
				return Format(Naive(t))
			}
		}
	}
	for _, layout := range sourceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Format(t)
		}
	}
	if t, ok := Parse(s); ok {
		return Format(t)
	}
	return ""
}
