// Package timestamp parses and formats the timezone-naive, minute
// resolution timestamps of the ticket dataset.
package timestamp

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// Layout is the canonical dataset representation.
const Layout = "2006-01-02 15:04"

// Parse reads s in the canonical layout, falling back to a generic
// day-first parser when s contains a digit. The result is truncated to the
// minute and carries no meaningful zone (UTC stands in for "naive").
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return t, true
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return Naive(t), true
}

// Naive drops the zone of t, keeping its wall clock, at minute resolution.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Value is an optional timestamp.
type Value struct {
	Time  time.Time
	Valid bool
}

// ParseValue wraps Parse.
func ParseValue(s string) Value {
	t, ok := Parse(s)
	return Value{Time: t, Valid: ok}
}

// Of returns a present Value.
func Of(t time.Time) Value {
	return Value{Time: Naive(t), Valid: true}
}

// String formats v, or returns "" when absent.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return Format(v.Time)
}

// Before reports whether both values are present and v < o.
func (v Value) Before(o Value) bool {
	return v.Valid && o.Valid && v.Time.Before(o.Time)
}

// After reports whether both values are present and v > o.
func (v Value) After(o Value) bool {
	return v.Valid && o.Valid && v.Time.After(o.Time)
}

// Latest returns the later of the present values, or an absent Value.
func Latest(vals ...Value) Value {
	var out Value
	for _, v := range vals {
		if v.Valid && (!out.Valid || v.Time.After(out.Time)) {
			out = v
		}
	}
	return out
}
