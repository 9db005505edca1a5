// Package textnorm folds free text into the form the keyword matchers
// compare against.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripMarks decomposes s and drops combining marks ("contraseña" ->
// "contrasena").
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold strips marks and lower-cases s.
func Fold(s string) string {
	return strings.ToLower(StripMarks(s))
}

// IsWordRune reports whether r belongs to a token (letter, digit or
// underscore).
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Identifier turns a header such as "Fecha de Creación" into
// "fecha_de_creacion".
func Identifier(s string) string {
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = StripMarks(strings.TrimSpace(s))
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}
