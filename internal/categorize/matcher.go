package categorize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/textnorm"
)

type span struct {
	start, end int
}

func (s span) within(o span) bool {
	return o.start <= s.start && s.end <= o.end && o.end-o.start > s.end-s.start
}

type term struct {
	text string
	re   *regexp.Regexp
}

// group holds one weight table (base, add or neg) compiled per category.
type group struct {
	terms [domain.NumCategories][]term
}

func compileGroup(name string, table map[domain.Category][]string) (group, error) {
	var g group
	for cat, words := range table {
		if !cat.Valid() {
			return group{}, fmt.Errorf("%w: %s table: category %s", ErrInvalidTables, name, cat)
		}
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			t, err := compileTerm(w)
			if err != nil {
				return group{}, fmt.Errorf("%w: %s table %s: %v", ErrInvalidTables, name, cat, err)
			}
			// Accented and unaccented spellings fold to the same term.
			if _, dup := seen[t.text]; dup {
				continue
			}
			seen[t.text] = struct{}{}
			g.terms[cat] = append(g.terms[cat], t)
		}
	}
	return g, nil
}

// compileTerm folds w and lets any whitespace run in the text match the
// spaces between its words.
func compileTerm(w string) (term, error) {
	words := strings.Fields(textnorm.Fold(w))
	if len(words) == 0 {
		return term{}, errors.New("empty term")
	}
	quoted := make([]string, len(words))
	for i, part := range words {
		quoted[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile(strings.Join(quoted, `[\s\p{Z}]+`))
	if err != nil {
		return term{}, err
	}
	return term{text: strings.Join(words, " "), re: re}, nil
}

// find returns every occurrence of t in folded text that starts and ends on
// a token boundary.
func (t term) find(text string) []span {
	var out []span
	for pos := 0; pos < len(text); {
		loc := t.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			out = append(out, span{start: start, end: end})
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + max(size, 1)
	}
	return out
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !textnorm.IsWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !textnorm.IsWordRune(r)
}

// hits counts the terms of category c found in text. A term counts once
// however often it appears, and not at all when each of its occurrences
// sits inside a longer matched term of the same table. This departs from
// plain per-term counting: "oracle database" scores one hit, not two.
func (g *group) hits(text string, c domain.Category) int {
	terms := g.terms[c]
	if len(terms) == 0 {
		return 0
	}
	found := make([][]span, len(terms))
	for i, t := range terms {
		found[i] = t.find(text)
	}

	n := 0
	for i, spans := range found {
		if len(spans) == 0 {
			continue
		}
		if !subsumed(i, found) {
			n++
		}
	}
	return n
}

func subsumed(i int, found [][]span) bool {
	for _, s := range found[i] {
		covered := false
		for j, other := range found {
			if j == i {
				continue
			}
			for _, o := range other {
				if s.within(o) {
					covered = true
					break
				}
			}
			if covered {
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
