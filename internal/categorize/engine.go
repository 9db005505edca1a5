// Package categorize assigns one of the eight ticket categories to free
// text using weighted keyword tables and ordered contextual rules.
package categorize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/textnorm"
)

const (
	forceMargin  = 1e-6
	tieTolerance = 1e-12
)

// ErrInvalidTables reports a malformed table or rule.
var ErrInvalidTables = errors.New("invalid categorization tables")

// Scores holds one score per category, indexed by domain.Category.
type Scores [domain.NumCategories]float64

// Map renders the scores keyed by category code.
func (s Scores) Map() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, c := range domain.Categories {
		out[c.String()] = s[c]
	}
	return out
}

// Result is the outcome of scoring one text.
type Result struct {
	Category domain.Category
	// Keyword scores before contextual rules.
	Raw Scores
	// Scores after contextual rules; Category is decided from these.
	Scores   Scores
	AddHits  int
	NegHits  int
	Adjusted bool
}

type compiledRule struct {
	triggers []string
	prefer   domain.Category
	demote   []domain.Category
	boost    float64
	force    bool
}

// Engine is immutable once built and safe for concurrent use.
type Engine struct {
	base  group
	add   group
	neg   group
	rules []compiledRule
}

var defaultEngine = MustNewEngine(DefaultTables())

// Default returns the engine built from DefaultTables.
func Default() *Engine {
	return defaultEngine
}

// Categorize scores text with the default engine.
func Categorize(text string) domain.Category {
	return defaultEngine.Categorize(text)
}

// MustNewEngine is like NewEngine but panics on invalid tables.
func MustNewEngine(t Tables) *Engine {
	e, err := NewEngine(t)
	if err != nil {
		panic(err)
	}
	return e
}

// NewEngine validates and compiles t.
func NewEngine(t Tables) (*Engine, error) {
	base, err := compileGroup("base", t.Base)
	if err != nil {
		return nil, err
	}
	add, err := compileGroup("add", t.Add)
	if err != nil {
		return nil, err
	}
	neg, err := compileGroup("neg", t.Neg)
	if err != nil {
		return nil, err
	}

	rules := make([]compiledRule, 0, len(t.Rules))
	for i, r := range t.Rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidTables, i, err)
		}
		rules = append(rules, cr)
	}
	return &Engine{base: base, add: add, neg: neg, rules: rules}, nil
}

func compileRule(r Rule) (compiledRule, error) {
	if !r.Prefer.Valid() {
		return compiledRule{}, fmt.Errorf("preferred category %s", r.Prefer)
	}
	if len(r.Triggers) == 0 {
		return compiledRule{}, errors.New("no triggers")
	}
	if r.Boost < 0 || math.IsNaN(r.Boost) || math.IsInf(r.Boost, 0) {
		return compiledRule{}, fmt.Errorf("boost %v", r.Boost)
	}
	cr := compiledRule{prefer: r.Prefer, boost: r.Boost, force: r.Force}
	for _, trig := range r.Triggers {
		folded := textnorm.Fold(strings.TrimSpace(trig))
		if folded == "" {
			return compiledRule{}, errors.New("empty trigger")
		}
		cr.triggers = append(cr.triggers, folded)
	}
	for _, d := range r.Demote {
		if !d.Valid() || d == r.Prefer {
			return compiledRule{}, fmt.Errorf("demoted category %s", d)
		}
		cr.demote = append(cr.demote, d)
	}
	return cr, nil
}

// Categorize returns the winning category for text.
func (e *Engine) Categorize(text string) domain.Category {
	return e.Score(text).Category
}

// Score runs keyword scoring, contextual rules and the decision.
func (e *Engine) Score(text string) Result {
	folded := textnorm.Fold(text)

	var res Result
	for _, c := range domain.Categories {
		base := e.base.hits(folded, c)
		add := e.add.hits(folded, c)
		neg := e.neg.hits(folded, c)
		res.Raw[c] = float64(base)*WeightHit + float64(add)*WeightAdd + float64(neg)*WeightNeg
		res.AddHits += add
		res.NegHits += neg
	}

	res.Scores = e.adjust(folded, res.Raw)
	res.Adjusted = res.Scores != res.Raw
	res.Category = Decide(res.Scores)
	return res
}

// adjust applies the contextual rules in declaration order, each one
// seeing the scores left by the previous.
func (e *Engine) adjust(folded string, in Scores) Scores {
	s := in
	for _, r := range e.rules {
		if !r.matches(folded) {
			continue
		}
		s[r.prefer] += r.boost
		if r.force {
			ceiling := s[r.prefer] - forceMargin
			for _, c := range domain.Categories {
				if c != r.prefer && s[c] > ceiling {
					s[c] = ceiling
				}
			}
		}
		for _, d := range r.demote {
			s[d] -= r.boost / 2
		}
	}
	return s
}

func (r compiledRule) matches(folded string) bool {
	for _, trig := range r.triggers {
		if strings.Contains(folded, trig) {
			return true
		}
	}
	return false
}

// Decide picks the category with the highest score, SRV when nothing
// scores above zero, and PriorityOrder among ties.
func Decide(s Scores) domain.Category {
	best := math.Inf(-1)
	for _, v := range s {
		if v > best {
			best = v
		}
	}
	if best <= 0 {
		return domain.CategoryDefault
	}
	for _, c := range PriorityOrder {
		if math.Abs(s[c]-best) < tieTolerance {
			return c
		}
	}
	return domain.CategoryDefault
}
