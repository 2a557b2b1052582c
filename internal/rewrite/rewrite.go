// Package rewrite applies the ordered publish rule set to an exported
// animation script.
//
// The rewrite is a pure function of the input text and rules.Params: the
// same text, composition id, file name and cache dir always produce the
// same bytes.
package rewrite

import (
	"github.com/roach88/animpub/internal/rules"
)

// Step records how many replacements one rule made.
type Step struct {
	Rule  string `json:"rule" yaml:"rule"`
	Count int    `json:"count" yaml:"count"`
}

// Trace lists one Step per rule, in application order.
type Trace []Step

// Total returns the number of replacements across all rules.
func (t Trace) Total() int {
	n := 0
	for _, s := range t {
		n += s.Count
	}
	return n
}

// Count returns the replacements made by the named rule, summed over every
// rule sharing that name.
func (t Trace) Count(rule string) int {
	n := 0
	for _, s := range t {
		if s.Rule == rule {
			n += s.Count
		}
	}
	return n
}

// Engine applies an ordered rule list.
type Engine struct {
	rules []rules.Rule
}

// New returns an engine running rules.Default(p).
func New(p rules.Params) *Engine {
	return &Engine{rules: rules.Default(p)}
}

// WithRules returns an engine running rs in the given order.
func WithRules(rs ...rules.Rule) *Engine {
	return &Engine{rules: rs}
}

// Run applies every rule in order, each to the output of the previous one.
func (e *Engine) Run(text string) (string, Trace) {
	trace := make(Trace, 0, len(e.rules))
	for _, r := range e.rules {
		var n int
		text, n = r.Apply(text)
		trace = append(trace, Step{Rule: r.Name, Count: n})
	}
	return text, trace
}

// Rewrite applies the default rule set for p to text.
func Rewrite(text string, p rules.Params) string {
	out, _ := New(p).Run(text)
	return out
}
