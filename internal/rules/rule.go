package rules

import (
	"regexp"
	"strings"
)

// Rule is one ordered rewrite step: a pattern, the template its matches are
// expanded into, and an optional predicate that vetoes individual matches.
//
// Go's regexp has no lookaround, so the exclusions the export convention
// needs ("a layer name not starting with figure") live in Exclude instead
// of the pattern.
type Rule struct {
	// Name identifies the rule in traces and tests.
	Name string

	// Pattern is matched against the whole text.
	Pattern *regexp.Regexp

	// Template is expanded with regexp.Regexp.Expand syntax (${1}, ${name}).
	Template string

	// Exclude receives the submatches of a candidate (index 0 is the whole
	// match) and returns true to reject it. Nil accepts every match.
	Exclude func(groups []string) bool
}

// Apply replaces every accepted, non-overlapping match in text and returns
// the result along with the number of replacements made.
//
// A rejected candidate does not consume its span: scanning resumes one byte
// after the candidate's start, the way a failed lookaround lets a
// backtracking engine retry at the next position. Without this an excluded
// layer block would hide any eligible layer token inside it. A resumed scan
// sees the remaining text as if it began there, so patterns with an Exclude
// must start with a literal rather than an anchor.
func (r Rule) Apply(text string) (string, int) {
	var locs [][]int
	if r.Exclude == nil {
		locs = r.Pattern.FindAllStringSubmatchIndex(text, -1)
	} else {
		locs = r.accepted(text)
	}
	if len(locs) == 0 {
		return text, 0
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		b.Write(r.Pattern.ExpandString(nil, r.Template, text, loc))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), len(locs)
}

// accepted finds the matches of r in text that Exclude lets through, one
// leftmost match at a time. Each search stops at its own match, so the
// total work stays linear in the number of candidates. Empty matches follow
// FindAll: one abutting the previous match is dropped.
func (r Rule) accepted(text string) [][]int {
	var out [][]int
	prevEnd := -1
	for pos := 0; pos <= len(text); {
		loc := r.Pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		start, end := loc[0], loc[1]

		if start == end && start == prevEnd {
			pos = start + 1
			continue
		}
		if r.Exclude(submatches(text, loc)) {
			pos = start + 1
			continue
		}

		out = append(out, loc)
		prevEnd = end
		pos = end
		if start == end {
			pos++
		}
	}
	return out
}

// submatches converts an index slice into the captured strings.
// Unmatched optional groups become "".
func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// escapeTemplate makes s safe to embed literally in an Expand template.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
