// Package schema recovers the customization slots of a published script
// from the lookups the rewrite inserted into it.
//
// Mining only ever reads rewritten text. The manifest therefore describes
// exactly what was written and cannot drift from it.
package schema

import (
	"regexp"
	"strconv"

	"github.com/roach88/animpub/internal/ir"
)

var (
	colorRe    = regexp.MustCompile(`assetPalettes\[(\d{1,9})\]\.colors\[(\d{1,9})\]`)
	featureRe  = regexp.MustCompile(`assetPalettes\[(\d{1,9})\]\.features\.([A-Za-z]+) === (\d{1,9})\b`)
	toggleRe   = regexp.MustCompile(`assetPalettes\[(\d{1,9})\]\.toggle\.includes\("([^"]*)"\)`)
	numberedRe = regexp.MustCompile(`assetPalettes\[(\d{1,9})\]\.numbered\["([^"]*)"\] === (\d{1,9})\b`)
)

// Mine returns the slots referenced by text: colors, then features, then
// toggles, then numbered layers. A category with no references contributes
// nothing.
func Mine(text string) []ir.Slot {
	slots := []ir.Slot{}
	slots = append(slots, Colors(text)...)
	slots = append(slots, Features(text)...)
	slots = append(slots, Toggles(text)...)
	slots = append(slots, Numbered(text)...)
	return slots
}

// Colors returns one slot per distinct palette color reference.
// Only the light "colors" array is mined.
func Colors(text string) []ir.Slot {
	out := []ir.Slot{}
	for _, m := range uniqueMatches(colorRe, text) {
		out = append(out, ir.NewColorSlot(atoi(m[1]), atoi(m[2])))
	}
	return out
}

// Features returns one slot per (feature, slot) pair with range set to the
// highest referenced value plus one.
func Features(text string) []ir.Slot {
	var g ranges
	for _, m := range uniqueMatches(featureRe, text) {
		g.observe(m[2], atoi(m[1]), atoi(m[3]))
	}
	out := []ir.Slot{}
	for _, e := range g.entries {
		out = append(out, ir.NewFeatureSlot(e.name, e.slot, e.max+1))
	}
	return out
}

// Toggles returns one slot per distinct (layer, slot) toggle reference.
func Toggles(text string) []ir.Slot {
	out := []ir.Slot{}
	for _, m := range uniqueMatches(toggleRe, text) {
		out = append(out, ir.NewToggleSlot(m[2], atoi(m[1])))
	}
	return out
}

// Numbered returns one slot per (layer, slot) pair with range set to the
// highest referenced value plus one.
func Numbered(text string) []ir.Slot {
	var g ranges
	for _, m := range uniqueMatches(numberedRe, text) {
		g.observe(m[2], atoi(m[1]), atoi(m[3]))
	}
	out := []ir.Slot{}
	for _, e := range g.entries {
		out = append(out, ir.NewNumberedSlot(e.name, e.slot, e.max+1))
	}
	return out
}

// uniqueMatches returns the submatches of every distinct match of re in
// text, in order of first appearance.
func uniqueMatches(re *regexp.Regexp, text string) [][]string {
	seen := make(map[string]bool)
	var out [][]string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		out = append(out, m)
	}
	return out
}

type rangeKey struct {
	name string
	slot int
}

type rangeEntry struct {
	name string
	slot int
	max  int
}

// ranges folds observed values per (name, slot), keeping first-seen order.
type ranges struct {
	index   map[rangeKey]int
	entries []rangeEntry
}

func (r *ranges) observe(name string, slot, value int) {
	if r.index == nil {
		r.index = make(map[rangeKey]int)
	}
	k := rangeKey{name: name, slot: slot}
	if i, ok := r.index[k]; ok {
		if value > r.entries[i].max {
			r.entries[i].max = value
		}
		return
	}
	r.index[k] = len(r.entries)
	r.entries = append(r.entries, rangeEntry{name: name, slot: slot, max: value})
}

// atoi parses a run of at most nine ASCII digits captured by one of the
// patterns above, which always fits an int.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("schema: unparseable index " + strconv.Quote(s))
	}
	return n
}
