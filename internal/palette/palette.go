// Package palette derives a CUE schema for window.assetPalettes from a
// slot manifest and checks palette documents against it.
//
// The schema is the contract between a published asset and whoever supplies
// its palettes: every lookup the rewrite inserted must resolve to a value
// the asset can use.
package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/animpub/internal/ir"
)

// Definition is the name of the generated CUE definition.
const Definition = "#Palettes"

// requirements collects what one palette slot must provide.
type requirements struct {
	colors   int // number of colors entries needed
	features []ranged
	toggles  []string
	numbered []ranged
}

type ranged struct {
	name string
	rng  int
}

func collect(slots []ir.Slot) (map[int]*requirements, int) {
	reqs := make(map[int]*requirements)
	maxSlot := -1
	get := func(i int) *requirements {
		if i > maxSlot {
			maxSlot = i
		}
		r, ok := reqs[i]
		if !ok {
			r = &requirements{}
			reqs[i] = r
		}
		return r
	}

	for _, s := range slots {
		r := get(s.Slot)
		switch s.Type {
		case ir.SlotColor:
			if s.Color+1 > r.colors {
				r.colors = s.Color + 1
			}
		case ir.SlotFeature:
			r.features = append(r.features, ranged{name: s.Name, rng: s.Range})
		case ir.SlotToggle:
			r.toggles = append(r.toggles, s.Layer)
		case ir.SlotNumbered:
			r.numbered = append(r.numbered, ranged{name: s.Layer, rng: s.Range})
		}
	}
	return reqs, maxSlot
}

// Schema renders the CUE definition #Palettes for slots. The palette list
// must be long enough to index every referenced slot; unreferenced
// positions and extra fields are left open.
func Schema(slots []ir.Slot) string {
	reqs, maxSlot := collect(slots)

	var b strings.Builder
	b.WriteString(Definition + ": [\n")
	for i := 0; i <= maxSlot; i++ {
		r, ok := reqs[i]
		if !ok {
			fmt.Fprintf(&b, "\t// slot %d\n\t{...},\n", i)
			continue
		}
		fmt.Fprintf(&b, "\t// slot %d\n\t{\n", i)
		if r.colors > 0 {
			elems := make([]string, r.colors, r.colors+1)
			for j := range elems {
				elems[j] = "string"
			}
			elems = append(elems, "...string")
			fmt.Fprintf(&b, "\t\tcolors: [%s]\n", strings.Join(elems, ", "))
		}
		writeRanged(&b, "features", r.features)
		if len(r.toggles) > 0 {
			quoted := make([]string, len(r.toggles))
			for j, t := range r.toggles {
				quoted[j] = strconv.Quote(t)
			}
			fmt.Fprintf(&b, "\t\ttoggle: [...(%s)]\n", strings.Join(quoted, " | "))
		}
		writeRanged(&b, "numbered", r.numbered)
		b.WriteString("\t\t...\n\t},\n")
	}
	b.WriteString("\t...\n]\n")
	return b.String()
}

func writeRanged(b *strings.Builder, field string, entries []ranged) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "\t\t%s: {\n", field)
	for _, e := range entries {
		fmt.Fprintf(b, "\t\t\t%s: int & >=0 & <%d\n", strconv.Quote(e.name), e.rng)
	}
	b.WriteString("\t\t\t...\n\t\t}\n")
}

// ValidationError lists every way a palette document violates the schema.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d problem(s):\n  %s", e.File, len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// Validate checks the palette document data, JSON or YAML by filename
// extension, against the schema for slots. A document that does not
// parse is an ordinary error; one that parses but does not conform is a
// *ValidationError.
func Validate(slots []ir.Slot, filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(Schema(slots), cue.Filename("palettes.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile palette schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(Definition))

	doc, err := toJSON(filename, data)
	if err != nil {
		return err
	}
	expr, err := cuejson.Extract(filename, doc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build %s: %w", filename, err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		var problems []string
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, e.Error())
		}
		sort.Strings(problems)
		return &ValidationError{File: filename, Problems: problems}
	}
	return nil
}

// toJSON returns data as JSON, converting YAML documents first.
func toJSON(filename string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s to JSON: %w", filename, err)
		}
		return out, nil
	case ".json":
		return bytes.TrimSpace(data), nil
	default:
		return nil, fmt.Errorf("unsupported palette format %q: expected .json, .yaml or .yml", filepath.Ext(filename))
	}
}
