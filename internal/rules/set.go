package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PaletteVar is the runtime global every rewritten lookup reads from.
const PaletteVar = "window.assetPalettes"

// DefaultCacheDir is where bitmap-cached images live at runtime.
const DefaultCacheDir = "assets/cache/"

// Params carries the per-publish inputs of the rule set.
type Params struct {
	// CompositionID replaces the authoring tool's composition identifier.
	CompositionID string

	// FileName is the asset's base name without extension, registered in
	// the runtime FILE_TO_ID table.
	FileName string

	// CacheDir replaces the "images/" bitmap cache prefix.
	// Empty means DefaultCacheDir.
	CacheDir string
}

// ColorMarker maps a literal color the authoring template uses as a
// placeholder to the palette array and index it stands for.
type ColorMarker struct {
	// Prefix is the marker without its final digit, e.g. "#ACAC3".
	// The final digit of the marker is the slot index.
	Prefix string
	Array  string
	Index  int
}

// ColorMarkers is the static placeholder table, in application order.
var ColorMarkers = []ColorMarker{
	{Prefix: "#ACAC3", Array: "colors", Index: 5},
	{Prefix: "#AC9C3", Array: "colorsDark", Index: 5},
	{Prefix: "#AC3C3", Array: "colors", Index: 3},
	{Prefix: "#3C3CA", Array: "colors", Index: 0},
	{Prefix: "#AC3CA", Array: "colors", Index: 4},
	{Prefix: "#AC2CA", Array: "colorsDark", Index: 4},
	{Prefix: "#3CAC3", Array: "colors", Index: 1},
	{Prefix: "#3CACA", Array: "colors", Index: 2},
}

// Layer patterns run from the layer-name token to the first line that adds
// a tween ("^.*addTween"); the guard is inserted at the start of that line.
// The lazy scan keeps a match inside its own layer block. Numbers are at
// most nine digits so every captured index fits an int; a longer run
// matches nothing.
var (
	featureLayerRe = regexp.MustCompile(`(?m)(slot(\d{1,9})figure(\d{0,9})([A-Za-z]+?)(\d{1,9})\D[\s\S]*?)(^.*addTween)`)
	baseFigureRe   = regexp.MustCompile(`(?m)(slot(\d{1,9})figure(\d{1,9})(?:[A-Za-z][A-Za-z\d]*?)?\s[\s\S]*?)(^.*addTween)`)
	namedToggleRe  = regexp.MustCompile(`(?m)(slot(\d{1,9})([A-Za-z]+)\r?$[\s\S]*?)(^.*addTween)`)
	numberedRe     = regexp.MustCompile(`(?m)(slot(\d{1,9})([A-Za-z]+?)(\d{1,9})\r?$[\s\S]*?)(^.*addTween)`)
	imageDirRe     = regexp.MustCompile(`"images/`)
	compositionRe  = regexp.MustCompile(`(compositions\[|id: )'\w{32}'`)
	moduleCloseRe  = regexp.MustCompile(`(?m)^\}\)\(createjs = createjs\|\|\{\}, AdobeAn = AdobeAn\|\|\{\}\);\r?$`)
)

// Rule names, as reported in rewrite traces.
const (
	NameFeatureLayer   = "feature layer"
	NameBaseFigure     = "base figure"
	NameNamedToggle    = "named toggle"
	NameNumberedToggle = "numbered toggle"
	NameCacheDir       = "cache dir"
	NameCompositionID  = "composition id"
	NameRegistration   = "registration"
)

// reservedLayerPrefixes are the layer names claimed by the figure rules.
var reservedLayerPrefixes = []string{"figure", "accessory"}

func hasReservedPrefix(name string) bool {
	for _, p := range reservedLayerPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// ColorRules returns one rule per color marker.
func ColorRules() []Rule {
	out := make([]Rule, 0, len(ColorMarkers))
	for _, m := range ColorMarkers {
		out = append(out, Rule{
			Name:     "color " + m.Prefix,
			Pattern:  regexp.MustCompile(`"` + regexp.QuoteMeta(m.Prefix) + `(\d)"`),
			Template: fmt.Sprintf("%s[${1}].%s[%d]", PaletteVar, m.Array, m.Index),
		})
	}
	return out
}

// FeatureLayerRule guards slot<N>figure<M><feature><K> layers on
// palette[N].features.<feature> === K. Accessory layers are left to
// BaseFigureRule.
func FeatureLayerRule() Rule {
	return Rule{
		Name:     NameFeatureLayer,
		Pattern:  featureLayerRe,
		Template: "${1}if (" + PaletteVar + "[${2}].features.${4} === ${5})${6}",
		Exclude: func(g []string) bool {
			return strings.HasSuffix(g[4], "accessory")
		},
	}
}

// BaseFigureRule guards every slot<N>figure<M>... layer on the figure number
// alone. Accessory numbering never gates visibility.
func BaseFigureRule() Rule {
	return Rule{
		Name:     NameBaseFigure,
		Pattern:  baseFigureRe,
		Template: "${1}if (" + PaletteVar + "[${2}].features.figure === ${3})${4}",
	}
}

// NamedToggleRule guards slot<N><name> layers on palette[N].toggle
// containing name.
func NamedToggleRule() Rule {
	return Rule{
		Name:     NameNamedToggle,
		Pattern:  namedToggleRe,
		Template: "${1}if (" + PaletteVar + "[${2}].toggle.includes(\"${3}\"))${4}",
		Exclude: func(g []string) bool {
			return hasReservedPrefix(g[3])
		},
	}
}

// NumberedToggleRule guards slot<N><name><K> layers on
// palette[N].numbered[name] === K.
func NumberedToggleRule() Rule {
	return Rule{
		Name:     NameNumberedToggle,
		Pattern:  numberedRe,
		Template: "${1}if (" + PaletteVar + "[${2}].numbered[\"${3}\"] === ${4})${5}",
		Exclude: func(g []string) bool {
			return hasReservedPrefix(g[3])
		},
	}
}

// CacheDirRule points bitmap cache references at the runtime cache directory.
func CacheDirRule(dir string) Rule {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return Rule{
		Name:     NameCacheDir,
		Pattern:  imageDirRe,
		Template: `"` + escapeTemplate(dir),
	}
}

// CompositionIDRule replaces the exported composition identifier, which is
// duplicated whenever an authoring file is copied.
func CompositionIDRule(id string) Rule {
	return Rule{
		Name:     NameCompositionID,
		Pattern:  compositionRe,
		Template: "${1}" + escapeTemplate(strconv.Quote(id)),
	}
}

// RegistrationRule registers the asset's file name against its composition
// id right before the export's module wrapper closes.
func RegistrationRule(fileName string) Rule {
	line := fmt.Sprintf("FILE_TO_ID = window.FILE_TO_ID || {}; FILE_TO_ID[%s] = lib.properties.id;", strconv.Quote(fileName))
	return Rule{
		Name:     NameRegistration,
		Pattern:  moduleCloseRe,
		Template: "\n" + escapeTemplate(line) + "\n${0}",
	}
}

// Default returns the full rule set in application order. Order matters:
// the feature rule must run before the base figure rule so a feature layer
// ends up with both guards, and the toggle rules only see layers the figure
// rules do not own.
func Default(p Params) []Rule {
	set := ColorRules()
	set = append(set,
		FeatureLayerRule(),
		BaseFigureRule(),
		NamedToggleRule(),
		NumberedToggleRule(),
		CacheDirRule(p.CacheDir),
		CompositionIDRule(p.CompositionID),
		RegistrationRule(p.FileName),
	)
	return set
}
