// Package testutil builds synthetic authoring-tool exports for tests.
package testutil

import (
	"fmt"
	"strings"
)

// FixtureCompositionID is the 32-character composition id every generated
// export carries, the way two exports of one authoring file would.
const FixtureCompositionID = "0EBC1A4B2F5D4A4D9C8B0A1B2C3D4E5F"

// Layer is one timeline layer of a generated export.
type Layer struct {
	// Name is the layer-name comment, e.g. "slot1figureFace2".
	Name string

	// Fill is the shape's fill color literal. Empty means "#000000".
	Fill string
}

// Export renders a minimal CreateJS export for the stage symbol name with
// one shape per layer, in the structural convention the publisher expects:
// each layer opens with a "// <name>" comment and ends with an addTween
// line; the module wrapper closes with the createjs/AdobeAn invocation.
func Export(name string, layers ...Layer) string {
	var b strings.Builder

	b.WriteString("(function (cjs, an) {\n\n")
	b.WriteString("var p; // shortcut to reference prototypes\n")
	b.WriteString("var lib={};var ss={};var img={};\n")
	b.WriteString("lib.ssMetadata = [];\n\n\n")
	b.WriteString("// stage content:\n")
	fmt.Fprintf(&b, "(lib.%s = function(mode,startPosition,loop,reversed) {\n", name)
	b.WriteString("\tthis.initialize(mode,startPosition,loop,{});\n\n")

	for i, l := range layers {
		fill := l.Fill
		if fill == "" {
			fill = "#000000"
		}
		shape := fmt.Sprintf("this.shape_%d", i)
		fmt.Fprintf(&b, "\t// %s\n", l.Name)
		fmt.Fprintf(&b, "\t%s = new cjs.Shape();\n", shape)
		fmt.Fprintf(&b, "\t%s.graphics.f(%q).s().p(\"AhJBKQgfgfAAgrQAAgqAfgfg\");\n", shape, fill)
		fmt.Fprintf(&b, "\t%s.setTransform(60,60);\n\n", shape)
		fmt.Fprintf(&b, "\tthis.timeline.addTween(cjs.Tween.get(%s).wait(1));\n\n", shape)
	}

	b.WriteString("\tthis._renderFirstFrame();\n\n")
	b.WriteString("}).prototype = p = new lib.AnMovieClip();\n")
	b.WriteString("p.nominalBounds = new cjs.Rectangle(300,200,80,80);\n")
	b.WriteString("// library properties:\n")
	b.WriteString("lib.properties = {\n")
	fmt.Fprintf(&b, "\tid: '%s',\n", FixtureCompositionID)
	b.WriteString("\twidth: 600,\n\theight: 400,\n\tfps: 24,\n")
	b.WriteString("\tcolor: \"#FFFFFF\",\n\topacity: 1.00,\n")
	b.WriteString("\tmanifest: [\n")
	fmt.Fprintf(&b, "\t\t{src:\"images/%s_atlas_1.png?1600000000000\", id:\"%s_atlas_1\"}\n", name, name)
	b.WriteString("\t],\n\tpreloads: []\n};\n\n")
	b.WriteString("an.compositions = an.compositions || {};\n")
	fmt.Fprintf(&b, "an.compositions['%s'] = {\n", FixtureCompositionID)
	b.WriteString("\tgetStage: function() { return exportRoot.stage; },\n")
	b.WriteString("\tgetLibrary: function() { return lib; }\n")
	b.WriteString("};\n\n")
	b.WriteString("})(createjs = createjs||{}, AdobeAn = AdobeAn||{});\n")
	b.WriteString("var createjs, AdobeAn;\n")

	return b.String()
}

// Block renders a single layer block without the surrounding module, for
// rule-level tests.
func Block(l Layer) string {
	fill := l.Fill
	if fill == "" {
		fill = "#000000"
	}
	return fmt.Sprintf("\t// %s\n\tthis.shape = new cjs.Shape();\n\tthis.shape.graphics.f(%q).s();\n\n\tthis.timeline.addTween(cjs.Tween.get(this.shape).wait(1));\n\n", l.Name, fill)
}
