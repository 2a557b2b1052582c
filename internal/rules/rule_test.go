package rules

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animpub/internal/testutil"
)

func TestRuleApply_NoMatchReturnsInput(t *testing.T) {
	r := Rule{Name: "x", Pattern: regexp.MustCompile(`zzz`), Template: "y"}

	out, n := r.Apply("abc")

	assert.Equal(t, "abc", out)
	assert.Equal(t, 0, n)
}

func TestRuleApply_ReplacesAllMatches(t *testing.T) {
	r := Rule{Name: "digits", Pattern: regexp.MustCompile(`a(\d)`), Template: "b${1}b"}

	out, n := r.Apply("a1 a2 a3")

	assert.Equal(t, "b1b b2b b3b", out)
	assert.Equal(t, 3, n)
}

func TestRuleApply_ExcludedCandidateIsSkipped(t *testing.T) {
	r := Rule{
		Name:     "not-two",
		Pattern:  regexp.MustCompile(`a(\d)`),
		Template: "[${1}]",
		Exclude:  func(g []string) bool { return g[1] == "2" },
	}

	out, n := r.Apply("a1 a2 a3")

	assert.Equal(t, "[1] a2 [3]", out)
	assert.Equal(t, 2, n)
}

func TestRuleApply_ExcludedCandidateDoesNotConsumeItsSpan(t *testing.T) {
	// The rejected candidate spans "xa1a2"; the scan must still find "a2".
	r := Rule{
		Name:     "inner",
		Pattern:  regexp.MustCompile(`x?a(\d)a?\d?`),
		Template: "<${1}>",
		Exclude:  func(g []string) bool { return strings.HasPrefix(g[0], "x") },
	}

	out, n := r.Apply("xa1a2")

	assert.Equal(t, "x<1>", out)
	assert.Equal(t, 1, n)
}

func TestRuleApply_EmptyMatchesMakeProgress(t *testing.T) {
	r := Rule{Name: "empty", Pattern: regexp.MustCompile(`(?m)^`), Template: "> "}

	out, n := r.Apply("a\nb")

	assert.Equal(t, "> a\n> b", out)
	assert.Equal(t, 2, n)
}

func TestRuleApply_PermissiveExcludeMatchesReplaceAll(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		in      string
	}{
		{`a*`, "baac"},
		{`a*`, ""},
		{`(?m)^`, "a\nb\n"},
		{`a(\d)`, "a1 a2 a3"},
	} {
		re := regexp.MustCompile(tc.pattern)
		r := Rule{Name: "all", Pattern: re, Template: "-", Exclude: func([]string) bool { return false }}

		out, _ := r.Apply(tc.in)

		assert.Equal(t, re.ReplaceAllString(tc.in, "-"), out, "pattern %q on %q", tc.pattern, tc.in)
	}
}

func TestRuleApply_ManyRejectedCandidatesStayLinear(t *testing.T) {
	const n = 4000
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(testutil.Block(testutil.Layer{Name: fmt.Sprintf("slot%dfigure0accessory%d", i%10, i)}))
	}
	face := testutil.Block(testutil.Layer{Name: "slot3figureFace2"})
	in := b.String() + face

	type result struct {
		out string
		n   int
	}
	done := make(chan result, 1)
	go func() {
		out, count := FeatureLayerRule().Apply(in)
		done <- result{out, count}
	}()

	select {
	case res := <-done:
		require.Equal(t, 1, res.n)
		assert.Equal(t, b.String()+guarded(face, "if (window.assetPalettes[3].features.Face === 2)"), res.out)
	case <-time.After(10 * time.Second):
		t.Fatalf("Apply over %d rejected accessory layers did not finish", n)
	}
}

func TestRuleApply_UnmatchedGroupExpandsEmpty(t *testing.T) {
	r := Rule{Name: "opt", Pattern: regexp.MustCompile(`k(\d)?`), Template: "[${1}]"}

	out, _ := r.Apply("k k7")

	assert.Equal(t, "[] [7]", out)
}

func TestEscapeTemplate(t *testing.T) {
	r := Rule{Name: "lit", Pattern: regexp.MustCompile(`x`), Template: escapeTemplate("$1$")}

	out, _ := r.Apply("x")

	assert.Equal(t, "$1$", out)
}
