// Package guard decides whether a script may be published again.
//
// The processed marker is the only state a publish leaves behind. It is
// appended once and never removed.
package guard

import (
	"errors"
	"strings"
)

// Marker is the sentinel line appended to every published script.
const Marker = "// Published."

// ErrAlreadyProcessed is returned by Check when an interactive caller tries
// to publish a marked script without forcing.
var ErrAlreadyProcessed = errors.New("file has already been published")

// Decision is the outcome of Check.
type Decision int

const (
	// Proceed means the script should be rewritten.
	Proceed Decision = iota

	// Skip means the script is already published and the caller should
	// return without touching it.
	Skip
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	}
	return "unknown"
}

// Options control how Check treats a marked script.
type Options struct {
	// Force publishes regardless of the marker.
	Force bool

	// Interactive selects the hard failure used by the command line.
	// Library callers leave it false and get a Skip instead.
	Interactive bool
}

// Marked reports whether text starts or ends with the marker, byte for
// byte. A marker followed by a trailing newline or preceded by indentation
// does not count. Publishing only ever appends the marker, but both
// positions are honored.
func Marked(text string) bool {
	return strings.HasPrefix(text, Marker) || strings.HasSuffix(text, Marker)
}

// Mark appends the marker on its own line.
func Mark(text string) string {
	return text + "\n" + Marker
}

// Check inspects text and decides what a publish should do with it.
//
//	not marked, or Force       -> Proceed
//	marked, Interactive        -> ErrAlreadyProcessed
//	marked, library caller     -> Skip
func Check(text string, opts Options) (Decision, error) {
	if opts.Force || !Marked(text) {
		return Proceed, nil
	}
	if opts.Interactive {
		return Skip, ErrAlreadyProcessed
	}
	return Skip, nil
}
