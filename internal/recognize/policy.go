// Package recognize decides which normalized vector to submit to the
// classifier, in what order, and when to stop.
package recognize

import (
	"slices"

	"github.com/ayusman/handkeys/internal/normalize"
)

// Gesture labels returned by the classifier.
const (
	LabelUp    = "up"
	LabelDown  = "down"
	LabelLeft  = "left"
	LabelRight = "right"
)

// KnownLabels is the closed label set the keyboard mapping understands.
var KnownLabels = []string{LabelUp, LabelDown, LabelLeft, LabelRight}

// Accept reports whether a step's label ends the decision list.
type Accept func(label string) bool

// Step pairs the vector a request is built from with the test its answer must pass.
type Step struct {
	Name     string
	Strategy normalize.Strategy
	Accept   Accept
}

// Policy is an ordered decision list evaluated with early exit.
type Policy []Step

// AnyKnownLabel accepts up, down, left and right.
func AnyKnownLabel(label string) bool {
	return slices.Contains(KnownLabels, label)
}

// OnlyLabel accepts exactly one label.
func OnlyLabel(want string) Accept {
	return func(label string) bool { return label == want }
}

// AnyLabel accepts whatever the classifier answered, as long as it answered.
func AnyLabel(label string) bool {
	return label != ""
}

// DefaultPolicy returns the fixed fallback chain.
//
// Wrist-relative input is authoritative for up, down and right. "left" is
// the one gesture that needs a second opinion, so the alternate transforms
// are only trusted when they produce it. If nothing matched, wrist-relative
// input is submitted once more and its answer is taken as is.
func DefaultPolicy() Policy {
	byName := func(name string) normalize.Strategy {
		s, _ := normalize.ByName(name)
		return s
	}

	return Policy{
		{Name: "wrist-relative", Strategy: byName(normalize.NameWristRelative), Accept: AnyKnownLabel},
		{Name: "z-score", Strategy: byName(normalize.NameZScore), Accept: OnlyLabel(LabelLeft)},
		{Name: "min-max", Strategy: byName(normalize.NameMinMax), Accept: OnlyLabel(LabelLeft)},
		{Name: "raw", Strategy: byName(normalize.NameIdentity), Accept: OnlyLabel(LabelLeft)},
		{Name: "wrist-relative-final", Strategy: byName(normalize.NameWristRelative), Accept: AnyLabel},
	}
}
