// Package normalize provides the transforms applied to a flat landmark
// vector before it is sent for classification.
//
// Every transform is pure: it never mutates its input, always returns a new
// slice, and is defined for inputs of any length.
package normalize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Strategy names.
const (
	NameWristRelative = "wrist-relative"
	NameZScore        = "z-score"
	NameMinMax        = "min-max"
	NameIdentity      = "raw"
)

// Func transforms a flat vector.
type Func func([]float64) []float64

// Strategy is a named normalization transform.
type Strategy struct {
	Name  string
	Apply Func
}

// All returns the strategies in the order they are tried.
func All() []Strategy {
	return []Strategy{
		{Name: NameWristRelative, Apply: WristRelative},
		{Name: NameZScore, Apply: ZScore},
		{Name: NameMinMax, Apply: MinMax},
		{Name: NameIdentity, Apply: Identity},
	}
}

// ByName looks up a strategy.
func ByName(name string) (Strategy, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

// WristRelative translates every (x, y, z) triple so that the first one, the
// wrist, sits at the origin. A trailing partial triple is shifted by the
// matching wrist components.
func WristRelative(v []float64) []float64 {
	var wrist [3]float64
	copy(wrist[:], v)

	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = f - wrist[i%3]
	}
	return out
}

// ZScore standardizes values with the population mean and standard
// deviation. Input whose values are all equal is returned unchanged.
func ZScore(v []float64) []float64 {
	if constant(v) {
		return Identity(v)
	}

	mean, variance := stat.PopMeanVariance(v, nil)
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return Identity(v)
	}

	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = (f - mean) / stdDev
	}
	return out
}

// MinMax rescales values into [0, 1]. Input whose values are all equal is
// returned unchanged.
func MinMax(v []float64) []float64 {
	if constant(v) {
		return Identity(v)
	}

	lo, hi := floats.Min(v), floats.Max(v)
	span := hi - lo

	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = (f - lo) / span
	}
	return out
}

// Identity returns a copy of v.
func Identity(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// constant reports whether v has no spread, which includes empty input.
func constant(v []float64) bool {
	if len(v) == 0 {
		return true
	}
	return floats.Max(v) == floats.Min(v)
}
