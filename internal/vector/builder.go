// Package vector turns hand landmarks into the flat feature vector the
// classifier expects.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/handkeys/internal/landmark"
)

// Size is the length of a flat vector: 21 landmarks of x, y, z.
const Size = landmark.Count * 3

var (
	// ErrInvalidInputShape is returned for inputs that are neither 21
	// landmarks nor 63 numbers.
	ErrInvalidInputShape = errors.New("invalid input shape")

	// ErrInvalidLandmarkFormat is returned when a landmark entry is not an object.
	ErrInvalidLandmarkFormat = errors.New("invalid landmark format")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Vector holds landmark i at indices 3i, 3i+1 and 3i+2.
type Vector []float64

// Build converts a landmark collection into a Vector.
//
// Accepted inputs are a landmark.Hand (or pointer), a slice of
// landmark.Point3D, a []float64, a []any as produced by decoding JSON, and raw
// JSON bytes. Landmark inputs must have exactly 21 entries and flat inputs
// exactly 63 values.
func Build(input any) (Vector, error) {
	switch v := input.(type) {
	case landmark.Hand:
		return FromPoints(v.Points[:])
	case *landmark.Hand:
		if v == nil {
			return nil, fmt.Errorf("%w: nil hand", ErrInvalidInputShape)
		}
		return FromPoints(v.Points[:])
	case []landmark.Point3D:
		return FromPoints(v)
	case []float64:
		return FromValues(v)
	case Vector:
		return FromValues(v)
	case []any:
		return fromDecoded(v)
	case []byte:
		return fromJSON(v)
	case json.RawMessage:
		return fromJSON(v)
	default:
		return nil, fmt.Errorf("%w: expected a sequence, got %T", ErrInvalidInputShape, input)
	}
}

// FromPoints flattens exactly 21 landmarks.
func FromPoints(points []landmark.Point3D) (Vector, error) {
	if len(points) != landmark.Count {
		return nil, shapeError(len(points))
	}
	out := make(Vector, 0, Size)
	for _, p := range points {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out, nil
}

// FromValues copies an already-flat vector of exactly 63 values.
func FromValues(values []float64) (Vector, error) {
	if len(values) != Size {
		return nil, shapeError(len(values))
	}
	out := make(Vector, Size)
	copy(out, values)
	return out, nil
}

func fromJSON(data []byte) (Vector, error) {
	var decoded any
	if err := codec.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputShape, err)
	}
	seq, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array, got %T", ErrInvalidInputShape, decoded)
	}
	return fromDecoded(seq)
}

func fromDecoded(entries []any) (Vector, error) {
	switch len(entries) {
	case Size:
		out := make(Vector, Size)
		for i, e := range entries {
			f, ok := e.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: value %d is %T, not a number", ErrInvalidInputShape, i, e)
			}
			out[i] = f
		}
		return out, nil

	case landmark.Count:
		out := make(Vector, 0, Size)
		for i, e := range entries {
			obj, ok := e.(map[string]any)
			if !ok || obj == nil {
				return nil, fmt.Errorf("%w: entry %d is %T", ErrInvalidLandmarkFormat, i, e)
			}
			out = append(out, coord(obj, "x"), coord(obj, "y"), coord(obj, "z"))
		}
		return out, nil

	default:
		return nil, shapeError(len(entries))
	}
}

// coord reads a numeric field; absent or non-numeric fields read as 0.
func coord(obj map[string]any, key string) float64 {
	if f, ok := obj[key].(float64); ok {
		return f
	}
	return 0
}

func shapeError(n int) error {
	return fmt.Errorf("%w: expected %d landmarks or %d features, got %d",
		ErrInvalidInputShape, landmark.Count, Size, n)
}
