// Package landmark holds the hand landmark model shared by the tracker and
// the recognition core.
package landmark

import (
	"errors"
	"fmt"
)

// ErrPointCount is returned when a tracker reports a hand whose point count
// is not Count.
var ErrPointCount = errors.New("hand does not have 21 landmarks")

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20
	Count     = 21
)

// Point3D is a single landmark in normalized image coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand holds the 21 landmarks reported for one hand.
type Hand struct {
	Points     [Count]Point3D `json:"points"`
	Handedness string         `json:"handedness"` // "Left" or "Right"
	Score      float64        `json:"score"`
}

// FirstHand returns the first hand of a frame's detections.
// The bool is false when the frame has no hands.
func FirstHand(hands []Hand) (Hand, bool) {
	if len(hands) == 0 {
		return Hand{}, false
	}
	return hands[0], true
}

// Slice returns the landmarks as a slice, in landmark index order.
func (h *Hand) Slice() []Point3D {
	if h == nil {
		return nil
	}
	out := make([]Point3D, Count)
	copy(out, h.Points[:])
	return out
}

// FromPoints builds a Hand from a tracker's point list. Any count other than
// Count is rejected rather than padded or truncated.
func FromPoints(points []Point3D, handedness string, score float64) (Hand, error) {
	h := Hand{Handedness: handedness, Score: score}
	if len(points) != Count {
		return h, fmt.Errorf("%w: got %d", ErrPointCount, len(points))
	}
	copy(h.Points[:], points)
	return h, nil
}
