package landmark

// PointingLeft returns a right hand with the index finger pointing
// to the left of the frame and the other fingers curled.
func PointingLeft() Hand {
	h := Hand{Handedness: "Right", Score: 0.96}

	h.Points[Wrist] = Point3D{X: 0.62, Y: 0.70, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: 0.58, Y: 0.64, Z: -0.01}
	h.Points[ThumbMCP] = Point3D{X: 0.55, Y: 0.60, Z: -0.02}
	h.Points[ThumbIP] = Point3D{X: 0.54, Y: 0.62, Z: -0.03}
	h.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.64, Z: -0.03}

	// Index finger extended towards smaller X.
	h.Points[IndexMCP] = Point3D{X: 0.54, Y: 0.58, Z: -0.01}
	h.Points[IndexPIP] = Point3D{X: 0.46, Y: 0.57, Z: -0.02}
	h.Points[IndexDIP] = Point3D{X: 0.40, Y: 0.56, Z: -0.02}
	h.Points[IndexTip] = Point3D{X: 0.35, Y: 0.56, Z: -0.02}

	h.Points[MiddleMCP] = Point3D{X: 0.55, Y: 0.62, Z: -0.01}
	h.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.62, Z: -0.04}
	h.Points[MiddleDIP] = Point3D{X: 0.53, Y: 0.64, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: 0.55, Y: 0.64, Z: -0.03}

	h.Points[RingMCP] = Point3D{X: 0.56, Y: 0.66, Z: -0.01}
	h.Points[RingPIP] = Point3D{X: 0.52, Y: 0.66, Z: -0.04}
	h.Points[RingDIP] = Point3D{X: 0.54, Y: 0.68, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.56, Y: 0.68, Z: -0.03}

	h.Points[PinkyMCP] = Point3D{X: 0.58, Y: 0.69, Z: -0.01}
	h.Points[PinkyPIP] = Point3D{X: 0.55, Y: 0.69, Z: -0.03}
	h.Points[PinkyDIP] = Point3D{X: 0.56, Y: 0.71, Z: -0.03}
	h.Points[PinkyTip] = Point3D{X: 0.58, Y: 0.71, Z: -0.02}

	return h
}

// Fist returns a right hand with every finger curled into the palm.
func Fist() Hand {
	h := Hand{Handedness: "Right", Score: 0.93}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: -0.01}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: -0.02}
	h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.66, Z: -0.03}
	h.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.66, Z: -0.04}

	for i, base := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		x := 0.56 - float64(i)*0.04
		h.Points[base] = Point3D{X: x, Y: 0.68, Z: -0.02}
		h.Points[base+1] = Point3D{X: x, Y: 0.64, Z: -0.05}
		h.Points[base+2] = Point3D{X: x - 0.01, Y: 0.67, Z: -0.05}
		h.Points[base+3] = Point3D{X: x - 0.01, Y: 0.70, Z: -0.03}
	}

	return h
}
