package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// BlurSize is the Gaussian kernel applied before differencing.
	BlurSize = 21
	// PixelThreshold is the per-pixel intensity change that counts as changed.
	PixelThreshold = 25
	// DefaultMaxSkip is how many unchanged frames may be dropped in a row.
	DefaultMaxSkip = 15
)

// ChangeGate drops frames that look like the previous one so hand tracking
// and the classifier only see frames where something moved. After MaxSkip
// dropped frames one frame is let through regardless, so a hand held still
// is still recognized periodically.
type ChangeGate struct {
	threshold float64
	maxSkip   int
	skipped   int
	prevGray  gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewChangeGate creates a gate that admits a frame when more than threshold
// percent of its pixels changed. A threshold of 0 admits every frame. A
// non-positive maxSkip means DefaultMaxSkip.
func NewChangeGate(threshold float64, maxSkip int) *ChangeGate {
	if maxSkip <= 0 {
		maxSkip = DefaultMaxSkip
	}
	return &ChangeGate{threshold: threshold, maxSkip: maxSkip, prevGray: gocv.NewMat()}
}

// Admit reports whether frame should be processed and the percentage of
// pixels that changed since the previous frame. The first frame is always
// admitted.
func (g *ChangeGate) Admit(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}
	if g.threshold <= 0 {
		return true, 0
	}

	// Convert to grayscale
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	// Blur to reduce noise
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: BlurSize, Y: BlurSize}, 0, 0, gocv.BorderDefault)

	// First frame becomes the baseline
	if !g.hasPrev {
		blurred.CopyTo(&g.prevGray)
		g.hasPrev = true
		g.skipped = 0
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, PixelThreshold, 255, gocv.ThresholdBinary)

	// Percentage of changed pixels
	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&g.prevGray)

	if changed > g.threshold || g.skipped >= g.maxSkip {
		g.skipped = 0
		return true, changed
	}
	g.skipped++
	return false, changed
}

// Reset forgets the previous frame.
func (g *ChangeGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

// Close releases the stored frame. The gate may be used again afterwards.
func (g *ChangeGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *ChangeGate) release() {
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.hasPrev = false
	g.skipped = 0
}
