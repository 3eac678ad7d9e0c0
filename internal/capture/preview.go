package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the most recent frame as JPEG so viewers never read the
// camera themselves.
type Preview struct {
	mu     sync.RWMutex
	jpeg   []byte
	seq    uint64
	notify chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{notify: make(chan struct{})}
}

// Publish encodes frame and makes it the latest frame.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrReadFailed
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	p.PublishJPEG(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// PublishJPEG stores already-encoded data as the latest frame.
func (p *Preview) PublishJPEG(data []byte) {
	p.mu.Lock()
	p.jpeg = data
	p.seq++
	close(p.notify)
	p.notify = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the latest JPEG and its sequence number. seq is 0 until
// the first Publish.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}

// Updated returns a channel closed on the next Publish.
func (p *Preview) Updated() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.notify
}
