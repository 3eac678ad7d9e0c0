package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/handkeys/internal/capture"
)

// StreamHandler serves the preview as MJPEG.
type StreamHandler struct {
	preview *capture.Preview
}

// NewStreamHandler creates a StreamHandler over p.
func NewStreamHandler(p *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: p}
}

// ServeHTTP writes one part per published frame until the client leaves.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var last uint64
	for {
		updated := h.preview.Updated()
		frame, seq := h.preview.Latest()

		if seq != last && frame != nil {
			last = seq
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			if _, err := w.Write(frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-updated:
		}
	}
}
