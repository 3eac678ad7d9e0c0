package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/handkeys/internal/capture"
	"github.com/ayusman/handkeys/internal/landmark"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/store"
)

// run is the frame loop. Each tick reads one frame and runs at most one
// recognition cycle, so a slow classifier lowers the effective frame rate
// instead of queueing cycles.
func (a *App) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := a.config.Camera.ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrNoFrames) {
					a.log.Info("camera has no more frames")
					return
				}
				a.log.WithError(err).Debug("cannot read frame")
				continue
			}
			a.HandleFrame(ctx, frame)
		}
	}
}

// HandleFrame runs one frame through preview, gate and detector, then hands
// any detections to HandleHands. It closes frame.
func (a *App) HandleFrame(ctx context.Context, frame *gocv.Mat) {
	defer frame.Close()

	if a.config.Preview != nil {
		if err := a.config.Preview.Publish(frame); err != nil {
			a.log.WithError(err).Debug("cannot publish preview")
		}
	}

	if a.config.Gate != nil {
		if ok, changed := a.config.Gate.Admit(frame); !ok {
			a.log.WithField("changed", changed).Trace("frame skipped")
			return
		}
	}

	if a.config.Detector == nil {
		return
	}
	hands, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("hand detection failed")
		return
	}
	a.HandleHands(ctx, hands)
}

// HandleHands recognizes the first hand, presses its key when enabled and
// records the result. The bool is false when there was no hand.
func (a *App) HandleHands(ctx context.Context, hands []landmark.Hand) (recognize.Outcome, bool) {
	hand, ok := landmark.FirstHand(hands)
	if !ok {
		return recognize.Outcome{}, false
	}

	out := a.config.Recognizer.Recognize(ctx, hand)
	if !out.Recognized() {
		return out, true
	}

	entry := a.log.WithFields(logrus.Fields{"cycle": out.ID, "label": out.Label})

	pressed := false
	if a.IsEnabled() && a.config.Keys != nil {
		if err := a.config.Keys.Press(ctx, out.Label); err != nil {
			entry.WithError(err).Warn("key press failed")
		} else {
			pressed = true
		}
	}

	if a.config.Store != nil {
		err := a.config.Store.Recognitions().Create(ctx, &store.Recognition{
			ID:         out.ID,
			Label:      out.Label,
			Step:       out.Step,
			Requests:   out.Requests,
			Handedness: hand.Handedness,
			Source:     store.SourceCamera,
			Pressed:    pressed,
			CreatedAt:  out.At,
		})
		if err != nil {
			entry.WithError(err).Error("cannot journal recognition")
		}
	}

	ev := Event{
		Type:       EventRecognition,
		ID:         out.ID,
		Label:      out.Label,
		Step:       out.Step,
		Requests:   out.Requests,
		Handedness: hand.Handedness,
		Pressed:    pressed,
		At:         out.At,
	}
	if a.config.Events != nil {
		a.config.Events.Broadcast(ev)
	}
	if a.config.OnRecognized != nil {
		a.config.OnRecognized(ev)
	}
	return out, true
}
