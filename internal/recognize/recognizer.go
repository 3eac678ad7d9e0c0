package recognize

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/vector"
)

// Outcome is the result of one recognition cycle. Label is empty when the
// cycle produced nothing to act on; Err then says why.
type Outcome struct {
	ID       string    `json:"id"`
	Label    string    `json:"label,omitempty"`
	Step     string    `json:"step,omitempty"`
	Requests int       `json:"requests"`
	At       time.Time `json:"at"`
	Err      error     `json:"-"`
}

// Recognized reports whether the cycle produced a label.
func (o Outcome) Recognized() bool {
	return o.Label != ""
}

// InvalidInput reports whether the cycle failed before any request because
// the landmarks could not be turned into a vector.
func (o Outcome) InvalidInput() bool {
	return errors.Is(o.Err, vector.ErrInvalidInputShape) || errors.Is(o.Err, vector.ErrInvalidLandmarkFormat)
}

// Recognizer builds the vector and runs the orchestrator. It absorbs every
// failure: callers only ever see an Outcome.
type Recognizer struct {
	orchestrator *Orchestrator
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewRecognizer creates a Recognizer over o.
func NewRecognizer(o *Orchestrator, log logrus.FieldLogger) *Recognizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recognizer{orchestrator: o, log: log, now: time.Now}
}

// Orchestrator returns the underlying orchestrator.
func (r *Recognizer) Orchestrator() *Orchestrator {
	return r.orchestrator
}

// Recognize runs one cycle over a landmark collection accepted by vector.Build.
func (r *Recognizer) Recognize(ctx context.Context, input any) Outcome {
	out := Outcome{ID: ulid.Make().String(), At: r.now()}
	entry := r.log.WithField("cycle", out.ID)

	v, err := vector.Build(input)
	if err != nil {
		entry.WithError(err).Error("cannot build feature vector")
		out.Err = err
		return out
	}

	d, err := r.orchestrator.Resolve(ctx, v)
	out.Label = d.Label
	out.Step = d.Step
	out.Requests = d.Requests
	if err != nil {
		entry.WithError(err).WithField("requests", d.Requests).Info("no gesture recognized")
		out.Err = err
		return out
	}

	entry.WithFields(logrus.Fields{
		"label":    d.Label,
		"step":     d.Step,
		"requests": d.Requests,
	}).Info("gesture recognized")
	return out
}
