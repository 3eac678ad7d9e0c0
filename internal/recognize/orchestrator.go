package recognize

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/normalize"
	"github.com/ayusman/handkeys/internal/predict"
)

// ErrExhausted is reported when every step of the policy ran without an
// accepted label.
var ErrExhausted = errors.New("no strategy produced an accepted label")

// Predictor submits a vector to the classifier.
type Predictor interface {
	Predict(ctx context.Context, data []float64) (*predict.Result, error)
}

// Decision is the result of running a policy over one vector.
type Decision struct {
	Label    string
	Step     string
	Requests int
}

// Orchestrator runs a Policy against a Predictor. Steps are strictly
// sequential; it keeps no state between calls.
type Orchestrator struct {
	predictor Predictor
	policy    Policy
	log       logrus.FieldLogger
}

// NewOrchestrator creates an Orchestrator. A nil policy means DefaultPolicy.
func NewOrchestrator(p Predictor, policy Policy, log logrus.FieldLogger) *Orchestrator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{predictor: p, policy: policy, log: log}
}

// Resolve walks the policy and returns the first accepted label. A failed
// request counts as no match for its step. When the policy is exhausted the
// error is ErrExhausted and Decision still reports how many requests ran.
func (o *Orchestrator) Resolve(ctx context.Context, v []float64) (Decision, error) {
	var d Decision

	for _, step := range o.policy {
		if err := ctx.Err(); err != nil {
			return d, err
		}

		entry := o.log.WithField("step", step.Name)
		d.Requests++

		result, err := o.predictor.Predict(ctx, step.Strategy.Apply(v))
		if err != nil {
			entry.WithError(err).Debug("step failed, trying next")
			continue
		}

		if step.Accept(result.Direction) {
			d.Label = result.Direction
			d.Step = step.Name
			entry.WithField("label", d.Label).Debug("label accepted")
			return d, nil
		}
		entry.WithField("label", result.Direction).Debug("label not accepted, trying next")
	}

	return d, ErrExhausted
}

// SweepResult is one strategy's answer during a Sweep.
type SweepResult struct {
	Strategy string `json:"strategy"`
	Label    string `json:"label,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Sweep submits the vector once per normalization strategy, without early
// exit, to compare how each transform is classified.
func (o *Orchestrator) Sweep(ctx context.Context, v []float64) []SweepResult {
	strategies := normalize.All()
	results := make([]SweepResult, 0, len(strategies))

	for _, s := range strategies {
		r := SweepResult{Strategy: s.Name}
		result, err := o.predictor.Predict(ctx, s.Apply(v))
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Label = result.Direction
		}
		o.log.WithFields(logrus.Fields{"strategy": r.Strategy, "label": r.Label, "error": r.Error}).Info("sweep result")
		results = append(results, r)
	}

	return results
}
