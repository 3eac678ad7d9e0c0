// Package app runs the frame loop that turns camera frames into key presses.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/capture"
	"github.com/ayusman/handkeys/internal/detector"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/store"
)

// DefaultFrameInterval paces the loop at roughly 15 frames per second.
const DefaultFrameInterval = time.Second / 15

// ErrNoCamera is returned by Start when the app was built without a camera.
var ErrNoCamera = errors.New("no camera configured")

// KeyPresser simulates the key bound to a label. *plugin.KeyPresser
// implements it.
type KeyPresser interface {
	Press(ctx context.Context, label string) error
}

// Broadcaster fans events out to connected clients. *server.Hub implements it.
type Broadcaster interface {
	Broadcast(v any)
}

// Event is published for every cycle that produced a label.
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Step       string    `json:"step"`
	Requests   int       `json:"requests"`
	Handedness string    `json:"handedness,omitempty"`
	Pressed    bool      `json:"pressed"`
	At         time.Time `json:"at"`
}

// EventRecognition is the Type of a recognition Event.
const EventRecognition = "recognition"

// Config holds the app's collaborators. Recognizer is required; the rest
// are optional.
type Config struct {
	Camera        capture.Camera
	Detector      detector.Detector
	Recognizer    *recognize.Recognizer
	Keys          KeyPresser
	Store         *store.Store
	Events        Broadcaster
	Preview       *capture.Preview
	Gate          *capture.ChangeGate
	FrameInterval time.Duration
	// OnRecognized runs after every cycle that produced a label.
	OnRecognized func(Event)
	// OnEnabled runs after SetEnabled changed the state.
	OnEnabled func(enabled bool)
	Logger    logrus.FieldLogger
}

// App owns the frame loop and the enabled switch.
type App struct {
	config  Config
	log     logrus.FieldLogger
	enabled bool
	mu      sync.RWMutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an App. The enabled state is read from the settings table
// and defaults to true.
func New(config Config) *App {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	a := &App{config: config, log: log, enabled: true}
	if config.Store != nil {
		enabled, err := config.Store.Settings().GetBool(context.Background(), store.SettingEnabled, true)
		if err != nil {
			log.WithError(err).Warn("cannot read enabled setting, defaulting to enabled")
		}
		a.enabled = enabled
	}
	return a
}

// SetEnabled switches key presses on or off and persists the choice.
// Recognition and journaling continue while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(context.Background(), store.SettingEnabled, enabled); err != nil {
			a.log.WithError(err).Error("cannot persist enabled setting")
		}
	}
	if changed {
		a.log.WithField("enabled", enabled).Info("key presses toggled")
		if a.config.OnEnabled != nil {
			a.config.OnEnabled(enabled)
		}
	}
}

// IsEnabled reports whether recognized labels press keys.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start opens the camera and runs the frame loop until Stop or until ctx
// is done.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.config.Camera == nil {
		return ErrNoCamera
	}
	if err := a.config.Camera.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, a.done)

	a.log.WithField("interval", a.config.FrameInterval).Info("frame loop started")
	return nil
}

// Stop ends the frame loop, waits for the current cycle and releases the
// camera, the gate and the detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if a.config.Camera != nil {
		if err := a.config.Camera.Close(); err != nil {
			a.log.WithError(err).Error("cannot close camera")
		}
	}
	if a.config.Gate != nil {
		a.config.Gate.Close()
	}
	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			a.log.WithError(err).Error("cannot close detector")
		}
	}
	a.log.Info("frame loop stopped")
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}
