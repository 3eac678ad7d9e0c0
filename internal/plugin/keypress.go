package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// KeyboardPlugin is the name the key presser looks up by default.
const KeyboardPlugin = "keyboard"

// DefaultHold is how long a key stays down.
const DefaultHold = 100 * time.Millisecond

var (
	// ErrUnmappedLabel is returned for labels with no arrow key.
	ErrUnmappedLabel = errors.New("label has no key mapping")
	// ErrPluginFailed is returned when the plugin answered with success=false.
	ErrPluginFailed = errors.New("plugin reported failure")
	// ErrNotKeyboard is returned for a plugin that cannot press and release keys.
	ErrNotKeyboard = errors.New("plugin does not support key actions")
)

// ArrowKeys maps gesture labels to the key names the keyboard plugin accepts.
var ArrowKeys = map[string]string{
	"up":    "ArrowUp",
	"down":  "ArrowDown",
	"left":  "ArrowLeft",
	"right": "ArrowRight",
}

// Runner executes one plugin request. *Executor is the production Runner.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// KeyPresser turns a label into a key-down and, after Hold, a key-up.
type KeyPresser struct {
	runner  Runner
	plugin  *Plugin
	hold    time.Duration
	log     logrus.FieldLogger
	pending sync.WaitGroup
}

// CheckKeyboard reports whether p lists both key actions in its manifest.
func CheckKeyboard(p *Plugin) error {
	for _, action := range []string{ActionKeyDown, ActionKeyUp} {
		if !p.Manifest.Supports(action) {
			return fmt.Errorf("%w: %s lacks %q", ErrNotKeyboard, p.Manifest.Name, action)
		}
	}
	return nil
}

// NewKeyPresser creates a KeyPresser sending requests to plugin via runner.
func NewKeyPresser(runner Runner, plugin *Plugin, hold time.Duration, log logrus.FieldLogger) *KeyPresser {
	if hold <= 0 {
		hold = DefaultHold
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &KeyPresser{runner: runner, plugin: plugin, hold: hold, log: log}
}

// Press sends key-down for label and returns once the plugin has answered.
// The matching key-up is sent on a timer after the hold duration and does
// not depend on ctx.
func (k *KeyPresser) Press(ctx context.Context, label string) error {
	key, ok := ArrowKeys[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmappedLabel, label)
	}

	entry := k.log.WithFields(logrus.Fields{"label": label, "key": key})
	if err := k.send(ctx, ActionKeyDown, key, label); err != nil {
		entry.WithError(err).Error("key down failed")
		return err
	}
	entry.Debug("key down")

	k.pending.Add(1)
	time.AfterFunc(k.hold, func() {
		defer k.pending.Done()
		if err := k.send(context.Background(), ActionKeyUp, key, label); err != nil {
			entry.WithError(err).Error("key up failed")
			return
		}
		entry.Debug("key up")
	})
	return nil
}

// Wait blocks until every scheduled key-up has been sent.
func (k *KeyPresser) Wait() {
	k.pending.Wait()
}

func (k *KeyPresser) send(ctx context.Context, action, key, label string) error {
	resp, err := k.runner.Execute(ctx, k.plugin, &Request{Action: action, Key: key, Label: label})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrPluginFailed, resp.Error)
	}
	return nil
}
