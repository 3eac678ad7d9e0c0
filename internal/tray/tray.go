// Package tray is the menu bar front end: an enable toggle, the last
// recognized label, a link to the status page and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

const (
	titleEnabled  = "● Enabled"
	titleDisabled = "○ Disabled"
)

// Tray is the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	menuToggle    *systray.MenuItem
	menuLastLabel *systray.MenuItem
}

// New creates a Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{enabled: enabled}
}

// OnToggle sets the callback run when the user flips the toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run by "Open status page".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run blocks until Quit. It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Handkeys")
	systray.SetTooltip("Handkeys gesture keyboard")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle key presses")
	systray.AddSeparator()
	t.menuLastLabel = systray.AddMenuItem(lastTitle(t.last), "Last recognized gesture")
	t.menuLastLabel.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	// Actions
	menuOpen := systray.AddMenuItem("Open status page", "Open the status page in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Handkeys")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.run(t.onOpen)
			case <-menuQuit.ClickedCh:
				t.run(t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) run(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fn != nil {
		go fn()
	}
}

// SetEnabled reflects a state change made elsewhere, such as the HTTP API.
// It does not run the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastLabel shows the most recent recognized label.
func (t *Tray) SetLastLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = label
	if t.menuLastLabel != nil {
		t.menuLastLabel.SetTitle(lastTitle(label))
	}
}

// IsEnabled returns the state shown in the menu.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastLabel returns the label shown in the menu.
func (t *Tray) LastLabel() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}
