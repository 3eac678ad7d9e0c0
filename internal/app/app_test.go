package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ayusman/handkeys/internal/landmark"
	"github.com/ayusman/handkeys/internal/plugin"
	"github.com/ayusman/handkeys/internal/predict"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/store"
)

// recordingRunner stands in for the plugin executor.
type recordingRunner struct {
	mu       sync.Mutex
	requests []plugin.Request
}

func (r *recordingRunner) Execute(_ context.Context, _ *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, *req)
	return &plugin.Response{Success: true}, nil
}

func (r *recordingRunner) recorded() []plugin.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]plugin.Request(nil), r.requests...)
}

type recordingHub struct {
	mu     sync.Mutex
	events []any
}

func (h *recordingHub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, v)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

type fixture struct {
	app      *App
	runner   *recordingRunner
	keys     *plugin.KeyPresser
	store    *store.Store
	hub      *recordingHub
	requests *atomic.Int32
}

// newFixture wires an App to a classifier that always answers label.
func newFixture(t *testing.T, label string) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"direction": label})
	}))
	t.Cleanup(ts.Close)

	cfg := predict.DefaultConfig()
	cfg.Endpoint = ts.URL
	cfg.Logger = logger
	rec := recognize.NewRecognizer(recognize.NewOrchestrator(predict.NewClient(cfg), nil, logger), logger)

	s, err := store.New(filepath.Join(t.TempDir(), "handkeys.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	runner := &recordingRunner{}
	keys := plugin.NewKeyPresser(runner, &plugin.Plugin{Manifest: plugin.Manifest{Name: plugin.KeyboardPlugin}}, 10*time.Millisecond, logger)
	hub := &recordingHub{}

	a := New(Config{
		Recognizer: rec,
		Keys:       keys,
		Store:      s,
		Events:     hub,
		Logger:     logger,
	})
	return &fixture{app: a, runner: runner, keys: keys, store: s, hub: hub, requests: &requests}
}

func TestHandleHands_PressesKey(t *testing.T) {
	f := newFixture(t, recognize.LabelUp)
	hand := landmark.PointingLeft()

	var got []Event
	f.app.config.OnRecognized = func(ev Event) { got = append(got, ev) }

	out, ok := f.app.HandleHands(context.Background(), []landmark.Hand{hand})
	if !ok || out.Label != recognize.LabelUp {
		t.Fatalf("HandleHands() = %+v, %v; want up", out, ok)
	}
	f.keys.Wait()

	reqs := f.runner.recorded()
	if len(reqs) != 2 {
		t.Fatalf("plugin requests = %d, want 2", len(reqs))
	}
	if reqs[0].Action != plugin.ActionKeyDown || reqs[1].Action != plugin.ActionKeyUp {
		t.Errorf("actions = %s, %s; want keydown, keyup", reqs[0].Action, reqs[1].Action)
	}
	if reqs[0].Key != "ArrowUp" {
		t.Errorf("key = %s, want ArrowUp", reqs[0].Key)
	}
	if n := f.requests.Load(); n != 1 {
		t.Errorf("classifier requests = %d, want 1", n)
	}

	rows, err := f.store.Recognitions().List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("journal rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.ID != out.ID || row.Label != recognize.LabelUp || row.Source != store.SourceCamera || !row.Pressed {
		t.Errorf("unexpected journal row: %+v", row)
	}
	if row.Handedness != hand.Handedness {
		t.Errorf("handedness = %q, want %q", row.Handedness, hand.Handedness)
	}

	if f.hub.count() != 1 {
		t.Errorf("broadcasts = %d, want 1", f.hub.count())
	}
	if len(got) != 1 || got[0].Label != recognize.LabelUp || !got[0].Pressed || got[0].Type != EventRecognition {
		t.Errorf("callback events = %+v", got)
	}
}

func TestHandleHands_NoHand(t *testing.T) {
	f := newFixture(t, recognize.LabelUp)

	if _, ok := f.app.HandleHands(context.Background(), nil); ok {
		t.Error("expected no cycle without a hand")
	}
	if n := f.requests.Load(); n != 0 {
		t.Errorf("classifier requests = %d, want 0", n)
	}
	if len(f.runner.recorded()) != 0 {
		t.Error("no key should be pressed without a hand")
	}
}

func TestHandleHands_OnlyFirstHand(t *testing.T) {
	f := newFixture(t, recognize.LabelRight)
	hands := []landmark.Hand{landmark.PointingLeft(), landmark.Fist()}

	f.app.HandleHands(context.Background(), hands)
	f.keys.Wait()

	if n := f.requests.Load(); n != 1 {
		t.Errorf("classifier requests = %d, want 1", n)
	}
	if n := len(f.runner.recorded()); n != 2 {
		t.Errorf("plugin requests = %d, want 2", n)
	}
}

func TestHandleHands_Disabled(t *testing.T) {
	f := newFixture(t, recognize.LabelDown)
	f.app.SetEnabled(false)

	out, _ := f.app.HandleHands(context.Background(), []landmark.Hand{landmark.Fist()})
	f.keys.Wait()

	if out.Label != recognize.LabelDown {
		t.Fatalf("label = %q, want down", out.Label)
	}
	if n := len(f.runner.recorded()); n != 0 {
		t.Errorf("plugin requests = %d, want 0 while disabled", n)
	}

	rows, err := f.store.Recognitions().List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Pressed {
		t.Errorf("expected one unpressed journal row, got %+v", rows)
	}
}

func TestHandleHands_UnmappedLabel(t *testing.T) {
	f := newFixture(t, "forward")

	out, _ := f.app.HandleHands(context.Background(), []landmark.Hand{landmark.Fist()})
	if out.Label != "forward" || out.Step != "wrist-relative-final" {
		t.Fatalf("outcome = %+v, want forward from the final step", out)
	}
	if n := f.requests.Load(); n != 5 {
		t.Errorf("classifier requests = %d, want 5", n)
	}
	if n := len(f.runner.recorded()); n != 0 {
		t.Errorf("plugin requests = %d, want 0 for an unmapped label", n)
	}

	rows, _ := f.store.Recognitions().List(context.Background(), 10)
	if len(rows) != 1 || rows[0].Pressed {
		t.Errorf("expected one unpressed journal row, got %+v", rows)
	}
}

func TestHandleHands_ClassifierDown(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	cfg := predict.DefaultConfig()
	cfg.Endpoint = ts.URL
	cfg.Logger = logger
	runner := &recordingRunner{}
	hub := &recordingHub{}
	a := New(Config{
		Recognizer: recognize.NewRecognizer(recognize.NewOrchestrator(predict.NewClient(cfg), nil, logger), logger),
		Keys:       plugin.NewKeyPresser(runner, &plugin.Plugin{}, time.Millisecond, logger),
		Events:     hub,
		Logger:     logger,
	})

	out, ok := a.HandleHands(context.Background(), []landmark.Hand{landmark.Fist()})
	if !ok || out.Recognized() {
		t.Fatalf("outcome = %+v, want a cycle without a label", out)
	}
	if len(runner.recorded()) != 0 || hub.count() != 0 {
		t.Error("a failed cycle must not press keys or publish events")
	}
}

func TestEnabled_Persisted(t *testing.T) {
	f := newFixture(t, recognize.LabelUp)
	if !f.app.IsEnabled() {
		t.Fatal("expected enabled by default")
	}

	var toggled []bool
	f.app.config.OnEnabled = func(enabled bool) { toggled = append(toggled, enabled) }

	f.app.SetEnabled(false)
	f.app.SetEnabled(false)

	if len(toggled) != 1 || toggled[0] {
		t.Errorf("OnEnabled calls = %v, want [false]", toggled)
	}

	reopened := New(Config{Store: f.store, Recognizer: f.app.config.Recognizer, Logger: f.app.log})
	if reopened.IsEnabled() {
		t.Error("disabled state was not persisted")
	}
}

func TestStart_NoCamera(t *testing.T) {
	f := newFixture(t, recognize.LabelUp)
	if err := f.app.Start(context.Background()); err != ErrNoCamera {
		t.Errorf("Start() error = %v, want ErrNoCamera", err)
	}
	if f.app.Running() {
		t.Error("app should not be running")
	}
}
