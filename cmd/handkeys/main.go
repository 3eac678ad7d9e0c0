package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handkeys/internal/app"
	"github.com/ayusman/handkeys/internal/capture"
	"github.com/ayusman/handkeys/internal/config"
	"github.com/ayusman/handkeys/internal/detector"
	"github.com/ayusman/handkeys/internal/logger"
	"github.com/ayusman/handkeys/internal/plugin"
	"github.com/ayusman/handkeys/internal/predict"
	"github.com/ayusman/handkeys/internal/recognize"
	"github.com/ayusman/handkeys/internal/server"
	"github.com/ayusman/handkeys/internal/store"
	"github.com/ayusman/handkeys/internal/tray"
)

func main() {
	envFile := flag.String("env", ".env", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "handkeys: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Caller: cfg.LogCaller,
		Output: os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "handkeys: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, log); err != nil {
		logger.ErrorWithTraceID(log, err, "handkeys stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	log.Info("Handkeys - hand gestures to arrow keys")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	client := predict.NewClient(predict.Config{
		Endpoint:          cfg.Endpoint,
		Origin:            cfg.Origin,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestRate,
		Burst:             1,
		Logger:            log,
	})
	recognizer := recognize.NewRecognizer(
		recognize.NewOrchestrator(client, nil, log.WithField("component", "orchestrator")),
		log.WithField("component", "recognizer"),
	)

	var keys app.KeyPresser
	if kp := newKeyPresser(cfg, log); kp != nil {
		defer kp.Wait()
		keys = kp
	}

	hub := server.NewHub(log.WithField("component", "events"))
	preview := capture.NewPreview()

	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(true)
	}
	appCfg := app.Config{
		Recognizer: recognizer,
		Keys:       keys,
		Store:      st,
		Events:     hub,
		Preview:    preview,
		Gate:       capture.NewChangeGate(cfg.MotionThreshold, 0),
		Logger:     log.WithField("component", "app"),
	}
	if cfg.CameraID >= 0 {
		camCfg := capture.DefaultConfig()
		camCfg.DeviceID = cfg.CameraID
		appCfg.Camera = capture.NewCamera(camCfg, log.WithField("component", "camera"))
		appCfg.Detector = newDetector(log)
	}
	if cfg.Tray {
		appCfg.OnRecognized = func(ev app.Event) { t.SetLastLabel(ev.Label) }
		appCfg.OnEnabled = func(enabled bool) { t.SetEnabled(enabled) }
	}
	a := app.New(appCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.Camera != nil {
		if err := a.Start(ctx); err != nil {
			log.WithError(err).Warn("camera unavailable, serving the API only")
		}
	} else {
		log.Info("camera disabled, serving the API only")
	}
	defer a.Stop()

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		log.WithField("dir", webDir).Info("serving static files")
	}
	srv := server.New(server.Config{
		StaticDir:  webDir,
		Recognizer: recognizer,
		Store:      st,
		Preview:    preview,
		Events:     hub,
		Toggle:     a,
		Logger:     log.WithField("component", "server"),
	})

	if !cfg.Tray {
		return serve(ctx, srv, cfg.Addr)
	}

	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnOpen(func() { openBrowser(statusURL(cfg.Addr), log) })
	t.OnQuit(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, srv, cfg.Addr)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

func serve(ctx context.Context, srv *server.Server, addr string) error {
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// newKeyPresser returns nil when the keyboard plugin is not installed or
// cannot press keys.
func newKeyPresser(cfg config.Config, log *logrus.Logger) *plugin.KeyPresser {
	mgr := plugin.NewManager(cfg.PluginDir, log.WithField("component", "plugins"))
	if err := mgr.Discover(); err != nil {
		log.WithError(err).Warn("cannot scan plugin directory")
	}

	p, err := mgr.Get(plugin.KeyboardPlugin)
	if err != nil {
		log.WithField("dir", cfg.PluginDir).Warn("keyboard plugin not found, key presses disabled")
		return nil
	}
	if err := plugin.CheckKeyboard(p); err != nil {
		log.WithError(err).Warn("keyboard plugin rejected, key presses disabled")
		return nil
	}
	return plugin.NewKeyPresser(plugin.NewExecutor(0), p, cfg.KeyHold, log.WithField("component", "keys"))
}

// newDetector prefers MediaPipe and falls back to a detector that never
// reports a hand.
func newDetector(log *logrus.Logger) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), log.WithField("component", "detector"))
	if err == nil {
		log.Info("using MediaPipe hand detection")
		return mp
	}
	log.WithError(err).Warn("MediaPipe not available, hand detection disabled")
	return detector.NewMockDetector()
}

// findWebDir returns the first of web, ../web, ../../web and
// <dataDir>/web that exists, or "".
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func statusURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string, log logrus.FieldLogger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("cannot open browser")
	}
}
