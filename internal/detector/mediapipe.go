package detector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/handkeys/internal/landmark"
)

const scriptName = "mediapipe_service.py"

// ErrScriptNotFound is returned when the tracking script cannot be located.
var ErrScriptNotFound = errors.New(scriptName + " not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MediaPipeDetector runs hand tracking in a Python MediaPipe subprocess.
// Frames go in as a 4-byte big-endian length followed by JPEG bytes; each
// frame yields one line of JSON on stdout.
type MediaPipeDetector struct {
	config Config
	script string
	python string
	log    logrus.FieldLogger

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	idleTimer *time.Timer
}

// NewMediaPipeDetector locates the tracking script and returns a detector.
// The subprocess is started lazily on the first frame.
func NewMediaPipeDetector(config Config, log logrus.FieldLogger) (*MediaPipeDetector, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	script := config.ScriptPath
	if script == "" {
		script = firstExisting(candidatePaths(filepath.Join("scripts", scriptName)))
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}

	python := config.PythonPath
	if python == "" {
		python = firstExisting(candidatePaths(filepath.Join("venv", "bin", "python")))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
		log:    log.WithField("component", "mediapipe"),
	}, nil
}

// Detect sends one frame to the subprocess and parses the hands it reports.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]landmark.Hand, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	payload := buf.GetBytes()
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))

	if _, err := d.stdin.Write(append(header, payload...)); err != nil {
		d.stop()
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.stop()
		return nil, fmt.Errorf("read response: %w", err)
	}

	hands, err := d.decode(line)
	if err != nil {
		return nil, err
	}

	d.armIdleTimer()
	return hands, nil
}

// Close shuts down the subprocess if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) start() error {
	if d.cmd != nil {
		return nil
	}

	cmd := exec.Command(d.python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start tracking service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.log.WithField("script", d.script).Info("hand tracking service started")
	return nil
}

func (d *MediaPipeDetector) stop() error {
	if d.cmd == nil {
		return nil
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	d.stdin.Close()
	err := d.cmd.Wait()

	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.log.Info("hand tracking service stopped")
	return err
}

func (d *MediaPipeDetector) armIdleTimer() {
	if d.config.IdleTimeout <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

// candidatePaths lists where a project-relative file may live: the working
// directory and its parents, next to the executable, and under ~/.handkeys.
func candidatePaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel), filepath.Join("..", "..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".handkeys", rel))
	}
	return paths
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

type wireHand struct {
	Points     []landmark.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

// decode parses one response line. Hands that do not carry exactly 21
// points are dropped with a warning.
func (d *MediaPipeDetector) decode(line []byte) ([]landmark.Hand, error) {
	var response struct {
		Hands []wireHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("tracker: %s", response.Error)
	}

	hands := make([]landmark.Hand, 0, len(response.Hands))
	for i, h := range response.Hands {
		hand, err := h.landmarks()
		if err != nil {
			d.log.WithError(err).WithField("hand", i).Warn("dropping malformed hand")
			continue
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

func (h wireHand) landmarks() (landmark.Hand, error) {
	return landmark.FromPoints(h.Points, h.Handedness, h.Score)
}
