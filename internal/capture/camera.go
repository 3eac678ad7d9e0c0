// Package capture reads frames from a camera and decides which of them are
// worth sending to hand tracking.
package capture

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrReadFailed is returned when the device produced no usable frame.
	ErrReadFailed = errors.New("failed to read frame")
	// ErrNoFrames is returned by MockCamera once playback is over.
	ErrNoFrames = errors.New("no more frames")
)

// Camera is a frame source. The caller closes every Mat it receives.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Config describes the capture device.
type Config struct {
	DeviceID int
	FPS      int
	Width    int
	Height   int
}

// DefaultConfig captures 640x480 at 15 fps from device 0.
func DefaultConfig() Config {
	return Config{DeviceID: 0, FPS: 15, Width: 640, Height: 480}
}

type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	log     logrus.FieldLogger
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera over a local video device. Zero fields in
// config take their DefaultConfig values.
func NewCamera(config Config, log logrus.FieldLogger) Camera {
	def := DefaultConfig()
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &cameraImpl{config: config, log: log}
}

func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return err
	}

	// Set resolution for performance
	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	c.capture = capture
	c.running = true
	c.log.WithFields(logrus.Fields{
		"device": c.config.DeviceID,
		"width":  c.config.Width,
		"height": c.config.Height,
	}).Info("camera opened")

	return nil
}

func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame blocks until the device delivers the next frame.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrReadFailed
	}

	return &mat, nil
}

// SetFPS ignores non-positive values.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
