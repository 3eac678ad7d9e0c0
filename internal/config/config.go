// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ayusman/handkeys/internal/predict"
)

// Prefix is prepended to every environment variable name.
const Prefix = "HANDKEYS_"

// ErrInvalid wraps validation and parse failures.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting the command needs.
type Config struct {
	Endpoint       string        `validate:"required,url"`
	Origin         string        `validate:"omitempty,url"`
	RequestRate    float64       `validate:"gte=0"`
	RequestTimeout time.Duration `validate:"gte=0"`

	Addr      string `validate:"required"`
	CameraID  int    `validate:"gte=-1"`
	PluginDir string
	DataDir   string `validate:"required"`

	KeyHold         time.Duration `validate:"gt=0"`
	MotionThreshold float64       `validate:"gte=0,lte=100"`

	LogLevel  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile   string
	LogCaller bool
	Tray      bool
}

// Default returns the settings used when nothing is configured. DataDir is
// ~/.handkeys, or .handkeys when the home directory is unknown.
func Default() Config {
	dataDir := ".handkeys"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".handkeys")
	}

	return Config{
		Endpoint:        predict.DefaultEndpoint,
		Addr:            ":8080",
		CameraID:        0,
		PluginDir:       filepath.Join(dataDir, "plugins"),
		DataDir:         dataDir,
		KeyHold:         100 * time.Millisecond,
		MotionThreshold: 1.0,
		LogLevel:        "info",
	}
}

// DBPath is the journal database file inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "handkeys.db")
}

// Load reads the given .env files (".env" when none are named), then
// overlays HANDKEYS_* variables on Default and validates the result. Missing
// .env files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function over variable names.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	r.str("ENDPOINT", &cfg.Endpoint)
	r.str("ORIGIN", &cfg.Origin)
	r.float("REQUEST_RATE", &cfg.RequestRate)
	r.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	r.str("ADDR", &cfg.Addr)
	r.int("CAMERA_ID", &cfg.CameraID)
	if dir, ok := lookup(Prefix + "DATA_DIR"); ok && dir != "" {
		cfg.DataDir = dir
		cfg.PluginDir = filepath.Join(dir, "plugins")
	}
	r.str("PLUGIN_DIR", &cfg.PluginDir)
	r.duration("KEY_HOLD", &cfg.KeyHold)
	r.float("MOTION_THRESHOLD", &cfg.MotionThreshold)
	r.str("LOG_LEVEL", &cfg.LogLevel)
	r.str("LOG_FILE", &cfg.LogFile)
	r.bool("LOG_CALLER", &cfg.LogCaller)
	r.bool("TRAY", &cfg.Tray)

	if r.err != nil {
		return Config{}, r.err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// reader keeps the first parse error so FromEnv stays linear.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) get(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(Prefix + name)
	return v, ok && v != ""
}

func (r *reader) fail(name, value string, err error) {
	r.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, Prefix, name, value, err)
}

func (r *reader) str(name string, dst *string) {
	if v, ok := r.get(name); ok {
		*dst = v
	}
}

func (r *reader) int(name string, dst *int) {
	if v, ok := r.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (r *reader) float(name string, dst *float64) {
	if v, ok := r.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = f
	}
}

func (r *reader) bool(name string, dst *bool) {
	if v, ok := r.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = b
	}
}

func (r *reader) duration(name string, dst *time.Duration) {
	if v, ok := r.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = d
	}
}
