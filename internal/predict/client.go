// Package predict is the HTTP client for the remote gesture classifier.
package predict

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the hosted classifier the keyboard mapping was trained against.
const DefaultEndpoint = "https://xdgnuwvzpzah.ap-southeast-1.clawcloudrun.com/predict"

var (
	// ErrTransport covers network failures, non-2xx statuses and bodies
	// that are not valid JSON.
	ErrTransport = errors.New("classifier transport failure")

	// ErrServerReported is returned when the classifier answers with an error field.
	ErrServerReported = errors.New("classifier reported an error")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the classifier's answer.
type Result struct {
	Direction string `json:"direction,omitempty"`
	Error     string `json:"error,omitempty"`
}

type request struct {
	Data []float64 `json:"data"`
}

// Config holds client settings.
type Config struct {
	Endpoint string

	// Origin is sent as the Origin header so the service applies its
	// cross-origin policy the same way it does for browser callers.
	Origin string

	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond limits outbound requests. Zero means unlimited.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// DefaultConfig returns a Config for the hosted classifier.
func DefaultConfig() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Burst:    1,
	}
}

// Client submits vectors to the classifier. It holds no per-request state
// and is safe for concurrent use.
type Client struct {
	endpoint string
	origin   string
	http     *http.Client
	limiter  *rate.Limiter
	log      logrus.FieldLogger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		endpoint: cfg.Endpoint,
		origin:   cfg.Origin,
		http:     hc,
		limiter:  rate.NewLimiter(limit, burst),
		log:      log.WithField("component", "predict"),
	}
}

// Predict posts data as {"data": [...]} and returns the decoded answer.
// A returned error wraps ErrTransport or ErrServerReported.
func (c *Client) Predict(ctx context.Context, data []float64) (*Result, error) {
	st := Summarize(data)
	c.log.WithFields(logrus.Fields{
		"count": st.Count,
		"min":   fmt.Sprintf("%.4f", st.Min),
		"max":   fmt.Sprintf("%.4f", st.Max),
		"mean":  fmt.Sprintf("%.4f", st.Mean),
	}).Debug("submitting prediction request")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrTransport, err)
	}

	body, err := codec.Marshal(request{Data: data})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("prediction request failed")
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.WithError(err).Warn("reading prediction response failed")
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   truncate(raw, 256),
		}).Warn("prediction request rejected")
		return nil, fmt.Errorf("%w: status %s", ErrTransport, resp.Status)
	}

	c.log.WithField("response", truncate(raw, 256)).Debug("prediction response")

	var result Result
	if err := codec.Unmarshal(raw, &result); err != nil {
		c.log.WithError(err).Warn("malformed prediction response")
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	if result.Error != "" {
		c.log.WithField("error", result.Error).Warn("classifier returned an error")
		return nil, fmt.Errorf("%w: %s", ErrServerReported, result.Error)
	}

	return &result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
