// Package oracle provides the client for the optional AI estimation backend
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
)

const (
	defaultTimeout = 8 * time.Second
	defaultUA      = "auditforge-oracle"
	maxBody        = 1 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

// Estimation is the backend's raw estimation payload
type Estimation struct {
	Complexity      string   `json:"complexity"`
	Price           int64    `json:"price"`
	DurationDays    int      `json:"duration_days"`
	Reasoning       string   `json:"reasoning"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
}

// Client talks to the estimation backend over HTTP.
// Callers must treat every error as a cue to fall back, never as fatal.
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("oracle"),
		now:  time.Now,
	}
}

// Configured reports whether the client has enough config to be called at all
func (c *Client) Configured() bool {
	return c != nil && c.opts.BaseURL != "" && c.opts.APIKey != ""
}

type estimateRequest struct {
	RepositoryURL string `json:"repository_url"`
}

// Estimate asks the backend for a complexity and price estimate
func (c *Client) Estimate(ctx context.Context, repositoryURL string) (Estimation, error) {
	var out Estimation
	if !c.Configured() {
		return out, perr.New(perr.ErrorCodeUnavailable, "oracle not configured")
	}

	body, err := json.Marshal(estimateRequest{RepositoryURL: repositoryURL})
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnknown, "oracle encode request failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/v1/estimates", bytes.NewReader(body))
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnknown, "oracle new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnavailable, "oracle request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("oracle response")

	if resp.StatusCode != http.StatusOK {
		return out, perr.Newf(perr.ErrorCodeUnavailable, "oracle status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnavailable, "oracle read body failed")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnknown, "oracle malformed response")
	}
	return out, nil
}
