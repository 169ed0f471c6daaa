// Package pinning provides the client for the content-addressed storage gateway
package pinning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
)

const (
	defaultTimeout = 15 * time.Second
	defaultUA      = "auditforge-pinning"
	maxDocument    = 4 << 20
)

// Options configures the Client
type Options struct {
	BaseURL    string
	GatewayURL string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
}

// Client pins immutable documents and resolves them by content identifier.
// Pinning failures are surfaced loudly since an unpublished document must
// never be referenced by a certificate.
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.GatewayURL == "" {
		o.GatewayURL = o.BaseURL
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("pinning"),
	}
}

type pinRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type pinResponse struct {
	CID string `json:"cid"`
}

// Put publishes payload under name and returns its content identifier
func (c *Client) Put(ctx context.Context, name string, payload []byte) (string, error) {
	if c.opts.BaseURL == "" {
		return "", perr.Externalf("package", "pinning gateway not configured")
	}

	body, err := json.Marshal(pinRequest{
		Name:    name,
		Content: base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "pinning encode request failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/pins", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "pinning new request failed")
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.External("package", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", perr.Externalf("package", "pinning gateway status %d", resp.StatusCode)
	}

	var out pinResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocument)).Decode(&out); err != nil {
		return "", perr.External("package", err)
	}
	if out.CID == "" {
		return "", perr.Externalf("package", "pinning gateway returned empty cid")
	}

	c.log.Debug().Str("name", name).Str("cid", out.CID).Int("bytes", len(payload)).Msg("document pinned")
	return out.CID, nil
}

// Get fetches the raw document bytes for a content identifier
func (c *Client) Get(ctx context.Context, cid string) ([]byte, error) {
	if strings.TrimSpace(cid) == "" {
		return nil, perr.Validationf("cid must not be empty")
	}
	if c.opts.GatewayURL == "" {
		return nil, perr.Externalf("resolve", "pinning gateway not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gateURL(cid), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinning new request failed")
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.External("resolve", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, perr.NotFoundf("document %s not found", cid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, perr.Externalf("resolve", "pinning gateway status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocument))
	if err != nil {
		return nil, perr.External("resolve", err)
	}
	return b, nil
}

// GatewayURL returns the public dereference URL for a content identifier
func (c *Client) GatewayURL(cid string) string {
	return c.gateURL(cid)
}

func (c *Client) gateURL(cid string) string {
	return strings.TrimSuffix(c.opts.GatewayURL, "/") + "/gate/" + url.PathEscape(cid)
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
}
