package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	headerApplicationID    = "X-Parse-Application-Id"
	headerClientKey        = "X-Parse-Client-Key"
	headerMasterKey        = "X-Parse-Master-Key"
	headerSessionToken     = "X-Parse-Session-Token"
	headerRevocableSession = "X-Parse-Revocable-Session"

	defaultTimeout = 10 * time.Second
)

// Options configures the backend REST client. ApplicationID and ClientKey are
// the fixed application credentials; MasterKey is required only for the
// privileged password update used by the recovery wizard.
type Options struct {
	ServerURL     string
	ApplicationID string
	ClientKey     string
	MasterKey     string
	Timeout       time.Duration
}

// Client is a thin REST client for the hosted Parse-compatible backend.
type Client struct {
	http    *http.Client
	baseURL string
	opts    Options
	logger  *zap.Logger
}

// NewClient constructs a backend client.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	serverURL := strings.TrimRight(strings.TrimSpace(opts.ServerURL), "/")
	if serverURL == "" {
		return nil, fmt.Errorf("backend server url is required")
	}
	if strings.TrimSpace(opts.ApplicationID) == "" {
		return nil, fmt.Errorf("backend application id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: serverURL,
		opts:    opts,
		logger:  logger,
	}, nil
}

type requestOption func(*http.Request)

func withSessionToken(token string) requestOption {
	return func(req *http.Request) {
		req.Header.Set(headerSessionToken, token)
	}
}

func withRevocableSession() requestOption {
	return func(req *http.Request) {
		req.Header.Set(headerRevocableSession, "1")
	}
}

func (c *Client) withMasterKey() requestOption {
	return func(req *http.Request) {
		req.Header.Del(headerClientKey)
		req.Header.Set(headerMasterKey, c.opts.MasterKey)
	}
}

// do issues a request and decodes the JSON response into out (when non-nil).
// Non-2xx responses are decoded into APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...requestOption) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set(headerApplicationID, c.opts.ApplicationID)
	if c.opts.ClientKey != "" {
		req.Header.Set(headerClientKey, c.opts.ClientKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr := json.Unmarshal(payload, apiErr); decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(payload))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}

	return nil
}
