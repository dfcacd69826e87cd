package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const defaultBaseURL = "https://api.cherryservers.com/v1/"

const userAgent = "cherrysync/0.1.0"

// Client defines the interface for talking to the Cherry Servers public API.
// SendRequest returns the HTTP status code and the raw response body; a
// non-2xx status is not an error at this layer, only transport failures are.
type Client interface {
	SendRequest(ctx context.Context, method string, path string, timeout time.Duration, params map[string]any) (int, []byte, error)
}

// Env holds the environment fallback for authentication. The token may be
// provided under either of two recognized variable names.
type Env struct {
	AuthToken string `envconfig:"CHERRY_AUTH_TOKEN"`
	AuthKey   string `envconfig:"CHERRY_AUTH_KEY"`
}

// Options configure a CherryClient. An empty Token falls back to the
// CHERRY_AUTH_TOKEN and CHERRY_AUTH_KEY environment variables, in that order.
type Options struct {
	Token   string
	BaseURL string
}

// CherryClient is the HTTP implementation of Client.
type CherryClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a CherryClient and validates the auth token against the API.
func New(ctx context.Context, opts Options) (*CherryClient, error) {
	c, err := newUnvalidated(opts)
	if err != nil {
		return nil, err
	}

	if err := c.validateToken(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func newUnvalidated(opts Options) (*CherryClient, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		var env Env
		if err := envconfig.Process("", &env); err != nil {
			return nil, fmt.Errorf("read token from environment: %w", err)
		}
		token = env.AuthToken
		if token == "" {
			token = env.AuthKey
		}
	}
	if token == "" {
		return nil, fmt.Errorf("auth token not provided")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &CherryClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}, nil
}

// validateToken fails fast on a bad token so reconcilers never observe one.
func (c *CherryClient) validateToken(ctx context.Context) error {
	status, _, err := c.SendRequest(ctx, http.MethodGet, "user", 10*time.Second, nil)
	if err != nil {
		return fmt.Errorf("failed to validate auth token: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("failed to validate auth token: status %d", status)
	}
	return nil
}

// SendRequest sends a single request to the Cherry Servers API. The path is
// relative to the base URL. params, when non-nil, is marshaled as the JSON
// request body.
func (c *CherryClient) SendRequest(ctx context.Context, method string, path string, timeout time.Duration, params map[string]any) (int, []byte, error) {
	url := c.baseURL + strings.TrimPrefix(path, "/")

	var bodyReader io.Reader
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
