// Package adk implements the HTTP transport for an ADK-style agent API server.
// It knows the endpoints and wire format only; session lifecycle and history live in
// the agentchat packages.
package adk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HTTPError is returned when the server answers with a non-2xx status
type HTTPError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error (HTTP %d %s): %s", e.StatusCode, e.StatusText, e.Body)
}

// DecodeError is returned when a 2xx response body cannot be decoded
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error parsing response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client talks to the agent API server over HTTP
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request/response debug output
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new transport client
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession creates a new session for the given user
func (c *Client) CreateSession(ctx context.Context, baseURL, appName, userID string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/apps/%s/users/%s/sessions",
		trimBaseURL(baseURL), url.PathEscape(appName), url.PathEscape(userID))

	var session Session
	if err := c.do(ctx, http.MethodPost, endpoint, struct{}{}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Run sends a new message to the agent and returns the events produced by the turn
func (c *Client) Run(ctx context.Context, baseURL string, req *RunRequest) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodPost, trimBaseURL(baseURL)+"/run", req, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListApps returns the names of the applications served by the backend
func (c *Client) ListApps(ctx context.Context, baseURL string) ([]string, error) {
	var apps []string
	if err := c.do(ctx, http.MethodGet, trimBaseURL(baseURL)+"/list-apps", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// do performs a JSON request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "error marshaling request")
		}
		body = bytes.NewReader(jsonData)
		c.logger.Debug().Str("method", method).Str("url", endpoint).RawJSON("body", jsonData).Msg("API request")
	} else {
		c.logger.Debug().Str("method", method).Str("url", endpoint).Msg("API request")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "error creating request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "error sending request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response")
	}

	c.logger.Debug().Int("status", resp.StatusCode).Str("url", endpoint).Bytes("body", respBody).Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Body: string(respBody), Err: err}
	}
	return nil
}

// statusText extracts the reason phrase from the response status line
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
