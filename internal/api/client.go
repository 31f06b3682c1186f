package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/byflash/drive-cli/internal/logging"
)

// retryLogger adapts our logger to the retryablehttp.LeveledLogger interface.
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logging.Logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logging.Logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Retry chatter stays at debug; only warnings and errors surface.
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API endpoint, without the ?action query.
	BaseURL string
	// Token is the bearer token from a previous login. May be empty; Login
	// sets it on success.
	Token string
	// HTTPClient is the underlying transport. When nil a default pooled
	// client is used.
	HTTPClient *nethttp.Client
}

// Client talks to the Drive API. Every operation is an action name on a
// single endpoint: GET or POST to BaseURL?action=<name>.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

// NewClient creates an API client with retry-wrapped transport.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}

	retryClient := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		retryClient.HTTPClient = opts.HTTPClient
	}
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = &retryLogger{}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		token:      opts.Token,
		log:        logging.Logger.With().Str("component", "api").Logger(),
	}, nil
}

// SetToken replaces the bearer token, typically right after Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// actionURL builds BaseURL?action=<name> plus any extra query parameters.
func (c *Client) actionURL(action string, query url.Values) string {
	u := c.baseURL + "?action=" + url.QueryEscape(action)
	if len(query) > 0 {
		u += "&" + query.Encode()
	}
	return u
}

// doRequest performs one authenticated API action. A JSON body is marshalled
// when non-nil. A 401 response is translated to ErrSessionExpired so callers
// can reset the session uniformly.
func (c *Client) doRequest(ctx context.Context, method, action string, query url.Values, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.actionURL(action, query), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("action", action).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == nethttp.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// decodeJSON drains and closes the response body after decoding into out.
func decodeJSON(resp *nethttp.Response, out interface{}) error {
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
