package nws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"medi-forecast/internal/types"
)

// API Docs: https://www.weather.gov/documentation/services-web-api
// Sample requests:
// - https://api.weather.gov/points/37.8,-122.47
// - https://api.weather.gov/gridpoints/MTR/84,126/forecast/hourly
const (
	baseURL          = "https://api.weather.gov"
	defaultUserAgent = "medi-forecast/1.0"

	// maxErrorBody bounds how much of a failed response is kept for the error message
	maxErrorBody = 1024
)

var (
	// ErrTransport means no response was received
	ErrTransport = errors.New("transport failure")
	// ErrStatus means the server answered with a non-2xx status
	ErrStatus = errors.New("unexpected status")
	// ErrRead means the response body could not be read
	ErrRead = errors.New("failed to read response body")
	// ErrDecode means the response body was not a JSON object
	ErrDecode = errors.New("failed to decode response")
)

// StatusError carries the status code and a body excerpt of a failed request
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// IsIOError reports whether err is a network or stream failure rather than a
// problem with the shape of the returned document
func IsIOError(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStatus) || errors.Is(err, ErrRead)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets an overall request timeout; zero keeps the transport defaults
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		userAgent:  defaultUserAgent,
		logger:     logger.With("component", "nws-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPoint fetches the points resource for a coordinate. Its properties link to
// the forecast resources for that location.
func (c *Client) GetPoint(ctx context.Context, coords types.Coords) (*types.Document, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u = u.JoinPath("points", coords.PathSegment())

	return c.GetJSON(ctx, u.String())
}

// GetJSON fetches rawURL with an Accept: application/json header and parses the
// body as a JSON object. The response body is closed on every return path.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (*types.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request for %s: %w", ErrTransport, rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetching", "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", ErrTransport, rawURL, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrRead, rawURL, err)
	}

	doc, err := types.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrDecode, rawURL, err)
	}

	c.logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))

	return doc, nil
}
