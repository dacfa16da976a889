package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kerbaras/komik/pkg/logger"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Shinigami API.
const DefaultBaseURL = "https://api.shngm.io/v1"

type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	log     *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Client) { a.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Client) {
		if d > 0 {
			a.client = &http.Client{Timeout: d, Transport: a.client.Transport}
		}
	}
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *Client) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *logger.Logger) Option {
	return func(a *Client) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAPI(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	a := &Client{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the root every path is resolved against.
func (a *Client) BaseURL() string {
	return a.baseURL
}

// Get issues one GET for path with params and decodes the JSON body into v.
func (a *Client) Get(ctx context.Context, path string, params url.Values, v any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", a.baseURL, path), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	a.log.Debug("api request", "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s", ErrTransport, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}
