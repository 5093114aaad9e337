// Package fetch implements the HTTP client every source adapter goes through:
// per-attempt timeouts, bounded retries with exponential backoff and optional
// per-host pacing.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	UserAgent      string
	// RateLimit is requests per second per host. Zero disables pacing.
	RateLimit float64
	Burst     int
}

func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		UserAgent:      "ScribaAggregator/1.0",
		Burst:          1,
	}
}

type Options struct {
	Method string
	Header http.Header
	Body   []byte
}

// Response is fully buffered; the body has been read and closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RetryObserver is notified before each retry.
type RetryObserver interface {
	FetchRetry(host string)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryObserver(o RetryObserver) Option {
	return func(c *Client) { c.observer = o }
}

type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
	observer   RetryObserver

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     logger.With("component", "fetch"),
		limiters:   make(map[string]*rate.Limiter),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs the request, retrying transport failures, timeouts, 429 and
// 5xx responses. Any other status is returned to the caller as-is.
// Cancellation of ctx is never retried.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	if opts == nil {
		opts = &Options{}
	}
	host := hostOf(rawURL)

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx, host); err != nil {
			return nil, err
		}

		resp, err := c.doRequest(ctx, rawURL, opts)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrInvalidRequest) {
			return nil, err
		}
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			err = &StatusError{StatusCode: resp.StatusCode}
		}
		lastErr = err

		if attempt >= c.cfg.MaxRetries {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"url", rawURL,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)
		if c.observer != nil {
			c.observer.FetchRetry(host)
		}

		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, &NetworkError{URL: rawURL, Attempts: c.cfg.MaxRetries + 1, Err: lastErr}
}

// Get is Fetch with a GET and an Accept: application/json header.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.Fetch(ctx, rawURL, &Options{
		Method: http.MethodGet,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w: %w", ErrInvalidRequest, err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) wait(ctx context.Context, host string) error {
	if c.cfg.RateLimit <= 0 {
		return nil
	}
	return c.limiter(host).Wait(ctx)
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), c.cfg.Burst)
		c.limiters[host] = l
	}
	return l
}

// calculateBackoff returns InitialBackoff * 2^retry, capped at MaxBackoff.
func (c *Client) calculateBackoff(retry int) time.Duration {
	backoff := c.cfg.InitialBackoff
	for i := 0; i < retry; i++ {
		backoff *= 2
		if backoff >= c.cfg.MaxBackoff {
			return c.cfg.MaxBackoff
		}
	}
	if backoff > c.cfg.MaxBackoff {
		backoff = c.cfg.MaxBackoff
	}
	return backoff
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
