// Package satispay is a client for the Satispay Online API (users, charges
// and refunds). One Client instance is safe for concurrent use; every call is
// a single synchronous HTTP request with no retries or caching.
package satispay

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// Environment selects the provider host every request is sent to.
type Environment int

const (
	// Production targets the live Satispay service.
	Production Environment = iota
	// Sandbox targets the staging service.
	Sandbox
)

// BaseURL returns the host the environment resolves to.
func (e Environment) BaseURL() string {
	if e == Sandbox {
		return "https://staging.authservices.satispay.com"
	}
	return "https://authservices.satispay.com"
}

const defaultTimeout = 20 * time.Second

// Client talks to the Satispay Online API on behalf of a single shop. The
// security bearer and environment are fixed for the lifetime of the instance.
type Client struct {
	securityBearer string
	baseURL        string

	httpClient *http.Client
	transport  *http.Transport
	logger     *slog.Logger

	closed atomic.Bool
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithEnvironment selects production or sandbox. Production is the default.
func WithEnvironment(env Environment) Option {
	return func(c *Client) {
		c.baseURL = env.BaseURL()
	}
}

// WithBaseURL overrides the resolved host entirely. Meant for pointing the
// client at a local emulator or a stub server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying transport. Proxy mutation via
// SetProxy only works when the supplied client uses an *http.Transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.transport, _ = hc.Transport.(*http.Transport)
	}
}

// WithTimeout caps the total duration of every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for per-request debug lines.
// slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithProxy routes every request through the given proxy.
func WithProxy(proxyURL *url.URL) Option {
	return func(c *Client) {
		c.SetProxy(proxyURL)
	}
}

// New creates a Client authenticated with the given security bearer.
func New(securityBearer string, opts ...Option) (*Client, error) {
	if securityBearer == "" {
		return nil, fmt.Errorf("%w: securityBearer must not be empty", ErrInvalidArgument)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		securityBearer: securityBearer,
		baseURL:        Production.BaseURL(),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		transport: transport,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// SetProxy updates the proxy used by the owned transport. Passing nil
// restores direct (environment-derived) proxying. It is a no-op when a
// custom http.Client without an *http.Transport was supplied.
func (c *Client) SetProxy(proxyURL *url.URL) {
	if c.transport == nil {
		return
	}
	if proxyURL == nil {
		c.transport.Proxy = http.ProxyFromEnvironment
		return
	}
	c.transport.Proxy = http.ProxyURL(proxyURL)
}

// Close releases idle connections held by the transport. It is idempotent;
// any call made after Close fails with ErrClientClosed. A call racing with
// Close may still complete normally.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}
