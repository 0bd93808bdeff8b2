// Package httpclient builds the HTTP client used to talk to the YouTube Data API.
package httpclient

import (
	"net/http"
	"time"
)

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests
	Timeout time.Duration

	// User agent for HTTP requests
	UserAgent string

	// APIKey is sent as the "key" query parameter on every request.
	// Empty means no key is added.
	APIKey string

	// Connection pool configuration
	Transport TransportConfig
}

// TransportConfig configures the HTTP transport (connection pooling).
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections across all hosts.
	// Default: 4
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 2
	MaxIdleConnsPerHost int

	// IdleConnTimeout is the maximum amount of time an idle connection can remain open.
	// Default: 90 seconds
	IdleConnTimeout time.Duration

	// ForceAttemptHTTP2 forces HTTP/2 for connections to servers that don't explicitly support it.
	// Default: true
	ForceAttemptHTTP2 bool
}

// DefaultConfig returns sensible defaults for HTTP client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "ytcomments/1.0",
		Transport: DefaultTransportConfig(),
	}
}

// DefaultTransportConfig returns sensible defaults for HTTP transport configuration.
// Requests are strictly sequential, so the pool stays small.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// New creates an *http.Client with the given configuration.
func New(cfg *Config) *http.Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
		ForceAttemptHTTP2:   cfg.Transport.ForceAttemptHTTP2,
	}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &keyTransport{
			base:      transport,
			apiKey:    cfg.APIKey,
			userAgent: cfg.UserAgent,
		},
	}
}

// keyTransport adds the API key and user agent to outgoing requests.
type keyTransport struct {
	base      http.RoundTripper
	apiKey    string
	userAgent string
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// modification as required by the RoundTripper contract.
func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	if t.apiKey != "" {
		q := r.URL.Query()
		q.Set("key", t.apiKey)
		r.URL.RawQuery = q.Encode()
	}

	// Don't override explicitly set headers
	if t.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(r)
}
