package shopify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options contains optional configuration for the Shopify client.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIVersion is the Admin API version used in request paths.
	APIVersion string

	// BaseURL overrides the store URL derived from the store name.
	BaseURL string

	// Timeout bounds each request made by the client.
	Timeout time.Duration

	// HTTPClient is used to issue requests. When nil, a client is created using Timeout.
	HTTPClient *http.Client
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with defaults, then applies options in order.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		APIVersion: DefaultAPIVersion,
		Timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithAPIVersion sets the Admin API version, e.g. "2025-07".
func WithAPIVersion(version string) Option {
	return func(o *Options) error {
		version = strings.TrimSpace(version)
		if version == "" {
			return fmt.Errorf("api version cannot be empty")
		}
		o.APIVersion = version
		return nil
	}
}

// WithBaseURL points the client at a URL other than https://{store}.myshopify.com.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) error {
		u, err := url.Parse(strings.TrimSpace(baseURL))
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base URL: %q must be absolute", baseURL)
		}
		o.BaseURL = u.String()
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// WithHTTPClient supplies the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.HTTPClient = c
		return nil
	}
}
