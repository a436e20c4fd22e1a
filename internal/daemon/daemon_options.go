package daemon

import (
	"fmt"
	"net/url"
	"strings"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// ShopifyBaseURL overrides the store URL derived from the store name, e.g. for a proxy.
	ShopifyBaseURL string
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{}

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

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithShopifyBaseURL points the Shopify client at baseURL instead of https://{store}.myshopify.com.
func WithShopifyBaseURL(baseURL string) Option {
	return func(o *Options) error {
		baseURL = strings.TrimSpace(baseURL)
		u, err := url.Parse(baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid Shopify base URL: '%s'", baseURL)
		}
		o.ShopifyBaseURL = baseURL
		return nil
	}
}
