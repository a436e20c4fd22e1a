// Package config loads the service configuration from the environment.
//
// Values may be supplied by a dotenv file, which is loaded first;
// variables already present in the environment always take precedence.
// Configuration is validated as a whole so that every problem is reported at startup.
package config

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/storefront-labs/backend-integration/internal/errors"
)

// Environment variable names.
const (
	EnvAppName   = "APP_NAME"
	EnvAppDomain = "APP_DOMAIN"
	EnvAPIKey    = "API_KEY"

	EnvShopifyStoreName      = "SHOPIFY_STORE_NAME"
	EnvShopifyAPIKey         = "SHOPIFY_API_KEY"
	EnvShopifyAPISecret      = "SHOPIFY_API_SECRET"
	EnvShopifyAccessToken    = "SHOPIFY_API_ACCESS_TOKEN"
	EnvShopifyRequestTimeout = "SHOPIFY_REQUEST_TIMEOUT_IN_SECOND"
	EnvShopifyAPIVersion     = "SHOPIFY_API_VERSION"
)

// Defaults.
const (
	DefaultAppName               = "backend-integration"
	DefaultShopifyAPIVersion     = "2025-07"
	DefaultShopifyRequestTimeout = 15 * time.Second
)

var (
	storeNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)
	apiVersionPattern = regexp.MustCompile(`^(\d{4}-\d{2}|unstable)$`)
)

// LookupFunc retrieves the value of an environment variable, reporting whether it was set.
// os.LookupEnv satisfies this signature.
type LookupFunc func(key string) (string, bool)

// Config is the complete service configuration.
type Config struct {
	App     AppConfig
	Shopify ShopifyConfig
}

// AppConfig describes the running application.
type AppConfig struct {
	Name   string
	Domain string
	APIKey string
}

// ShopifyConfig holds the credentials and tuning for the Shopify Admin API.
type ShopifyConfig struct {
	StoreName      string
	APIKey         string
	APISecret      string
	AccessToken    string
	APIVersion     string
	RequestTimeout time.Duration
}

// Load reads the optional dotenv file at envFile, then builds and validates Config from the process environment.
// A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	return FromEnv(os.LookupEnv)
}

// LoadEnvFile loads variables from a dotenv file without overriding variables that are already set.
// Empty paths and missing files are ignored.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: loading env file '%s': %w", errors.ErrInvalidConfig, path, err)
	}

	return nil
}

// FromEnv builds a validated Config using lookup to resolve environment variables.
func FromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function cannot be nil")
	}

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		App: AppConfig{
			Name:   get(EnvAppName),
			Domain: get(EnvAppDomain),
			APIKey: get(EnvAPIKey),
		},
		Shopify: ShopifyConfig{
			StoreName:      get(EnvShopifyStoreName),
			APIKey:         get(EnvShopifyAPIKey),
			APISecret:      get(EnvShopifyAPISecret),
			AccessToken:    get(EnvShopifyAccessToken),
			APIVersion:     get(EnvShopifyAPIVersion),
			RequestTimeout: DefaultShopifyRequestTimeout,
		},
	}

	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = DefaultShopifyAPIVersion
	}

	if raw := get(EnvShopifyRequestTimeout); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, NewErrInvalidValue(EnvShopifyRequestTimeout, raw)
		}
		cfg.Shopify.RequestTimeout = time.Duration(seconds) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every required value is present and well-formed.
// Errors are keyed by environment variable name.
func (c Config) Validate() error {
	err := validation.Errors{
		EnvAppName:   validation.Validate(c.App.Name, validation.Required),
		EnvAppDomain: validation.Validate(c.App.Domain, validation.Required),
		EnvAPIKey:    validation.Validate(c.App.APIKey, validation.Required),
		EnvShopifyStoreName: validation.Validate(
			c.Shopify.StoreName,
			validation.Required,
			validation.Match(storeNamePattern).Error("must be a store subdomain, e.g. 'my-store'"),
		),
		EnvShopifyAPIKey:      validation.Validate(c.Shopify.APIKey, validation.Required),
		EnvShopifyAPISecret:   validation.Validate(c.Shopify.APISecret, validation.Required),
		EnvShopifyAccessToken: validation.Validate(c.Shopify.AccessToken, validation.Required),
		EnvShopifyAPIVersion: validation.Validate(
			c.Shopify.APIVersion,
			validation.Required,
			validation.Match(apiVersionPattern).Error("must look like 'YYYY-MM' or be 'unstable'"),
		),
		EnvShopifyRequestTimeout: validation.Validate(
			c.Shopify.RequestTimeout,
			validation.Required,
			validation.Min(time.Second).Error("must be at least 1 second"),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return nil
}
