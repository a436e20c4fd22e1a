// Package shopify provides a minimal Shopify Admin API client used to verify connectivity to a store.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/errors"
)

const (
	// DefaultAPIVersion is the Admin API version the client targets.
	DefaultAPIVersion = "2025-07"

	// DefaultTimeout is used when no timeout is configured.
	DefaultTimeout = 15 * time.Second

	// HeaderAccessToken is the header carrying the Admin API access token.
	HeaderAccessToken = "X-Shopify-Access-Token"

	// shopQuery is the cheapest authenticated query available on the Admin API.
	shopQuery = "{ shop { name } }"

	// maxErrorBodyBytes limits how much of an error response is kept for logging.
	maxErrorBodyBytes = 512
)

// ConnectionResult is the outcome of Client.TestConnection.
type ConnectionResult struct {
	Result      bool
	ElapsedTime time.Duration
}

var _ contracts.Prober = (*Client)(nil)

// Client talks to the Admin API of a single store.
// NewClient should be used to create instances of Client.
type Client struct {
	logger      hclog.Logger
	storeName   string
	accessToken string
	apiVersion  string
	endpoint    string
	httpClient  *http.Client
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data struct {
		Shop *struct {
			Name string `json:"name"`
		} `json:"shop"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient creates a client for the given store, authenticating with an Admin API access token.
func NewClient(logger hclog.Logger, storeName string, accessToken string, opt ...Option) (*Client, error) {
	if contracts.IsNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return nil, fmt.Errorf("store name cannot be empty")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.myshopify.com", storeName)
	}

	endpoint, err := url.JoinPath(baseURL, "admin", "api", opts.APIVersion, "graphql.json")
	if err != nil {
		return nil, fmt.Errorf("failed to construct Admin API endpoint: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		logger:      logger.Named("shopify"),
		storeName:   storeName,
		accessToken: accessToken,
		apiVersion:  opts.APIVersion,
		endpoint:    endpoint,
		httpClient:  httpClient,
	}, nil
}

// StoreName returns the store the client is bound to.
func (c *Client) StoreName() string {
	return c.storeName
}

// Name returns the service name used when reporting the health of this store.
func (c *Client) Name() string {
	return "Shopify API Connection: " + c.storeName
}

// Probe implements contracts.Prober by testing the connection to the store.
func (c *Client) Probe(ctx context.Context) (bool, time.Duration, error) {
	res, err := c.TestConnection(ctx)
	return res.Result, res.ElapsedTime, err
}

// TestConnection issues an authenticated shop query and reports whether it succeeded and how long it took.
// ElapsedTime is populated whenever the request was sent, including when it failed.
func (c *Client) TestConnection(ctx context.Context) (ConnectionResult, error) {
	payload, err := json.Marshal(graphQLRequest{Query: shopQuery})
	if err != nil {
		return ConnectionResult{}, fmt.Errorf("%w: encoding query: %w", errors.ErrProbeNotAttempted, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return ConnectionResult{}, fmt.Errorf("%w: building request: %w", errors.ErrProbeNotAttempted, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAccessToken, c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		res := ConnectionResult{ElapsedTime: time.Since(start)}
		if isTimeout(err) {
			return res, fmt.Errorf("%w: %s: %w", errors.ErrProbeTimeout, c.storeName, err)
		}
		return res, fmt.Errorf("%w: %s: %w", errors.ErrProbeFailed, c.storeName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	res := ConnectionResult{ElapsedTime: time.Since(start)}
	if err != nil {
		if isTimeout(err) {
			return res, fmt.Errorf("%w: %s: reading response: %w", errors.ErrProbeTimeout, c.storeName, err)
		}
		return res, fmt.Errorf("%w: %s: reading response: %w", errors.ErrProbeFailed, c.storeName, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return res, fmt.Errorf("%w: %s: status %d", errors.ErrUnauthorized, c.storeName, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Debug("Unexpected Admin API response", "status", resp.StatusCode, "body", truncate(body))
		return res, fmt.Errorf("%w: %s: status %d", errors.ErrProbeFailed, c.storeName, resp.StatusCode)
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return res, fmt.Errorf("%w: %s: decoding response: %w", errors.ErrProbeFailed, c.storeName, err)
	}
	if len(gqlResp.Errors) > 0 {
		return res, fmt.Errorf("%w: %s: %s", errors.ErrProbeFailed, c.storeName, gqlResp.Errors[0].Message)
	}
	if gqlResp.Data.Shop == nil {
		return res, fmt.Errorf("%w: %s: response missing shop", errors.ErrProbeFailed, c.storeName)
	}

	c.logger.Trace("Connection test succeeded", "shop", gqlResp.Data.Shop.Name, "elapsed", res.ElapsedTime)
	res.Result = true

	return res, nil
}

func isTimeout(err error) bool {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stdErrors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte) string {
	if len(b) > maxErrorBodyBytes {
		return string(b[:maxErrorBodyBytes]) + "..."
	}
	return string(b)
}
