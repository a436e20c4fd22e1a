// Package probe contains connectivity checks for downstream services that are reachable over plain HTTP.
package probe

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront-labs/backend-integration/internal/errors"
)

// maxDrainBytes caps how much of a response body is read before the connection is released.
const maxDrainBytes = 64 << 10

// HTTPProber checks a downstream service by issuing a single HTTP request against it.
// NewHTTPProber should be used to create instances of HTTPProber.
type HTTPProber struct {
	name           string
	target         string
	method         string
	expectedStatus int
	client         *http.Client
}

// HTTPOption defines a functional option for configuring an HTTPProber.
type HTTPOption func(*HTTPProber) error

// NewHTTPProber creates a prober for the given absolute URL.
// By default a GET request is sent and any 2xx or 3xx status counts as healthy.
func NewHTTPProber(name string, target string, opt ...HTTPOption) (*HTTPProber, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("prober name cannot be empty")
	}

	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, fmt.Errorf("invalid target URL for '%s': %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid target URL for '%s': unsupported scheme %q", name, u.Scheme)
	}

	p := &HTTPProber{
		name:   name,
		target: u.String(),
		method: http.MethodGet,
		client: &http.Client{Timeout: DefaultTimeout},
	}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// DefaultTimeout is the request timeout used when WithTimeout is not supplied.
const DefaultTimeout = 15 * time.Second

// WithMethod sets the HTTP method used for the probe.
func WithMethod(method string) HTTPOption {
	return func(p *HTTPProber) error {
		method = strings.ToUpper(strings.TrimSpace(method))
		switch method {
		case "":
			return nil
		case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions:
			p.method = method
			return nil
		default:
			return fmt.Errorf("unsupported probe method: %s", method)
		}
	}
}

// WithExpectedStatus requires an exact status code for the probe to be considered healthy.
// Zero restores the default of accepting any 2xx or 3xx status.
func WithExpectedStatus(code int) HTTPOption {
	return func(p *HTTPProber) error {
		if code != 0 && (code < 100 || code > 599) {
			return fmt.Errorf("invalid expected status: %d", code)
		}
		p.expectedStatus = code
		return nil
	}
}

// WithTimeout bounds each probe request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProber) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		p.client.Timeout = timeout
		return nil
	}
}

// WithClient replaces the HTTP client used for probing.
func WithClient(c *http.Client) HTTPOption {
	return func(p *HTTPProber) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		p.client = c
		return nil
	}
}

// Name returns the configured service name.
func (p *HTTPProber) Name() string {
	return p.name
}

// Probe implements contracts.Prober.
func (p *HTTPProber) Probe(ctx context.Context) (bool, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, p.method, p.target, nil)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %s: %w", errors.ErrProbeNotAttempted, p.name, err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		if isTimeout(err) {
			return false, elapsed, fmt.Errorf("%w: %s: %w", errors.ErrProbeTimeout, p.name, err)
		}
		return false, elapsed, fmt.Errorf("%w: %s: %w", errors.ErrProbeFailed, p.name, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
	elapsed := time.Since(start)

	if !p.acceptable(resp.StatusCode) {
		return false, elapsed, fmt.Errorf("%w: %s: unexpected status %d", errors.ErrProbeFailed, p.name, resp.StatusCode)
	}

	return true, elapsed, nil
}

func (p *HTTPProber) acceptable(code int) bool {
	if p.expectedStatus != 0 {
		return code == p.expectedStatus
	}
	return code >= 200 && code < 400
}

func isTimeout(err error) bool {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stdErrors.As(err, &netErr) && netErr.Timeout()
}
