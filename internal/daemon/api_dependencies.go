package daemon

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/storefront-labs/backend-integration/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8000").
	Addr string

	// HealthReporter produces the health details served by the API.
	HealthReporter contracts.HealthReporter

	// MetricsHandler serves Prometheus metrics.
	MetricsHandler http.Handler

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	reporter contracts.HealthReporter,
	metricsHandler http.Handler,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:           addr,
		HealthReporter: reporter,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := IsValidAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if contracts.IsNil(d.HealthReporter) {
		return fmt.Errorf("health reporter cannot be nil")
	}
	if d.MetricsHandler == nil {
		return fmt.Errorf("metrics handler cannot be nil")
	}
	if contracts.IsNil(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
