package daemon

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/storefront-labs/backend-integration/internal/config"
	"github.com/storefront-labs/backend-integration/internal/contracts"
)

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8000").
	APIAddr string

	// Logger for daemon and subcomponent (API server, probes) operations.
	Logger hclog.Logger

	// Config is the validated service configuration.
	Config config.Config

	// Services are additional downstream services probed after the Shopify store, in order.
	Services []config.Dependency
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	cfg config.Config,
	services []config.Dependency,
) (Dependencies, error) {
	deps := Dependencies{
		APIAddr:  apiAddr,
		Logger:   logger,
		Config:   cfg,
		Services: services,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if contracts.IsNil(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := IsValidAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if err := d.Config.Validate(); err != nil {
		return err
	}

	return nil
}
