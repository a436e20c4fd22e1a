// Package daemon wires configuration, downstream probers and the HTTP API into a running service.
package daemon

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/storefront-labs/backend-integration/internal/cmd"
	"github.com/storefront-labs/backend-integration/internal/config"
	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/health"
	"github.com/storefront-labs/backend-integration/internal/metrics"
	"github.com/storefront-labs/backend-integration/internal/probe"
	"github.com/storefront-labs/backend-integration/internal/shopify"
)

// Daemon owns the API server and everything it needs to answer health requests.
type Daemon struct {
	logger     hclog.Logger
	apiServer  *APIServer
	aggregator *health.Aggregator
}

// NewDaemon builds the probers for every configured downstream service and the API server exposing them.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	probers, err := newProbers(deps.Logger, deps.Config, deps.Services, opts)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	aggregator, err := health.NewAggregator(
		deps.Logger,
		deps.Config.App.Name,
		cmd.Version(),
		probers,
		health.WithProbeTimeout(deps.Config.Shopify.RequestTimeout),
		health.WithRecorder(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health aggregator: %w", err)
	}

	apiDeps, err := NewAPIDependencies(deps.Logger, aggregator, m.Handler(), deps.APIAddr)
	if err != nil {
		return nil, err
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}

	return &Daemon{
		logger:     deps.Logger.Named("daemon"),
		apiServer:  apiServer,
		aggregator: aggregator,
	}, nil
}

// StartAndManage serves the API until ctx is canceled.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	d.logger.Info("Starting daemon", "services", d.aggregator.Services())
	return d.apiServer.Start(ctx)
}

// newProbers returns the Shopify store prober followed by one HTTP prober per configured service.
func newProbers(
	logger hclog.Logger,
	cfg config.Config,
	services []config.Dependency,
	opts Options,
) ([]contracts.Prober, error) {
	shopifyOpts := []shopify.Option{
		shopify.WithAPIVersion(cfg.Shopify.APIVersion),
		shopify.WithTimeout(cfg.Shopify.RequestTimeout),
	}
	if opts.ShopifyBaseURL != "" {
		shopifyOpts = append(shopifyOpts, shopify.WithBaseURL(opts.ShopifyBaseURL))
	}

	store, err := shopify.NewClient(logger, cfg.Shopify.StoreName, cfg.Shopify.AccessToken, shopifyOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Shopify client: %w", err)
	}

	probers := make([]contracts.Prober, 0, len(services)+1)
	probers = append(probers, store)

	seen := map[string]struct{}{store.Name(): {}}
	for _, s := range services {
		name := strings.TrimSpace(s.Name)
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("service name '%s' is already in use", name)
		}
		seen[name] = struct{}{}

		p, err := probe.NewHTTPProber(
			name,
			s.URL,
			probe.WithMethod(s.Method),
			probe.WithExpectedStatus(s.ExpectedStatus),
			probe.WithTimeout(cfg.Shopify.RequestTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create prober for '%s': %w", s.Name, err)
		}
		probers = append(probers, p)
	}

	return probers, nil
}
