package api

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/storefront-labs/backend-integration/internal/contracts"
)

// Title is the API title used in the OpenAPI document.
const Title = "Backend Integration - API"

// NewConfig returns the Huma configuration shared by the server and the documentation export.
// Response bodies are kept free of the '$schema' link Huma adds by default.
func NewConfig(version string) huma.Config {
	config := huma.DefaultConfig(Title, version)
	config.CreateHooks = nil
	config.Info.Description = "Health of the backend integration service and the downstream platforms it depends on."

	return config
}

// NewRouter creates a Huma API on top of the provided chi router.
func NewRouter(mux chi.Router, version string) huma.API {
	return humachi.New(mux, NewConfig(version))
}

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
func RegisterRoutes(router huma.API, reporter contracts.HealthReporter) error {
	if contracts.IsNil(router) {
		return fmt.Errorf("router cannot be nil")
	}
	if contracts.IsNil(reporter) {
		return fmt.Errorf("health reporter cannot be nil")
	}

	RegisterHealthRoutes(router, reporter, "/health")

	return nil
}
