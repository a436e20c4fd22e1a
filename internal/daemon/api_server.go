package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/storefront-labs/backend-integration/internal/api"
	"github.com/storefront-labs/backend-integration/internal/cmd"
	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/errors"
)

// MetricsPath is where Prometheus metrics are served. It is not part of the OpenAPI document.
const MetricsPath = "/metrics"

// APIServer manages the HTTP API for the daemon.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// HealthReporter produces health details for downstream services.
	healthReporter contracts.HealthReporter

	// MetricsHandler serves Prometheus metrics.
	metricsHandler http.Handler

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration

	// ReadHeaderTimeout bounds how long clients may take to send request headers.
	readHeaderTimeout time.Duration
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	return &APIServer{
		logger:            deps.Logger.Named("api"),
		healthReporter:    deps.HealthReporter,
		metricsHandler:    deps.MetricsHandler,
		addr:              deps.Addr,
		cors:              apiOpts.CORS,
		shutdownTimeout:   apiOpts.ShutdownTimeout,
		readHeaderTimeout: apiOpts.ReadHeaderTimeout,
	}, nil
}

// Handler builds the HTTP handler serving the API, its documentation and metrics.
func (a *APIServer) Handler() (http.Handler, error) {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)

	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	router := api.NewRouter(mux, cmd.Version())
	if err := api.RegisterRoutes(router, a.healthReporter); err != nil {
		return nil, fmt.Errorf("failed to register API routes: %w", err)
	}

	mux.Method(http.MethodGet, MetricsPath, a.metricsHandler)

	return mux, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.addr,
		Handler:           handler,
		ReadHeaderTimeout: a.readHeaderTimeout,
	}
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Starting API server", "address", a.addr)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		_ = srv.Shutdown(shutdownCtx)
		a.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   append([]string(nil), a.cors.AllowOrigins...),
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// Handle wildcard origins properly.
	for i, origin := range corsOptions.AllowedOrigins {
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// Probe errors are normally absorbed into an unhealthy service status and only reach this point
// if a handler chooses to surface them.
//
// Mapping guidelines:
//   - 502: External service/dependency failures
//   - 500: Unexpected internal errors (default case)
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrProbeTimeout):
		logger.Error("Downstream timed out", "error", err)
		return huma.Error502BadGateway("Downstream service timed out", err)
	case stdErrors.Is(err, errors.ErrUnauthorized):
		logger.Error("Downstream rejected credentials", "error", err)
		return huma.Error502BadGateway("Downstream service rejected credentials", err)
	case stdErrors.Is(err, errors.ErrProbeFailed):
		logger.Error("Downstream failure", "error", err)
		return huma.Error502BadGateway("Downstream service error", err)
	case stdErrors.Is(err, errors.ErrAggregationFailed):
		logger.Error("Health aggregation failed", "error", err)
		return huma.Error500InternalServerError("Failed to aggregate health details", err)
	default:
		logger.Error("Unexpected error handling request", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// Server-side failures are resolved through mapError with the supplied logger.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch {
		case status < http.StatusInternalServerError:
			// Request validation failures carry their own details.
			return huma.NewError(status, msg, errs...)
		case len(errs) == 0:
			return huma.NewError(status, msg)
		case len(errs) == 1:
			return mapError(logger, errs[0])
		default:
			return mapError(logger, stdErrors.Join(errs...))
		}
	}
}
