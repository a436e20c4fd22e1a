// Package errors defines domain-level errors used throughout the application.
// These errors represent failures of configuration, downstream probes and aggregation,
// and are mapped to HTTP status codes at the API boundary.
//
// NOTE: When adding a new error here, consider how it should be handled when returned from API endpoints.
// Unmapped errors default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrInvalidConfig indicates that required configuration is missing or malformed.
	// It is fatal at startup and never reaches an API handler.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrProbeNotAttempted indicates that a probe could not be issued at all,
	// e.g. because the request could not be constructed.
	// A status built from such a probe carries no elapsed time.
	ErrProbeNotAttempted = errors.New("probe not attempted")

	// The probe errors below classify why a downstream check failed. The health aggregator absorbs them
	// into an unhealthy service status, so no current endpoint returns them. Their 502 mappings in mapError
	// are reserved for endpoints that report a single downstream failure directly.

	// ErrProbeFailed indicates that a downstream service responded badly or the transport failed.
	ErrProbeFailed = errors.New("probe failed")

	// ErrProbeTimeout indicates that a downstream service did not answer within the probe timeout.
	ErrProbeTimeout = errors.New("probe timed out")

	// ErrUnauthorized indicates that a downstream service rejected the configured credentials.
	ErrUnauthorized = errors.New("downstream rejected credentials")

	// ErrAggregationFailed indicates an unexpected internal failure while assembling health details.
	// Recommended to map to HTTP 500 Internal Server Error.
	ErrAggregationFailed = errors.New("health aggregation failed")
)
