package contracts

import (
	"context"
	"time"

	"github.com/storefront-labs/backend-integration/internal/domain"
)

// Prober is a connectivity check against a single downstream service.
type Prober interface {
	// Name returns the human-readable identifier of the checked service.
	Name() string

	// Probe performs one connectivity check.
	// ok is only meaningful when err is nil, elapsed is the wall time spent on the call (also on failure).
	Probe(ctx context.Context) (ok bool, elapsed time.Duration, err error)
}

// HealthReporter produces health details for all configured downstream services.
type HealthReporter interface {
	Details(ctx context.Context) (domain.HealthDetails, error)
}

// ProbeRecorder records probe outcomes, e.g. as metrics.
type ProbeRecorder interface {
	ObserveProbe(service string, ok bool, elapsed *time.Duration)
}
