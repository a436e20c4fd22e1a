package health

import (
	"fmt"
	"time"

	"github.com/storefront-labs/backend-integration/internal/contracts"
)

// Options contains optional configuration for the Aggregator.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ProbeTimeout bounds each individual probe.
	ProbeTimeout time.Duration

	// Recorder receives every probe outcome.
	Recorder contracts.ProbeRecorder
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with defaults, then applies options in order.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		ProbeTimeout: DefaultProbeTimeout(),
		Recorder:     noopRecorder{},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithProbeTimeout configures how long a single probe may take before it is reported as failed.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.ProbeTimeout = timeout
		return nil
	}
}

// WithRecorder configures where probe outcomes are recorded.
func WithRecorder(r contracts.ProbeRecorder) Option {
	return func(o *Options) error {
		if contracts.IsNil(r) {
			return fmt.Errorf("probe recorder cannot be nil")
		}
		o.Recorder = r
		return nil
	}
}

// DefaultProbeTimeout is the default upper bound for a single probe.
func DefaultProbeTimeout() time.Duration {
	return 15 * time.Second
}

type noopRecorder struct{}

func (noopRecorder) ObserveProbe(string, bool, *time.Duration) {}
