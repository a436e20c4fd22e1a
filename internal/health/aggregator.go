// Package health aggregates connectivity probes against downstream services into a single report.
package health

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/domain"
	"github.com/storefront-labs/backend-integration/internal/errors"
)

var _ contracts.HealthReporter = (*Aggregator)(nil)

// Aggregator probes every configured downstream service on each call to Details.
// NewAggregator should be used to create instances of Aggregator.
type Aggregator struct {
	logger       hclog.Logger
	appName      string
	version      string
	probers      []contracts.Prober
	probeTimeout time.Duration
	recorder     contracts.ProbeRecorder
}

// NewAggregator creates an Aggregator over the given probers.
// Reported statuses keep the order of probers.
func NewAggregator(
	logger hclog.Logger,
	appName string,
	version string,
	probers []contracts.Prober,
	opt ...Option,
) (*Aggregator, error) {
	if contracts.IsNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if strings.TrimSpace(appName) == "" {
		return nil, fmt.Errorf("app name cannot be empty")
	}
	for i, p := range probers {
		if contracts.IsNil(p) {
			return nil, fmt.Errorf("prober at index %d cannot be nil", i)
		}
		if strings.TrimSpace(p.Name()) == "" {
			return nil, fmt.Errorf("prober at index %d has an empty name", i)
		}
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator options: %w", err)
	}

	return &Aggregator{
		logger:       logger.Named("health"),
		appName:      appName,
		version:      version,
		probers:      append([]contracts.Prober(nil), probers...),
		probeTimeout: opts.ProbeTimeout,
		recorder:     opts.Recorder,
	}, nil
}

// Details runs one probe per configured service concurrently and waits for all of them.
// A failing probe is reported as an unhealthy service, it never fails the aggregate.
func (a *Aggregator) Details(ctx context.Context) (domain.HealthDetails, error) {
	statuses := make([]domain.ServiceStatus, len(a.probers))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range a.probers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: prober '%s' panicked: %v", errors.ErrAggregationFailed, p.Name(), r)
				}
			}()

			status, err := a.probe(gCtx, p)
			if err != nil {
				return err
			}
			statuses[i] = status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("Health aggregation failed", "error", err)
		return domain.HealthDetails{}, err
	}

	return domain.HealthDetails{
		AppName:  a.appName,
		Version:  a.version,
		Services: statuses,
	}, nil
}

// probeResult is the outcome of a single call to Prober.Probe.
type probeResult struct {
	ok       bool
	elapsed  time.Duration
	err      error
	panicked any
}

// probe runs a single prober under the probe timeout and converts its outcome to a status.
// The call is abandoned once the timeout expires, even if the prober ignores its context.
// An error is only returned when the prober panicked.
func (a *Aggregator) probe(ctx context.Context, p contracts.Prober) (domain.ServiceStatus, error) {
	name := p.Name()

	probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan probeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- probeResult{panicked: r}
			}
		}()

		ok, elapsed, err := p.Probe(probeCtx)
		done <- probeResult{ok: ok, elapsed: elapsed, err: err}
	}()

	var res probeResult
	select {
	case res = <-done:
		if res.panicked != nil {
			return domain.ServiceStatus{}, fmt.Errorf(
				"%w: prober '%s' panicked: %v", errors.ErrAggregationFailed, name, res.panicked,
			)
		}
		// A result that arrives after the deadline is still a timeout.
		if res.err == nil && probeCtx.Err() != nil {
			res = probeResult{elapsed: res.elapsed, err: deadlineError(probeCtx)}
		}
	case <-probeCtx.Done():
		res = probeResult{elapsed: time.Since(start), err: deadlineError(probeCtx)}
	}

	status := domain.ServiceStatus{Name: name, OK: res.ok && res.err == nil}
	elapsed := max(res.elapsed, 0)
	if !stdErrors.Is(res.err, errors.ErrProbeNotAttempted) {
		status.Elapsed = &elapsed
	}

	if res.err != nil {
		a.logger.Warn("Downstream probe failed", "service", name, "elapsed", elapsed, "error", res.err)
	} else {
		a.logger.Debug("Downstream probe completed", "service", name, "ok", res.ok, "elapsed", elapsed)
	}

	a.recorder.ObserveProbe(name, status.OK, status.Elapsed)

	return status, nil
}

// deadlineError describes why ctx ended: the probe timeout, or cancellation of the request.
func deadlineError(ctx context.Context) error {
	if stdErrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", errors.ErrProbeTimeout, ctx.Err())
	}
	return fmt.Errorf("%w: %w", errors.ErrProbeFailed, ctx.Err())
}

// Services returns the names of the probed services in report order.
func (a *Aggregator) Services() []string {
	names := make([]string, 0, len(a.probers))
	for _, p := range a.probers {
		names = append(names, p.Name())
	}
	return names
}
