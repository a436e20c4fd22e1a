package health

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/errors"
)

// fakeProber returns canned results, optionally blocking until its context is done.
type fakeProber struct {
	name    string
	ok      bool
	elapsed time.Duration
	err     error
	block   bool
	panics  bool
}

func (f *fakeProber) Name() string { return f.name }

func (f *fakeProber) Probe(ctx context.Context) (bool, time.Duration, error) {
	if f.panics {
		panic("boom")
	}
	if f.block {
		start := time.Now()
		<-ctx.Done()
		return false, time.Since(start), fmt.Errorf("%w: %w", errors.ErrProbeTimeout, ctx.Err())
	}
	return f.ok, f.elapsed, f.err
}

// staticProber has value receivers, so it is stored in the interface as a struct.
type staticProber struct {
	name string
	ok   bool
}

func (s staticProber) Name() string { return s.name }

func (s staticProber) Probe(context.Context) (bool, time.Duration, error) {
	return s.ok, time.Millisecond, nil
}

// sleepyProber ignores its context and returns healthy after sleeping.
type sleepyProber struct {
	name  string
	sleep time.Duration
}

func (s *sleepyProber) Name() string { return s.name }

func (s *sleepyProber) Probe(context.Context) (bool, time.Duration, error) {
	time.Sleep(s.sleep)
	return true, s.sleep, nil
}

type valueRecorder struct{}

func (valueRecorder) ObserveProbe(string, bool, *time.Duration) {}

type recordedProbe struct {
	service string
	ok      bool
	elapsed *time.Duration
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []recordedProbe
}

func (r *fakeRecorder) ObserveProbe(service string, ok bool, elapsed *time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedProbe{service: service, ok: ok, elapsed: elapsed})
}

func TestNewAggregator_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		logger  hclog.Logger
		appName string
		probers []contracts.Prober
		opts    []Option
		wantErr string
	}{
		{
			name:    "nil logger",
			appName: "app",
			wantErr: "logger cannot be nil",
		},
		{
			name:    "empty app name",
			logger:  hclog.NewNullLogger(),
			wantErr: "app name cannot be empty",
		},
		{
			name:    "nil prober",
			logger:  hclog.NewNullLogger(),
			appName: "app",
			probers: []contracts.Prober{(*fakeProber)(nil)},
			wantErr: "prober at index 0 cannot be nil",
		},
		{
			name:    "unnamed prober",
			logger:  hclog.NewNullLogger(),
			appName: "app",
			probers: []contracts.Prober{&fakeProber{name: ""}},
			wantErr: "prober at index 0 has an empty name",
		},
		{
			name:    "invalid timeout",
			logger:  hclog.NewNullLogger(),
			appName: "app",
			opts:    []Option{WithProbeTimeout(0)},
			wantErr: "probe timeout must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewAggregator(tc.logger, tc.appName, "1.0.0", tc.probers, tc.opts...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewAggregator_AcceptsValueReceivers(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{staticProber{name: "static", ok: true}},
		WithRecorder(valueRecorder{}),
	)
	require.NoError(t, err)

	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Len(t, details.Services, 1)
	require.True(t, details.Services[0].OK)
}

func TestAggregator_Details_Healthy(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"backend-integration",
		"1.2.3",
		[]contracts.Prober{&fakeProber{name: "shop", ok: true, elapsed: 42 * time.Millisecond}},
	)
	require.NoError(t, err)

	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Equal(t, "backend-integration", details.AppName)
	require.Equal(t, "1.2.3", details.Version)
	require.Len(t, details.Services, 1)

	status := details.Services[0]
	require.Equal(t, "shop", status.Name)
	require.True(t, status.OK)
	require.NotNil(t, status.Elapsed)
	require.Equal(t, 42*time.Millisecond, *status.Elapsed)
}

func TestAggregator_Details_PreservesOrderAndIsolatesFailures(t *testing.T) {
	t.Parallel()

	probers := []contracts.Prober{
		&fakeProber{name: "first", ok: true, elapsed: 30 * time.Millisecond},
		&fakeProber{name: "second", err: fmt.Errorf("%w: connection refused", errors.ErrProbeFailed), elapsed: time.Millisecond},
		&fakeProber{name: "third", block: true},
		&fakeProber{name: "fourth", ok: true, elapsed: -5 * time.Millisecond},
	}

	rec := &fakeRecorder{}
	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		probers,
		WithProbeTimeout(20*time.Millisecond),
		WithRecorder(rec),
	)
	require.NoError(t, err)

	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Len(t, details.Services, len(probers))

	for i, p := range probers {
		require.Equal(t, p.Name(), details.Services[i].Name)
	}

	require.True(t, details.Services[0].OK)
	require.False(t, details.Services[1].OK)
	require.False(t, details.Services[2].OK)
	require.NotNil(t, details.Services[2].Elapsed)
	require.True(t, details.Services[3].OK)

	for _, s := range details.Services {
		require.NotNil(t, s.Elapsed)
		require.GreaterOrEqual(t, *s.Elapsed, time.Duration(0), "service %s reported a negative duration", s.Name)
	}

	require.Len(t, rec.records, len(probers))
}

func TestAggregator_Details_NotAttemptedOmitsElapsed(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{
			&fakeProber{name: "broken", ok: true, err: fmt.Errorf("%w: bad url", errors.ErrProbeNotAttempted)},
		},
	)
	require.NoError(t, err)

	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Len(t, details.Services, 1)
	require.False(t, details.Services[0].OK)
	require.Nil(t, details.Services[0].Elapsed)
}

func TestAggregator_Details_NoProbers(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(hclog.NewNullLogger(), "app", "dev", nil)
	require.NoError(t, err)

	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Empty(t, details.Services)
}

func TestAggregator_Details_PanicIsAggregationFailure(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{&fakeProber{name: "ok", ok: true}, &fakeProber{name: "panics", panics: true}},
	)
	require.NoError(t, err)

	_, err = agg.Details(context.Background())
	require.Error(t, err)
	require.True(t, stdErrors.Is(err, errors.ErrAggregationFailed))
	require.Contains(t, err.Error(), "panics")
}

func TestAggregator_Details_ProbesRunConcurrently(t *testing.T) {
	t.Parallel()

	probers := make([]contracts.Prober, 0, 5)
	for i := range 5 {
		probers = append(probers, &fakeProber{name: fmt.Sprintf("slow-%d", i), block: true})
	}

	agg, err := NewAggregator(hclog.NewNullLogger(), "app", "dev", probers, WithProbeTimeout(100*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Len(t, details.Services, 5)
	require.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestAggregator_Services(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{&fakeProber{name: "b"}, &fakeProber{name: "a"}},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, agg.Services())
}

func TestAggregator_Details_TimeoutEnforcedWhenContextIgnored(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{
			&sleepyProber{name: "stubborn", sleep: 2 * time.Second},
			&fakeProber{name: "fast", ok: true, elapsed: time.Millisecond},
		},
		WithProbeTimeout(100*time.Millisecond),
		WithRecorder(rec),
	)
	require.NoError(t, err)

	start := time.Now()
	details, err := agg.Details(context.Background())
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)

	require.Len(t, details.Services, 2)
	stubborn := details.Services[0]
	require.Equal(t, "stubborn", stubborn.Name)
	require.False(t, stubborn.OK)
	require.NotNil(t, stubborn.Elapsed)
	require.GreaterOrEqual(t, *stubborn.Elapsed, 100*time.Millisecond)
	require.True(t, details.Services[1].OK)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.records, 2)
}

func TestAggregator_Details_CanceledRequestIsUnhealthy(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(
		hclog.NewNullLogger(),
		"app",
		"dev",
		[]contracts.Prober{&sleepyProber{name: "stubborn", sleep: 2 * time.Second}},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	details, err := agg.Details(ctx)
	require.NoError(t, err)
	require.Len(t, details.Services, 1)
	require.False(t, details.Services[0].OK)
}
