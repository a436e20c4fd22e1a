package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/backend-integration/internal/domain"
	"github.com/storefront-labs/backend-integration/internal/errors"
)

// fakeReporter implements the HealthReporter interface for testing.
type fakeReporter struct {
	details domain.HealthDetails
	err     error
	calls   int
}

func (f *fakeReporter) Details(_ context.Context) (domain.HealthDetails, error) {
	f.calls++
	return f.details, f.err
}

// staticReporter has a value receiver, so it is stored in the interface as a struct.
type staticReporter struct {
	details domain.HealthDetails
}

func (s staticReporter) Details(context.Context) (domain.HealthDetails, error) {
	return s.details, nil
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func newTestMux(t *testing.T, reporter *fakeReporter) *chi.Mux {
	t.Helper()

	mux := chi.NewMux()
	router := NewRouter(mux, "1.2.3")
	require.NoError(t, RegisterRoutes(router, reporter))

	return mux
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestDomainServiceStatus_ToAPIType(t *testing.T) {
	t.Parallel()

	int64Ptr := func(v int64) *int64 { return &v }

	tests := []struct {
		name  string
		input domain.ServiceStatus
		want  ServiceStatus
	}{
		{
			name:  "healthy with latency truncated to milliseconds",
			input: domain.ServiceStatus{Name: "shop", OK: true, Elapsed: durationPtr(87*time.Millisecond + 900*time.Microsecond)},
			want:  ServiceStatus{Name: "shop", IsOK: true, SpeedMS: int64Ptr(87)},
		},
		{
			name:  "sub-millisecond latency",
			input: domain.ServiceStatus{Name: "shop", OK: true, Elapsed: durationPtr(300 * time.Microsecond)},
			want:  ServiceStatus{Name: "shop", IsOK: true, SpeedMS: int64Ptr(0)},
		},
		{
			name:  "negative latency is clamped",
			input: domain.ServiceStatus{Name: "shop", OK: false, Elapsed: durationPtr(-time.Second)},
			want:  ServiceStatus{Name: "shop", IsOK: false, SpeedMS: int64Ptr(0)},
		},
		{
			name:  "not attempted",
			input: domain.ServiceStatus{Name: "shop", OK: false},
			want:  ServiceStatus{Name: "shop", IsOK: false},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, DomainServiceStatus(tc.input).ToAPIType())
		})
	}
}

func TestDomainHealthDetails_ToAPIType_EmptyListIsNotNull(t *testing.T) {
	t.Parallel()

	got := DomainHealthDetails(domain.HealthDetails{AppName: "app", Version: "dev"}).ToAPIType()
	require.NotNil(t, got.ServiceList)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `{"app_name":"app","version":"dev","service_list":[]}`, string(b))
}

func TestRegisterRoutes_Validation(t *testing.T) {
	t.Parallel()

	require.EqualError(t, RegisterRoutes(nil, &fakeReporter{}), "router cannot be nil")

	router := NewRouter(chi.NewMux(), "dev")
	require.EqualError(t, RegisterRoutes(router, nil), "health reporter cannot be nil")
	require.EqualError(t, RegisterRoutes(router, (*fakeReporter)(nil)), "health reporter cannot be nil")
}

func TestRegisterRoutes_ValueReporter(t *testing.T) {
	t.Parallel()

	mux := chi.NewMux()
	router := NewRouter(mux, "dev")
	require.NoError(t, RegisterRoutes(router, staticReporter{
		details: domain.HealthDetails{AppName: "app", Version: "dev"},
	}))

	rec := doGet(t, mux, "/health/details")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"app_name":"app","version":"dev","service_list":[]}`, rec.Body.String())
}

func TestLiveness_IndependentOfDownstream(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{err: fmt.Errorf("%w: everything is down", errors.ErrProbeFailed)}
	mux := newTestMux(t, reporter)

	rec := doGet(t, mux, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Zero(t, reporter.calls)
}

func TestHealthDetails_Healthy(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{details: domain.HealthDetails{
		AppName: "backend-integration",
		Version: "1.2.3",
		Services: []domain.ServiceStatus{
			{Name: "Shopify API Connection: my-store", OK: true, Elapsed: durationPtr(120 * time.Millisecond)},
		},
	}}
	mux := newTestMux(t, reporter)

	rec := doGet(t, mux, "/health/details")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"app_name": "backend-integration",
		"version": "1.2.3",
		"service_list": [
			{"name": "Shopify API Connection: my-store", "is_ok": true, "speed_ms": 120}
		]
	}`, rec.Body.String())
	require.Equal(t, 1, reporter.calls)
}

func TestHealthDetails_UnhealthyServicesStillReturn200(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{details: domain.HealthDetails{
		AppName: "backend-integration",
		Version: "1.2.3",
		Services: []domain.ServiceStatus{
			{Name: "shop", OK: false, Elapsed: durationPtr(15 * time.Second)},
			{Name: "inventory", OK: true, Elapsed: durationPtr(3 * time.Millisecond)},
			{Name: "broken", OK: false},
		},
	}}
	mux := newTestMux(t, reporter)

	rec := doGet(t, mux, "/health/details")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.ServiceList, 3)
	require.Equal(t, []string{"shop", "inventory", "broken"}, []string{
		body.ServiceList[0].Name, body.ServiceList[1].Name, body.ServiceList[2].Name,
	})
	require.False(t, body.ServiceList[0].IsOK)
	require.Equal(t, int64(15000), *body.ServiceList[0].SpeedMS)
	require.Nil(t, body.ServiceList[2].SpeedMS)
	require.NotContains(t, rec.Body.String(), `"speed_ms":null`)
}

func TestHealthDetails_AggregationErrorIs5xx(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{err: fmt.Errorf("%w: prober panicked", errors.ErrAggregationFailed)}
	mux := newTestMux(t, reporter)

	rec := doGet(t, mux, "/health/details")
	require.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)
}

func TestOpenAPI_DocumentsDetailsButNotLiveness(t *testing.T) {
	t.Parallel()

	router := NewRouter(chi.NewMux(), "1.2.3")
	require.NoError(t, RegisterRoutes(router, &fakeReporter{}))

	oapi := router.OpenAPI()
	require.Equal(t, Title, oapi.Info.Title)
	require.Equal(t, "1.2.3", oapi.Info.Version)
	require.Contains(t, oapi.Paths, "/health/details")
	require.NotContains(t, oapi.Paths, "/health")
}
