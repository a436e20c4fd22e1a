package probe

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/backend-integration/internal/errors"
)

func TestNewHTTPProber_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prober  string
		target  string
		opts    []HTTPOption
		wantErr string
	}{
		{name: "empty name", prober: " ", target: "http://localhost", wantErr: "prober name cannot be empty"},
		{name: "unsupported scheme", prober: "db", target: "ftp://localhost", wantErr: "unsupported scheme"},
		{name: "missing scheme", prober: "db", target: "localhost:8080", wantErr: "invalid target URL"},
		{
			name:    "bad method",
			prober:  "db",
			target:  "http://localhost",
			opts:    []HTTPOption{WithMethod("DELETE")},
			wantErr: "unsupported probe method",
		},
		{
			name:    "bad expected status",
			prober:  "db",
			target:  "http://localhost",
			opts:    []HTTPOption{WithExpectedStatus(42)},
			wantErr: "invalid expected status",
		},
		{
			name:    "bad timeout",
			prober:  "db",
			target:  "http://localhost",
			opts:    []HTTPOption{WithTimeout(-time.Second)},
			wantErr: "timeout must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewHTTPProber(tc.prober, tc.target, tc.opts...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestHTTPProber_Probe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		opts       []HTTPOption
		wantOK     bool
		wantMethod string
	}{
		{name: "ok", status: http.StatusOK, wantOK: true, wantMethod: http.MethodGet},
		{name: "redirect accepted", status: http.StatusNotModified, wantOK: true, wantMethod: http.MethodGet},
		{name: "server error", status: http.StatusServiceUnavailable, wantOK: false, wantMethod: http.MethodGet},
		{
			name:       "exact status match",
			status:     http.StatusNoContent,
			opts:       []HTTPOption{WithExpectedStatus(http.StatusNoContent), WithMethod("head")},
			wantOK:     true,
			wantMethod: http.MethodHead,
		},
		{
			name:       "exact status mismatch",
			status:     http.StatusOK,
			opts:       []HTTPOption{WithExpectedStatus(http.StatusNoContent)},
			wantOK:     false,
			wantMethod: http.MethodGet,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotMethod string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				w.WriteHeader(tc.status)
			}))
			defer ts.Close()

			p, err := NewHTTPProber("inventory", ts.URL+"/healthz", tc.opts...)
			require.NoError(t, err)
			require.Equal(t, "inventory", p.Name())

			ok, elapsed, err := p.Probe(context.Background())
			require.Equal(t, tc.wantOK, ok)
			require.GreaterOrEqual(t, elapsed, time.Duration(0))
			require.Equal(t, tc.wantMethod, gotMethod)
			if tc.wantOK {
				require.NoError(t, err)
			} else {
				require.True(t, stdErrors.Is(err, errors.ErrProbeFailed), "unexpected error: %v", err)
			}
		})
	}
}

func TestHTTPProber_Timeout(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	p, err := NewHTTPProber("slow", ts.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	ok, elapsed, err := p.Probe(context.Background())
	require.False(t, ok)
	require.True(t, stdErrors.Is(err, errors.ErrProbeTimeout), "unexpected error: %v", err)
	require.Greater(t, elapsed, time.Duration(0))
}
