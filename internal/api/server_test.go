package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"webmonitor/internal/monitor"
)

type fakeSource struct {
	snap monitor.Snapshot
}

func (f *fakeSource) Snapshot() monitor.Snapshot { return f.snap }

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusReturnsSchedulerSnapshot(t *testing.T) {
	t.Parallel()

	source := &fakeSource{snap: monitor.Snapshot{
		Running:       true,
		Iterations:    7,
		LastRunAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastTotal:     3,
		LastSucceeded: 2,
		LastFailed:    1,
	}}
	srv := NewServer(":0", source, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got monitor.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, source.snap, got)
}

func TestMetricsEndpointIsWired(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}
