package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	apimw "github.com/hamed0406/ruok/internal/httpapi/middleware"
	"github.com/hamed0406/ruok/internal/metrics"
	"github.com/hamed0406/ruok/internal/repo/memory"
)

// ---- test helpers ----

var testServices = domain.Services{
	"api": {Name: "api", URL: "https://api.example.com/health", Interval: 2 * time.Second, Notifications: []string{"ops"}},
	"web": {Name: "web", URL: "https://example.com", Interval: time.Second},
}

func setupServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New(testServices.Names())
	reg := prometheus.NewRegistry()
	metrics.New(reg).SetState("api", domain.Up)

	srv := NewServer(zap.NewNop(), testServices, store, reg)
	// very high rate limits to avoid flakiness in tests
	h := srv.Router(apimw.Keys{Public: []string{"pub_test"}}, nil, 10_000, 10_000)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, store
}

func get(t *testing.T, url, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ---- tests ----

func TestListServices(t *testing.T) {
	ts, store := setupServer(t)
	_, err := store.Transition(context.Background(), "api", domain.Down, nil)
	require.NoError(t, err)

	resp := get(t, ts.URL+"/api/services", "pub_test")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []serviceView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)

	require.Equal(t, "api", list[0].Name)
	require.Equal(t, domain.Down, list[0].State)
	require.Equal(t, "2s", list[0].Interval)
	require.Equal(t, []string{"ops"}, list[0].Notifications)
	require.NotNil(t, list[0].CheckedAt)
	require.NotNil(t, list[0].ChangedAt)

	require.Equal(t, "web", list[1].Name)
	require.Equal(t, domain.Up, list[1].State)
	require.Nil(t, list[1].CheckedAt)
	require.Equal(t, []string{}, list[1].Notifications)
}

func TestGetService(t *testing.T) {
	ts, _ := setupServer(t)

	resp := get(t, ts.URL+"/api/services/web", "pub_test")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v serviceView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	require.Equal(t, "https://example.com", v.URL)

	resp = get(t, ts.URL+"/api/services/ghost", "pub_test")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthAndOpenRoutes(t *testing.T) {
	ts, _ := setupServer(t)

	require.Equal(t, http.StatusUnauthorized, get(t, ts.URL+"/api/services", "").StatusCode)
	require.Equal(t, http.StatusOK, get(t, ts.URL+"/healthz", "").StatusCode)

	resp := get(t, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ruok_service_up")
}
