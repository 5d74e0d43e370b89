package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchlog/core/internal/adapters/repository"
	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/config"
	"github.com/watchlog/core/internal/infrastructure/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "watchlog", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Port:           3001,
			Host:           "127.0.0.1",
			RequestTimeout: 5 * time.Second,
		},
		Storage:  config.StorageConfig{Driver: config.StorageDriverMemory},
		Security: config.SecurityConfig{CORSAllowedOrigins: "http://localhost:3000"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T) (*Server, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	srv, err := New(testConfig(), store, logger.NewNop())
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seriesBody(title string) string {
	return `{"titulo":"` + title + `","numeroTemporadas":3,"dataLancamentoTemporada":"2020-01-01",` +
		`"diretor":"D","produtora":"P","categoria":"Drama","dataAssistiu":"2021-05-05"}`
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(testConfig(), nil, logger.NewNop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestReadinessAndDetailedHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, h, http.MethodPost, "/series", seriesBody("Dark"))

	rec = do(t, h, http.MethodGet, "/health/detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"series":1`)
}

func TestSeriesLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/series", seriesBody("Dark"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var first entities.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 3, first.NumeroTemporadas)

	rec = do(t, h, http.MethodPost, "/series", seriesBody("Severance"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var second entities.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, 2, second.ID)

	rec = do(t, h, http.MethodPut, "/series/2", `{"numeroTemporadas":"4","categoria":"Sci-Fi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated entities.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 2, updated.ID)
	assert.Equal(t, 4, updated.NumeroTemporadas)
	assert.Equal(t, "Sci-Fi", updated.Categoria)
	assert.Equal(t, "Severance", updated.Titulo)

	rec = do(t, h, http.MethodDelete, "/series/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/series", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entities.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ID)

	rec = do(t, h, http.MethodGet, "/series/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/series", seriesBody("Fargo"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":3`)

	assert.Equal(t, 5, store.Writes())
}

func TestErrorBodies(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
		want   string
	}{
		{
			name:   "unknown series",
			method: http.MethodGet,
			target: "/series/42",
			code:   http.StatusNotFound,
			want:   `{"message":"series not found"}`,
		},
		{
			name:   "non numeric id",
			method: http.MethodDelete,
			target: "/series/abc",
			code:   http.StatusNotFound,
			want:   `{"message":"series not found"}`,
		},
		{
			name:   "unknown route",
			method: http.MethodGet,
			target: "/movies",
			code:   http.StatusNotFound,
			want:   `{"message":"Not Found"}`,
		},
		{
			name:   "malformed body",
			method: http.MethodPost,
			target: "/series",
			body:   `{"titulo"`,
			code:   http.StatusBadRequest,
			want:   `{"message":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestCreateValidationBody(t *testing.T) {
	srv, store := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/series", `{"titulo":"Dark","diretor":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Message string         `json:"message"`
		Campos  map[string]any `json:"campos"`
		Missing []string       `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "Dark", body.Campos["titulo"])
	assert.Contains(t, body.Missing, "diretor")
	assert.Contains(t, body.Missing, "dataAssistiu")
	assert.Zero(t, store.Writes())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/series", seriesBody("Dark"))
	do(t, h, http.MethodGet, "/series", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(out), "http_requests_total")
	assert.Contains(t, string(out), "watchlog_series_records 1")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	srv, err := New(cfg, repository.NewMemoryStore(), logger.NewNop())
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitRequests = 2
	cfg.Security.RateLimitWindow = time.Hour
	srv, err := New(cfg, repository.NewMemoryStore(), logger.NewNop())
	require.NoError(t, err)
	h := srv.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/series", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/series", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/series", "").Code)

	// health stays reachable
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}
