package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchlog/core/internal/adapters/repository"
	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/config"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/infrastructure/server"
)

func newAPI(t *testing.T) (*Client, *repository.MemoryStore) {
	t.Helper()

	cfg := &config.Config{
		App:      config.AppConfig{Name: "watchlog", Version: "test"},
		Storage:  config.StorageConfig{Driver: config.StorageDriverMemory},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
	}
	store := repository.NewMemoryStore()
	srv, err := server.New(cfg, store, logger.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(config.ClientConfig{BaseURL: ts.URL + "/", Timeout: 5 * time.Second}, nil), store
}

func sampleSeries(title string) entities.Series {
	return entities.Series{
		Titulo:                  title,
		NumeroTemporadas:        2,
		DataLancamentoTemporada: "2019-04-01",
		Diretor:                 "Jane Doe",
		Produtora:               "HBO",
		Categoria:               "Drama",
		DataAssistiu:            "2020-01-10",
	}
}

func TestClientCRUD(t *testing.T) {
	c, _ := newAPI(t)
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	created, err := c.Create(ctx, sampleSeries("Chernobyl"))
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	second, err := c.Create(ctx, sampleSeries("Succession"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	title := "Chernobyl (2019)"
	updated, err := c.Update(ctx, 1, entities.SeriesPatch{Titulo: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, title, updated.Titulo)
	assert.Equal(t, "HBO", updated.Produtora)

	require.NoError(t, c.Delete(ctx, 1))

	list, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ID)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
}

func TestClientNotFound(t *testing.T) {
	c, _ := newAPI(t)

	_, err := c.Get(context.Background(), 99)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "series not found", apiErr.Message)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(c.Delete(context.Background(), 99)))
}

func TestClientValidationError(t *testing.T) {
	c, store := newAPI(t)

	s := sampleSeries("Dark")
	s.Diretor = ""
	_, err := c.Create(context.Background(), s)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"diretor"}, apiErr.Missing)
	assert.Equal(t, "Dark", apiErr.Campos["titulo"])
	assert.Contains(t, apiErr.Error(), "diretor")
	assert.Zero(t, store.Writes())
}

func TestClientConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	baseURL := ts.URL
	ts.Close()

	c := New(config.ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, nil)
	_, err := c.List(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %T: %v", err, err)
	assert.Equal(t, baseURL, connErr.BaseURL)
	assert.Contains(t, err.Error(), baseURL)

	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
}

func TestClientTimeoutError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(ts.Close)

	c := New(config.ClientConfig{BaseURL: ts.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := c.List(context.Background())
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)

	var connErr *ConnectionError
	assert.False(t, errors.As(err, &connErr))
}

func TestClientContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(ts.Close)

	c := New(config.ClientConfig{BaseURL: ts.URL, Timeout: 5 * time.Second}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.List(ctx)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
	assert.Greater(t, timeoutErr.Timeout, time.Duration(0))
	assert.LessOrEqual(t, timeoutErr.Timeout, 50*time.Millisecond)
	assert.NotContains(t, err.Error(), "5s")
}

func TestClientTimeoutWhileReadingBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"id":1,`))
		w.(http.Flusher).Flush()

		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(ts.Close)

	c := New(config.ClientConfig{BaseURL: ts.URL, Timeout: 100 * time.Millisecond}, nil)
	_, err := c.List(context.Background())
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr), "got %T: %v", err, err)
	assert.Equal(t, 100*time.Millisecond, timeoutErr.Timeout)
}

func TestClientCanceledContext(t *testing.T) {
	c := New(config.ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIErrorWithPlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c := New(config.ClientConfig{BaseURL: ts.URL, Timeout: time.Second}, nil)
	err := c.Delete(context.Background(), 1)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}
