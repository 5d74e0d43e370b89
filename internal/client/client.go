// Package client talks to the watchlog series API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/config"
	"github.com/watchlog/core/internal/infrastructure/logger"
)

const userAgent = "watchlog-cli/1.0"

// Client is a thin wrapper over the series endpoints. Each call is a
// single round trip with no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Time    string `json:"time,omitempty"`
}

// New creates a client for the API at cfg.BaseURL
func New(cfg config.ClientConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("api_client"),
	}
}

// List returns every series
func (c *Client) List(ctx context.Context) ([]entities.Series, error) {
	var series []entities.Series
	if err := c.doRequest(ctx, http.MethodGet, "/series", nil, &series); err != nil {
		return nil, err
	}
	if series == nil {
		series = []entities.Series{}
	}
	return series, nil
}

// Get fetches one series by id
func (c *Client) Get(ctx context.Context, id int) (*entities.Series, error) {
	var series entities.Series
	if err := c.doRequest(ctx, http.MethodGet, seriesPath(id), nil, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Create submits a new series; the id of s is ignored by the API
func (c *Client) Create(ctx context.Context, s entities.Series) (*entities.Series, error) {
	payload := make(map[string]any, len(entities.SeriesFields))
	payload[entities.FieldTitulo] = s.Titulo
	payload[entities.FieldNumeroTemporadas] = s.NumeroTemporadas
	payload[entities.FieldDataLancamentoTemporada] = s.DataLancamentoTemporada
	payload[entities.FieldDiretor] = s.Diretor
	payload[entities.FieldProdutora] = s.Produtora
	payload[entities.FieldCategoria] = s.Categoria
	payload[entities.FieldDataAssistiu] = s.DataAssistiu

	var created entities.Series
	if err := c.doRequest(ctx, http.MethodPost, "/series", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends only the fields set in patch
func (c *Client) Update(ctx context.Context, id int, patch entities.SeriesPatch) (*entities.Series, error) {
	var updated entities.Series
	if err := c.doRequest(ctx, http.MethodPut, seriesPath(id), patch.Fields(), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a series
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, seriesPath(id), nil, nil)
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func seriesPath(id int) string {
	return "/series/" + strconv.Itoa(id)
}

// doRequest performs one request, decoding a 2xx body into out when out is
// non-nil. Transport failures come back as ConnectionError or TimeoutError,
// API failures as APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugw("api request", "method", method, "url", reqURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := c.classifyTransportError(ctx, start, err)
		c.logger.Debugw("api request failed", "method", method, "url", reqURL, "error", err)
		return classified
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debugw("api response read failed", "method", method, "url", reqURL, "error", err)
		return c.classifyTransportError(ctx, start, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Debugw("api error response", "status", resp.StatusCode, "body", string(respBody))
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Message string         `json:"message"`
		Campos  map[string]any `json:"campos"`
		Missing []string       `json:"missing"`
		Invalid []string       `json:"invalid"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Message = payload.Message
	apiErr.Campos = payload.Campos
	apiErr.Missing = payload.Missing
	apiErr.Invalid = payload.Invalid
	return apiErr
}
