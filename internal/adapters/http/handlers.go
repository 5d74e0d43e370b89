package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/ports"
)

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Message string         `json:"message"`
	Campos  map[string]any `json:"campos"`
	Missing []string       `json:"missing,omitempty"`
	Invalid []string       `json:"invalid,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Time    string `json:"time,omitempty"`
}

const (
	msgSeriesNotFound = "series not found"
	msgInvalidBody    = "invalid request body"
)

// Utility functions

// parseSeriesID reads the :id path parameter. Anything that is not an
// integer can never match a stored id, so it is reported as not found.
func parseSeriesID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, msgSeriesNotFound)
	}
	return id, nil
}

// bindFields decodes the JSON body into a field map. Path parameters are not
// merged in, so an :id never leaks into the body.
func bindFields(c echo.Context) (ports.SeriesFields, error) {
	var fields ports.SeriesFields
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, &fields); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody).SetInternal(err)
	}
	if fields == nil {
		fields = ports.SeriesFields{}
	}
	return fields, nil
}

// toHTTPError maps service errors onto status codes.
func toHTTPError(err error) *echo.HTTPError {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ValidationErrorResponse{
			Message: ve.Message,
			Campos:  ve.Fields,
			Missing: ve.Missing,
			Invalid: ve.Invalid,
		})
	case errors.Is(err, entities.ErrSeriesNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgSeriesNotFound)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}
