package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/ports"
)

// SeriesHandler handles series-related requests
type SeriesHandler struct {
	seriesService ports.SeriesService
	logger        *logger.Logger
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(seriesService ports.SeriesService, logger *logger.Logger) *SeriesHandler {
	return &SeriesHandler{
		seriesService: seriesService,
		logger:        logger,
	}
}

// Register mounts the series routes on g
func (h *SeriesHandler) Register(g *echo.Group) {
	g.GET("", h.ListSeries)
	g.POST("", h.CreateSeries)
	g.GET("/:id", h.GetSeries)
	g.PUT("/:id", h.UpdateSeries)
	g.DELETE("/:id", h.DeleteSeries)
}

// ListSeries godoc
// @Summary List series
// @Tags series
// @Produce json
// @Success 200 {array} entities.Series
// @Router /series [get]
func (h *SeriesHandler) ListSeries(c echo.Context) error {
	series, err := h.seriesService.ListSeries(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List series failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, series)
}

// GetSeries godoc
// @Summary Get series by ID
// @Tags series
// @Produce json
// @Param id path int true "Series ID"
// @Success 200 {object} entities.Series
// @Failure 404 {object} MessageResponse
// @Router /series/{id} [get]
func (h *SeriesHandler) GetSeries(c echo.Context) error {
	id, err := parseSeriesID(c)
	if err != nil {
		return err
	}

	series, err := h.seriesService.GetSeries(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, series)
}

// CreateSeries godoc
// @Summary Create a new series
// @Tags series
// @Accept json
// @Produce json
// @Success 201 {object} entities.Series
// @Failure 400 {object} ValidationErrorResponse
// @Router /series [post]
func (h *SeriesHandler) CreateSeries(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	series, err := h.seriesService.CreateSeries(c.Request().Context(), fields)
	if err != nil {
		h.logger.Warnw("Create series rejected", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, series)
}

// UpdateSeries merges the body over the stored record
func (h *SeriesHandler) UpdateSeries(c echo.Context) error {
	id, err := parseSeriesID(c)
	if err != nil {
		return err
	}

	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	series, err := h.seriesService.UpdateSeries(c.Request().Context(), id, fields)
	if err != nil {
		h.logger.Warnw("Update series rejected", "error", err, "series_id", id)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) DeleteSeries(c echo.Context) error {
	id, err := parseSeriesID(c)
	if err != nil {
		return err
	}

	if err := h.seriesService.DeleteSeries(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
