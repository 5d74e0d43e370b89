package ports

import (
	"context"

	"github.com/watchlog/core/internal/domain/entities"
)

// SeriesFields is a decoded request body keyed by wire field name.
type SeriesFields map[string]any

// SeriesService interface for the series collection operations
type SeriesService interface {
	ListSeries(ctx context.Context) ([]entities.Series, error)
	GetSeries(ctx context.Context, id int) (*entities.Series, error)
	CreateSeries(ctx context.Context, fields SeriesFields) (*entities.Series, error)
	UpdateSeries(ctx context.Context, id int, fields SeriesFields) (*entities.Series, error)
	DeleteSeries(ctx context.Context, id int) error
	CountSeries(ctx context.Context) (int, error)
}
