package ports

import (
	"context"

	"github.com/watchlog/core/internal/domain/entities"
)

// SeriesStore persists the whole series collection at once. Implementations
// never keep state between calls that is not re-derived from their backing
// medium.
type SeriesStore interface {
	// ReadAll returns the full collection in insertion order. Unparseable
	// content yields an empty collection rather than an error.
	ReadAll(ctx context.Context) ([]entities.Series, error)

	// WriteAll replaces the persisted collection with series.
	WriteAll(ctx context.Context, series []entities.Series) error

	// Close releases the underlying resources.
	Close() error
}
