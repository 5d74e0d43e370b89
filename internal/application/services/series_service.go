package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/ports"
)

// SeriesService implements the series operations as read-modify-write cycles
// over a SeriesStore. All cycles run under one mutex, so concurrent requests
// in this process never lose an update.
type SeriesService struct {
	store    ports.SeriesStore
	validate *validator.Validate
	logger   *logger.Logger

	mu sync.Mutex
}

// NewSeriesService creates a new series service
func NewSeriesService(store ports.SeriesStore, validate *validator.Validate, logger *logger.Logger) *SeriesService {
	if validate == nil {
		validate = validator.New()
	}
	return &SeriesService{
		store:    store,
		validate: validate,
		logger:   logger.WithComponent("series_service"),
	}
}

var _ ports.SeriesService = (*SeriesService)(nil)

// ListSeries returns the whole collection
func (s *SeriesService) ListSeries(ctx context.Context) ([]entities.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}

// GetSeries retrieves a series by ID
func (s *SeriesService) GetSeries(ctx context.Context, id int) (*entities.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	idx := entities.IndexOf(series, id)
	if idx < 0 {
		return nil, fmt.Errorf("series %d: %w", id, entities.ErrSeriesNotFound)
	}

	found := series[idx]
	return &found, nil
}

// CreateSeries validates the submitted fields, assigns the next id and
// appends the record
func (s *SeriesService) CreateSeries(ctx context.Context, fields ports.SeriesFields) (*entities.Series, error) {
	created, err := entities.NewSeriesFromFields(fields)
	if err != nil {
		return nil, err
	}
	if err := s.validateSeries(created, fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}

	created.ID = entities.NextID(series)
	series = append(series, *created)

	if err := s.store.WriteAll(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}

	s.logger.LogSeriesAction("create", created.ID, map[string]interface{}{"titulo": created.Titulo})

	return created, nil
}

// UpdateSeries merges the submitted fields over an existing record. The id
// always stays the one from the path.
func (s *SeriesService) UpdateSeries(ctx context.Context, id int, fields ports.SeriesFields) (*entities.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}

	idx := entities.IndexOf(series, id)
	if idx < 0 {
		return nil, fmt.Errorf("series %d: %w", id, entities.ErrSeriesNotFound)
	}

	updated := series[idx]
	if err := updated.ApplyFields(fields); err != nil {
		return nil, err
	}
	updated.ID = id

	if err := s.validateSeries(&updated, fields); err != nil {
		return nil, err
	}

	series[idx] = updated
	if err := s.store.WriteAll(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}

	s.logger.LogSeriesAction("update", id, map[string]interface{}{"fields": len(fields)})

	return &updated, nil
}

// DeleteSeries removes a record; other ids are untouched
func (s *SeriesService) DeleteSeries(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}

	idx := entities.IndexOf(series, id)
	if idx < 0 {
		return fmt.Errorf("series %d: %w", id, entities.ErrSeriesNotFound)
	}

	series = append(series[:idx], series[idx+1:]...)
	if err := s.store.WriteAll(ctx, series); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}

	s.logger.LogSeriesAction("delete", id, nil)

	return nil
}

// CountSeries returns the number of stored records
func (s *SeriesService) CountSeries(ctx context.Context) (int, error) {
	series, err := s.ListSeries(ctx)
	if err != nil {
		return 0, err
	}
	return len(series), nil
}

func (s *SeriesService) validateSeries(series *entities.Series, fields ports.SeriesFields) error {
	err := s.validate.Struct(series)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate series: %w", err)
	}

	invalid := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		invalid = append(invalid, jsonFieldName(fe.StructField()))
	}

	return &entities.ValidationError{
		Message: "invalid series fields",
		Fields:  entities.SubmittedFields(fields),
		Invalid: invalid,
	}
}

var structToJSONField = map[string]string{
	"Titulo":                  entities.FieldTitulo,
	"NumeroTemporadas":        entities.FieldNumeroTemporadas,
	"DataLancamentoTemporada": entities.FieldDataLancamentoTemporada,
	"Diretor":                 entities.FieldDiretor,
	"Produtora":               entities.FieldProdutora,
	"Categoria":               entities.FieldCategoria,
	"DataAssistiu":            entities.FieldDataAssistiu,
}

func jsonFieldName(structField string) string {
	if name, ok := structToJSONField[structField]; ok {
		return name
	}
	return structField
}
