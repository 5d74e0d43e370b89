package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/ports"
)

const lockRetryDelay = 25 * time.Millisecond

// JSONStore keeps the series collection as one indented JSON array in a file.
type JSONStore struct {
	fs          afero.Fs
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	logger      *logger.Logger
}

// NewJSONStore opens the collection at path on fs, writing an empty array
// first if the file does not exist yet.
func NewJSONStore(fs afero.Fs, path string, log *logger.Logger) (*JSONStore, error) {
	s := &JSONStore{
		fs:     fs,
		path:   path,
		logger: log.WithComponent("json_store"),
	}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewJSONFileStore opens the collection on the OS filesystem. Writes hold an
// exclusive lock on path+".lock" so separate processes never interleave.
func NewJSONFileStore(path string, lockTimeout time.Duration, log *logger.Logger) (*JSONStore, error) {
	s, err := NewJSONStore(afero.NewOsFs(), path, log)
	if err != nil {
		return nil, err
	}
	s.lock = flock.New(path + ".lock")
	s.lockTimeout = lockTimeout
	return s, nil
}

var _ ports.SeriesStore = (*JSONStore)(nil)

func (s *JSONStore) ensureFile() error {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("stat series file: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := s.write([]entities.Series{}); err != nil {
		return fmt.Errorf("initialize series file: %w", err)
	}

	s.logger.Infow("Initialized empty series file", "path", s.path)
	return nil
}

func (s *JSONStore) ReadAll(ctx context.Context) ([]entities.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.Series{}, nil
		}
		return nil, fmt.Errorf("read series file: %w", err)
	}

	return decodeCollection(data, s.logger, s.path), nil
}

func (s *JSONStore) WriteAll(ctx context.Context, series []entities.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.lock != nil {
		lockCtx := ctx
		if s.lockTimeout > 0 {
			var cancel context.CancelFunc
			lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
			defer cancel()
		}

		locked, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("lock series file: %w", err)
		}
		if !locked {
			return fmt.Errorf("lock series file: %s is held by another process", s.lock.Path())
		}
		defer s.lock.Unlock()
	}

	return s.write(series)
}

// write replaces the file through a temp file and rename.
func (s *JSONStore) write(series []entities.Series) error {
	data, err := encodeCollection(series)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write series file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace series file: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	if s.lock != nil {
		return s.lock.Close()
	}
	return nil
}

func encodeCollection(series []entities.Series) ([]byte, error) {
	if series == nil {
		series = []entities.Series{}
	}
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode series: %w", err)
	}
	return data, nil
}

// decodeCollection never fails. Content that is not a JSON array is an empty
// collection; inside an array each record is decoded on its own, so one
// oddly typed value never drops its neighbours.
func decodeCollection(data []byte, log *logger.Logger, source string) []entities.Series {
	if len(bytes.TrimSpace(data)) == 0 {
		return []entities.Series{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warnw("Series data is not a JSON array, treating as empty", "source", source, "error", err)
		return []entities.Series{}
	}

	series := make([]entities.Series, 0, len(raw))
	for i, item := range raw {
		var fields map[string]any
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil || fields == nil {
			log.Warnw("Skipping series entry that is not an object", "source", source, "index", i)
			continue
		}

		s, invalid := entities.SeriesFromStored(fields)
		if len(invalid) > 0 {
			log.Warnw("Series entry has values of the wrong type", "source", source, "series_id", s.ID, "fields", invalid)
		}
		series = append(series, s)
	}
	return series
}
