package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/ports"
)

var (
	bucketSeries  = []byte("series")
	keyCollection = []byte("collection")
)

// BoltStore keeps the series collection as a single JSON value in BoltDB so
// every write is one transaction.
type BoltStore struct {
	db     *bolt.DB
	path   string
	logger *logger.Logger
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string, timeout time.Duration, log *logger.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	empty, err := encodeCollection(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSeries)
		if err != nil {
			return err
		}
		if b.Get(keyCollection) == nil {
			return b.Put(keyCollection, empty)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize series bucket: %w", err)
	}

	return &BoltStore{db: db, path: path, logger: log.WithComponent("bolt_store")}, nil
}

var _ ports.SeriesStore = (*BoltStore)(nil)

func (s *BoltStore) ReadAll(ctx context.Context) ([]entities.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSeries)
		if b == nil {
			return nil
		}
		if v := b.Get(keyCollection); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read series bucket: %w", err)
	}

	return decodeCollection(data, s.logger, s.path), nil
}

func (s *BoltStore) WriteAll(ctx context.Context, series []entities.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeCollection(series)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSeries)
		if err != nil {
			return err
		}
		return b.Put(keyCollection, data)
	})
	if err != nil {
		return fmt.Errorf("write series bucket: %w", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
