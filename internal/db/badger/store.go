// Package badger implements db.Store on an embedded BadgerDB, the durable local
// storage used when no shared Redis or Valkey server is configured.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds the location of the database.
type Config struct {
	Path     string
	InMemory bool
}

// Store implements db.Store over BadgerDB.
type Store struct {
	db *badger.DB
}

// zapAdapter adapts zap to the badger.Logger interface.
type zapAdapter struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.logger.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.logger.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.logger.Infof(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.logger.Debugf(msg, items...) }

// Open opens the database at cfg.Path, creating the directory if needed.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapAdapter{logger: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an opened embedded database is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a value at the given key, replacing any previous value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Removing a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return true, nil
}

// Scan returns every key starting with prefix in key order.
func (s *Store) Scan(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}
