package redis

import (
	"context"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vocabsearch/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value at the given key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Removing a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// Scan returns every key starting with prefix.
func (s *Store) Scan(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(prefix) + "*"
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the MATCH pattern metacharacters of s.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
