package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("db: key not found")
	ErrUnsupportedDSN = errors.New("db: unsupported dsn")
)

// Backend is a flat string key-value store. Get returns ErrNotFound for
// missing keys.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Open picks a backend from the dsn scheme: postgres://, redis://,
// memory://, anything else is a sqlite file path.
func Open(ctx context.Context, dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("%w: empty", ErrUnsupportedDSN)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return NewRedis(ctx, dsn)
	case dsn == "memory://" || dsn == ":memory:":
		return NewMemory(), nil
	case strings.Contains(dsn, "://") && !strings.HasPrefix(dsn, "file:"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDSN, dsn)
	default:
		return OpenSQLite(ctx, dsn)
	}
}
