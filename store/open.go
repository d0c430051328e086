package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the configured backend
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileKV(opts.Dir)

	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "agrigpt.db")
		}
		return NewSQLiteKV(path)

	case BackendRedis:
		return NewRedisKV(ctx, opts.Redis)

	case BackendMemory:
		return NewMemoryKV(), nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", opts.Backend)
	}
}
