package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/db"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// Opened is a store together with the source of other processes' changes
type Opened struct {
	Store  *Store
	Source ChangeSource
	// Backend is the configured backend name (sqlite or redis)
	Backend string
}

// Open builds the store described by cfg. dbPath is used by the sqlite backend.
func Open(ctx context.Context, cfg *am.Config, dbPath string) (*Opened, error) {
	prefix := cfg.Storage.KeyPrefix

	switch cfg.Storage.Backend {
	case am.BackendRedis:
		backend, err := NewRedisBackend(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			// Store keys already carry the prefix
			Prefix:   "",
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			return nil, err
		}
		logger.Infow("Store opened",
			logger.FieldBackend, am.BackendRedis,
			logger.FieldAddress, cfg.Redis.Addr,
		)
		return &Opened{Store: NewStore(backend, prefix), Source: backend, Backend: am.BackendRedis}, nil

	case am.BackendSQLite, "":
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
				return nil, errors.Wrapf(err, "create database directory %s", dir)
			}
		}
		conn, err := db.OpenWithMigrations(dbPath, logger.Logger)
		if err != nil {
			return nil, err
		}
		backend := NewSQLiteBackend(conn)
		source := NewFileChangeSource(backend, dbPath,
			time.Duration(cfg.Storage.DebounceMS)*time.Millisecond,
			time.Duration(cfg.Storage.PollIntervalMS)*time.Millisecond,
		)
		return &Opened{Store: NewStore(backend, prefix), Source: source, Backend: am.BackendSQLite}, nil

	default:
		return nil, errors.NewInvalidRequestError("unknown storage backend %q", cfg.Storage.Backend)
	}
}
