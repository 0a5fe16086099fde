// Package kvstore provides the flat key-value namespace the Local Store persists into.
package kvstore

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/littlesteps/internal/config"
	"github.com/at-ishikawa/littlesteps/internal/database"
)

//go:generate mockgen -source=storage.go -destination=../mocks/kvstore/mock_kvstore.go -package=mock_kvstore

// Storage is a flat namespace of byte values. A missing key is reported by
// the boolean result of Get, never as an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries atomically when the backend supports it.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Remove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	io.Closer
}

// Open creates the backend selected by cfg.Driver. The mysql driver needs
// dbCfg and creates its table if it does not exist yet.
func Open(ctx context.Context, cfg config.StorageConfig, dbCfg config.DatabaseConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return NewMemoryStorage(), nil
	case config.StorageDriverBolt:
		return NewBoltStorage(cfg.Path)
	case config.StorageDriverFile:
		return NewFileStorage(cfg.Directory)
	case config.StorageDriverMySQL:
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database.EnsureSchema() > %w", err)
		}
		return NewDBStorage(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
