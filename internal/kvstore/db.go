package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/littlesteps/internal/database"
)

// DBStorage stores keys as rows of the kv_items table.
type DBStorage struct {
	db *sqlx.DB
}

func NewDBStorage(db *sqlx.DB) *DBStorage {
	return &DBStorage{db: db}
}

func (s *DBStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT item_value FROM kv_items WHERE item_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(value), true, nil
}

const upsertQuery = `INSERT INTO kv_items (item_key, item_value) VALUES (?, ?)
ON DUPLICATE KEY UPDATE item_value = VALUES(item_value)`

func (s *DBStorage) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *DBStorage) SetMany(ctx context.Context, entries map[string][]byte) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		// sorted so concurrent batches lock rows in the same order
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			if _, err := tx.ExecContext(ctx, upsertQuery, key, string(entries[key])); err != nil {
				return fmt.Errorf("upsert %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *DBStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM kv_items WHERE item_key IN (?)", keys)
	if err != nil {
		return fmt.Errorf("sqlx.In() > %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *DBStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_items"); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

func (s *DBStorage) Close() error {
	return s.db.Close()
}
