package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/seed"
)

// Initialize seeds a store that was never initialized, and otherwise
// brings an existing one up to SchemaVersion.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialize(ctx)
}

func (s *Store) initialize(ctx context.Context) error {
	_, initialized, err := s.kv.Get(ctx, keyAppInitialized)
	if err != nil {
		return fmt.Errorf("kv.Get(%s) > %w", keyAppInitialized, err)
	}
	if initialized {
		_, err := s.ensureSeedUpToDate(ctx)
		return err
	}

	dataset, err := seed.Load(s.seedFile)
	if err != nil {
		return fmt.Errorf("seed.Load() > %w", err)
	}
	if err := s.writeDataset(ctx, dataset); err != nil {
		return err
	}
	slog.Info("initialized store with sample data", "version", SchemaVersion)
	return nil
}

func (s *Store) writeDataset(ctx context.Context, dataset seed.Dataset) error {
	users := dataset.Users()
	for _, user := range users {
		if t, ok := user.(*model.Teacher); ok {
			hashed, err := s.storedPassword(t.Password)
			if err != nil {
				return err
			}
			t.Password = hashed
		}
	}

	values := map[string]any{
		keyUsers:          users,
		keyCategories:     emptyIfNil(dataset.Categories),
		keyVideos:         emptyIfNil(dataset.Videos),
		keyQuestions:      emptyIfNil(dataset.Questions),
		keyProgress:       []model.UserProgress{},
		keyAppInitialized: true,
		keyAppVersion:     SchemaVersion,
	}
	entries := make(map[string][]byte, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("json.Marshal(%s) > %w", key, err)
		}
		entries[key] = data
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("kv.SetMany() > %w", err)
	}
	return nil
}

func emptyIfNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

// StoredVersion returns the schema version recorded in the store, or "" when none is.
func (s *Store) StoredVersion(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadVersion(ctx)
}

// loadVersion accepts both a JSON string and the bare value older stores wrote.
func (s *Store) loadVersion(ctx context.Context) (string, error) {
	raw, ok, err := s.kv.Get(ctx, keyAppVersion)
	if err != nil {
		return "", fmt.Errorf("kv.Get(%s) > %w", keyAppVersion, err)
	}
	if !ok {
		return "", nil
	}
	var version string
	if err := json.Unmarshal(raw, &version); err == nil {
		return version, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// EnsureSeedUpToDate runs the whole migration sequence when the stored
// version differs from SchemaVersion. It returns nil results when the store
// is already current.
func (s *Store) EnsureSeedUpToDate(ctx context.Context) ([]MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSeedUpToDate(ctx)
}

func (s *Store) ensureSeedUpToDate(ctx context.Context) ([]MigrationResult, error) {
	version, err := s.loadVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == SchemaVersion {
		slog.Debug("store is up to date", "version", version)
		return nil, nil
	}

	slog.Info("migrate store", "from", version, "to", SchemaVersion)
	results, err := s.runMigrations(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(ctx, s.kv, keyAppVersion, SchemaVersion); err != nil {
		return nil, err
	}
	return results, nil
}

// RunMigrations runs the sequence regardless of the stored version and
// records SchemaVersion afterwards.
func (s *Store) RunMigrations(ctx context.Context) ([]MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.runMigrations(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(ctx, s.kv, keyAppVersion, SchemaVersion); err != nil {
		return nil, err
	}
	return results, nil
}

// ClearAllData wipes every key, reseeds the store and leaves nobody logged in.
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("kv.Clear() > %w", err)
	}
	if err := s.initialize(ctx); err != nil {
		return err
	}
	return s.removeKeys(ctx, keyCurrentUser, keyCurrentTeacher)
}
