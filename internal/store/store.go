// Package store is the Local Store: users, catalog, progress and session
// pointers persisted as JSON values in a kvstore.Storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/at-ishikawa/littlesteps/internal/kvstore"
)

// SchemaVersion is the target of the migration sequence. Bump it whenever
// a migration is appended.
const SchemaVersion = "10"

const (
	keyUsers          = "users"
	keyCategories     = "categories"
	keyVideos         = "videos"
	keyQuestions      = "questions"
	keyProgress       = "progress"
	keyCurrentUser    = "currentUser"
	keyCurrentTeacher = "currentTeacher"
	keyAppInitialized = "appInitialized"
	keyAppVersion     = "appVersion"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrTeacherNotFound    = fmt.Errorf("teacher %w", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("student %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid teacher id or password")
)

type Store struct {
	kv kvstore.Storage
	// mu serializes read-modify-write cycles over whole collections.
	mu sync.Mutex

	hashPasswords bool
	bcryptCost    int
	seedFile      string
	now           func() time.Time
}

type Option func(*Store)

// WithPasswordHashing stores new and updated teacher passwords as bcrypt hashes.
func WithPasswordHashing(cost int) Option {
	return func(s *Store) {
		s.hashPasswords = true
		s.bcryptCost = cost
	}
}

// WithSeedFile replaces the embedded sample dataset used on first start.
func WithSeedFile(path string) Option {
	return func(s *Store) {
		s.seedFile = path
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(kv kvstore.Storage, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// newID returns <prefix>_<unix millis>_<9 random characters>.
func (s *Store) newID(prefix string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%d_%s", prefix, s.now().UnixMilli(), random[:9])
}

// readJSON decodes the value at key into T. A missing key and a value that
// is not valid JSON both report ok=false, only storage failures are errors.
func readJSON[T any](ctx context.Context, kv kvstore.Storage, key string) (T, bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("kv.Get(%s) > %w", key, err)
	}
	if !ok {
		var zero T
		return zero, false, nil
	}
	result, ok := decodeJSON[T](key, raw)
	return result, ok, nil
}

func decodeJSON[T any](key string, raw []byte) (T, bool) {
	var result T
	if len(raw) == 0 {
		return result, false
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("ignore corrupt stored value", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return result, true
}

func writeJSON(ctx context.Context, kv kvstore.Storage, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal(%s) > %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("kv.Set(%s) > %w", key, err)
	}
	return nil
}

func (s *Store) removeKeys(ctx context.Context, keys ...string) error {
	if err := s.kv.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("kv.Remove(%s) > %w", strings.Join(keys, ", "), err)
	}
	return nil
}
