package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

const fileExtension = ".json"

var validFileKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileStorage keeps each key as <key>.json inside a directory, which makes
// the persisted state easy to inspect and edit by hand.
type FileStorage struct {
	mu        sync.Mutex
	directory string
}

func NewFileStorage(directory string) (*FileStorage, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", directory, err)
	}
	return &FileStorage{directory: directory}, nil
}

func (s *FileStorage) path(key string) (string, error) {
	if !validFileKey.MatchString(key) {
		return "", fmt.Errorf("invalid key for file storage: %q", key)
	}
	return filepath.Join(s.directory, key+fileExtension), nil
}

func (s *FileStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	return value, true, nil
}

func (s *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany writes each entry through a temp file and rename, so a single key
// is never half-written. The batch as a whole is not atomic.
func (s *FileStorage) SetMany(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range entries {
		path, err := s.path(key)
		if err != nil {
			return err
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, value, 0644); err != nil {
			return fmt.Errorf("os.WriteFile(%s) > %w", tmp, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("os.Rename(%s) > %w", path, err)
		}
	}
	return nil
}

func (s *FileStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		path, err := s.path(key)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("os.Remove(%s) > %w", path, err)
		}
	}
	return nil
}

func (s *FileStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(s.directory, "*"+fileExtension))
	if err != nil {
		return fmt.Errorf("filepath.Glob() > %w", err)
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("os.Remove(%s) > %w", file, err)
		}
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
