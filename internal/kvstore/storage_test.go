package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/littlesteps/internal/config"
)

func newBackends(t *testing.T) map[string]Storage {
	t.Helper()

	bolt, err := NewBoltStorage(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	file, err := NewFileStorage(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	backends := map[string]Storage{
		"memory": NewMemoryStorage(),
		"bolt":   bolt,
		"file":   file,
	}
	t.Cleanup(func() {
		for _, s := range backends {
			assert.NoError(t, s.Close())
		}
	})
	return backends
}

func TestStorage_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "users")
			require.NoError(t, err)
			assert.False(t, ok, "missing key must not be reported as present")

			require.NoError(t, s.Set(ctx, "users", []byte(`[]`)))
			got, ok, err := s.Get(ctx, "users")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte(`[]`), got)

			require.NoError(t, s.SetMany(ctx, map[string][]byte{
				"users":      []byte(`[{"id":"teacher_1"}]`),
				"appVersion": []byte(`"10"`),
			}))
			got, _, err = s.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[{"id":"teacher_1"}]`), got)
			got, _, err = s.Get(ctx, "appVersion")
			require.NoError(t, err)
			assert.Equal(t, []byte(`"10"`), got)

			require.NoError(t, s.Remove(ctx, "appVersion", "neverSet"))
			_, ok, err = s.Get(ctx, "appVersion")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Clear(ctx))
			_, ok, err = s.Get(ctx, "users")
			require.NoError(t, err)
			assert.False(t, ok)

			// still usable after Clear
			require.NoError(t, s.Set(ctx, "videos", []byte(`[]`)))
			_, ok, err = s.Get(ctx, "videos")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStorage_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	value := []byte(`"a"`)
	require.NoError(t, s.Set(ctx, "k", value))
	value[1] = 'b'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"a"`), got)
	assert.Equal(t, []string{"k"}, s.Keys())
}

func TestBoltStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewBoltStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "appInitialized", []byte("true")))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "appInitialized")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("true"), got)
}

func TestFileStorage_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", ""} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, s.Set(ctx, key, []byte("x")))
			_, _, err := s.Get(ctx, key)
			assert.Error(t, err)
		})
	}
}

func TestFileStorage_WritesOneFilePerKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.SetMany(ctx, map[string][]byte{"users": []byte("[]"), "videos": []byte("[]")}))

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "videos.json"),
	}, files)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(dir string) config.StorageConfig
		want    any
		wantErr bool
	}{
		{
			name: "memory",
			cfg: func(string) config.StorageConfig {
				return config.StorageConfig{Driver: config.StorageDriverMemory}
			},
			want: &MemoryStorage{},
		},
		{
			name: "bolt",
			cfg: func(dir string) config.StorageConfig {
				return config.StorageConfig{Driver: config.StorageDriverBolt, Path: filepath.Join(dir, "test.db")}
			},
			want: &BoltStorage{},
		},
		{
			name: "file",
			cfg: func(dir string) config.StorageConfig {
				return config.StorageConfig{Driver: config.StorageDriverFile, Directory: filepath.Join(dir, "kv")}
			},
			want: &FileStorage{},
		},
		{
			name: "unknown driver",
			cfg: func(string) config.StorageConfig {
				return config.StorageConfig{Driver: "sqlite"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(context.Background(), tt.cfg(t.TempDir()), config.DatabaseConfig{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer got.Close()
			assert.IsType(t, tt.want, got)
		})
	}
}
