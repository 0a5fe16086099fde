// Package testutil provides shared test helpers for config files, seeded stores and progress fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/littlesteps/internal/kvstore"
	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

// FixedTime is the clock used by fixtures so ids and timestamps are stable.
var FixedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

// SetupTestConfig creates a config file that stores data under tmpDir with the
// file driver. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return SetupTestConfigWithDriver(t, tmpDir, "file")
}

// SetupTestConfigWithDriver is SetupTestConfig with a chosen storage driver.
func SetupTestConfigWithDriver(t *testing.T, tmpDir, driver string) string {
	t.Helper()

	dirs := []string{"kv", "reports"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`storage:
  driver: %s
  path: %s
  directory: %s
reports:
  output_directory: %s
quiz:
  questions: 3
`,
		driver,
		filepath.Join(tmpDir, "littlesteps.db"),
		filepath.Join(tmpDir, "kv"),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// NewSeededStore returns an in-memory store initialized with the sample dataset.
func NewSeededStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()

	opts = append([]store.Option{store.WithClock(func() time.Time { return FixedTime })}, opts...)
	s := store.New(kvstore.NewMemoryStorage(), opts...)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// ProgressOption configures a progress fixture.
type ProgressOption func(*model.UserProgress)

// WithWatched appends video ids to the watched list, duplicates included.
func WithWatched(videoIDs ...string) ProgressOption {
	return func(p *model.UserProgress) {
		p.VideosWatched = append(p.VideosWatched, videoIDs...)
	}
}

// WithAttempt appends a quiz attempt. An empty categoryID leaves the attempt
// to be classified by its question id.
func WithAttempt(questionID, categoryID string, correct bool) ProgressOption {
	return func(p *model.UserProgress) {
		p.QuizAttempts = append(p.QuizAttempts, model.QuizAttempt{
			ID:             fmt.Sprintf("attempt_%d", len(p.QuizAttempts)+1),
			QuestionID:     questionID,
			SelectedAnswer: "opt_1",
			IsCorrect:      correct,
			AttemptedAt:    FixedTime,
			TimeTaken:      5,
			CategoryID:     categoryID,
		})
	}
}

// NewProgress builds a progress record for the user and category.
func NewProgress(userID, categoryID string, opts ...ProgressOption) model.UserProgress {
	p := model.NewUserProgress(userID, categoryID)
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
