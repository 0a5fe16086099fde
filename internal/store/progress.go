package store

import (
	"context"
	"errors"
	"slices"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

func (s *Store) loadProgress(ctx context.Context) ([]model.UserProgress, error) {
	progress, _, err := readJSON[[]model.UserProgress](ctx, s.kv, keyProgress)
	return progress, err
}

func (s *Store) GetAllProgress(ctx context.Context) ([]model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProgress(ctx)
}

// GetUserProgress returns the user's records, narrowed to one category when
// categoryID is not empty.
func (s *Store) GetUserProgress(ctx context.Context, userID, categoryID string) ([]model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	return filterProgress(all, userID, categoryID), nil
}

func filterProgress(all []model.UserProgress, userID, categoryID string) []model.UserProgress {
	var result []model.UserProgress
	for _, p := range all {
		if p.UserID != userID {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		result = append(result, p)
	}
	return result
}

// UpdateUserProgress replaces the record with the same (userId, categoryId)
// or appends it.
func (s *Store) UpdateUserProgress(ctx context.Context, progress model.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertProgress(ctx, progress)
}

func (s *Store) upsertProgress(ctx context.Context, progress model.UserProgress) error {
	all, err := s.loadProgress(ctx)
	if err != nil {
		return err
	}
	if progress.VideosWatched == nil {
		progress.VideosWatched = []string{}
	}
	if progress.QuizAttempts == nil {
		progress.QuizAttempts = []model.QuizAttempt{}
	}

	i := slices.IndexFunc(all, func(p model.UserProgress) bool {
		return p.UserID == progress.UserID && p.CategoryID == progress.CategoryID
	})
	if i >= 0 {
		all[i] = progress
	} else {
		all = append(all, progress)
	}
	return writeJSON(ctx, s.kv, keyProgress, all)
}

// findOrNewProgress returns the stored record for the pair or a fresh one.
func (s *Store) findOrNewProgress(ctx context.Context, userID, categoryID string) (model.UserProgress, error) {
	all, err := s.loadProgress(ctx)
	if err != nil {
		return model.UserProgress{}, err
	}
	if found := filterProgress(all, userID, categoryID); len(found) > 0 {
		return found[0], nil
	}
	return model.NewUserProgress(userID, categoryID), nil
}

// AddQuizAttempt appends the attempt to the record of the pair, creating
// the record when needed. Attempts are never deduplicated.
func (s *Store) AddQuizAttempt(ctx context.Context, userID, categoryID string, attempt model.QuizAttempt) error {
	if userID == "" || categoryID == "" {
		return errors.New("user id and category id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.findOrNewProgress(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	progress.QuizAttempts = append(progress.QuizAttempts, attempt)
	return s.upsertProgress(ctx, progress)
}
