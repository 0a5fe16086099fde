package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

func (s *Store) loadCategories(ctx context.Context) ([]model.Category, error) {
	categories, _, err := readJSON[[]model.Category](ctx, s.kv, keyCategories)
	return categories, err
}

func (s *Store) loadVideos(ctx context.Context) ([]model.Video, error) {
	videos, _, err := readJSON[[]model.Video](ctx, s.kv, keyVideos)
	return videos, err
}

func (s *Store) loadQuestions(ctx context.Context) ([]model.Question, error) {
	questions, _, err := readJSON[[]model.Question](ctx, s.kv, keyQuestions)
	return questions, err
}

// GetCategories returns the stored categories with VideoCount derived from
// the video table rather than the persisted field.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := s.loadVideos(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range videos {
		counts[v.CategoryID]++
	}
	for i := range categories {
		categories[i].VideoCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (model.Category, error) {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
}

func (s *Store) UnlockCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(categories, func(c model.Category) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	categories[i].Unlocked = true
	return writeJSON(ctx, s.kv, keyCategories, categories)
}

func sortByOrder(videos []model.Video) []model.Video {
	slices.SortStableFunc(videos, func(a, b model.Video) int {
		return a.Order - b.Order
	})
	return videos
}

// GetVideosByCategory returns the category's videos in ascending order.
func (s *Store) GetVideosByCategory(ctx context.Context, categoryID string) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videosByCategory(ctx, categoryID)
}

func (s *Store) videosByCategory(ctx context.Context, categoryID string) ([]model.Video, error) {
	videos, err := s.loadVideos(ctx)
	if err != nil {
		return nil, err
	}
	videos = slices.DeleteFunc(videos, func(v model.Video) bool {
		return v.CategoryID != categoryID
	})
	return sortByOrder(videos), nil
}

// GetAllVideos sorts every video by order alone, so categories interleave.
func (s *Store) GetAllVideos(ctx context.Context) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos, err := s.loadVideos(ctx)
	if err != nil {
		return nil, err
	}
	return sortByOrder(videos), nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos, err := s.loadVideos(ctx)
	if err != nil {
		return model.Video{}, err
	}
	for _, v := range videos {
		if v.ID == id {
			return v, nil
		}
	}
	return model.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
}

func (s *Store) GetQuestionsByCategory(ctx context.Context, categoryID string) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, err := s.loadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(questions, func(q model.Question) bool {
		return q.CategoryID != categoryID
	}), nil
}

func (s *Store) GetAllQuestions(ctx context.Context) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadQuestions(ctx)
}
