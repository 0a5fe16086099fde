package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// StartCategory prepares the user's record before playback: the current
// index moves to startVideoID (0 when empty or unknown) and the completed
// flag is cleared.
func (s *Store) StartCategory(ctx context.Context, userID, categoryID, startVideoID string) (model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos, err := s.videosByCategory(ctx, categoryID)
	if err != nil {
		return model.UserProgress{}, err
	}
	progress, err := s.findOrNewProgress(ctx, userID, categoryID)
	if err != nil {
		return model.UserProgress{}, err
	}

	progress.CurrentVideoIndex = max(indexOfVideo(videos, startVideoID), 0)
	progress.HasCompletedSequence = false
	if err := s.upsertProgress(ctx, progress); err != nil {
		return model.UserProgress{}, err
	}
	return progress, nil
}

// RecordVideoWatched appends videoID to the watched list, even when it is
// already there, so repeat views show up in the watch counts.
// Only sequence mode advances the current index. The record completes when
// a sequence moves past the last video, and CompletedAt keeps the first time.
func (s *Store) RecordVideoWatched(ctx context.Context, userID, categoryID, videoID string, sequenceMode bool) (model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos, err := s.videosByCategory(ctx, categoryID)
	if err != nil {
		return model.UserProgress{}, err
	}
	position := indexOfVideo(videos, videoID)
	if position < 0 {
		return model.UserProgress{}, fmt.Errorf("video %s in category %s: %w", videoID, categoryID, ErrNotFound)
	}

	progress, err := s.findOrNewProgress(ctx, userID, categoryID)
	if err != nil {
		return model.UserProgress{}, err
	}
	progress.VideosWatched = append(progress.VideosWatched, videoID)

	nextIndex := progress.CurrentVideoIndex
	if sequenceMode {
		nextIndex = position + 1
	}
	progress.CurrentVideoIndex = nextIndex
	progress.HasCompletedSequence = sequenceMode && nextIndex >= len(videos)
	if progress.HasCompletedSequence && progress.CompletedAt == nil {
		completedAt := s.now()
		progress.CompletedAt = &completedAt
	}

	if err := s.upsertProgress(ctx, progress); err != nil {
		return model.UserProgress{}, err
	}
	return progress, nil
}

func indexOfVideo(videos []model.Video, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(videos, func(v model.Video) bool { return v.ID == id })
}
