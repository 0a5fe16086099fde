package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"

	"github.com/at-ishikawa/littlesteps/internal/assets"
	"github.com/at-ishikawa/littlesteps/internal/model"
)

type PlaybackStore interface {
	GetCategory(ctx context.Context, id string) (model.Category, error)
	GetVideosByCategory(ctx context.Context, categoryID string) ([]model.Video, error)
	StartCategory(ctx context.Context, userID, categoryID, startVideoID string) (model.UserProgress, error)
	RecordVideoWatched(ctx context.Context, userID, categoryID, videoID string, sequenceMode bool) (model.UserProgress, error)
}

// Player stands in for the video screen: it prints the assets a device
// would play and records each view.
type Player struct {
	store          PlaybackStore
	stdoutWriter   io.Writer
	bold           *color.Color
	narrationLevel int
}

func NewPlayer(store PlaybackStore, stdout io.Writer, narrationLevel int) *Player {
	return &Player{
		store:          store,
		stdoutWriter:   stdout,
		bold:           color.New(color.Bold),
		narrationLevel: narrationLevel,
	}
}

// Play shows one video, or in sequence mode every video from startVideoID
// to the end of the category. An empty startVideoID starts at the first one.
func (p *Player) Play(ctx context.Context, userID, categoryID, startVideoID string, sequence bool) (model.UserProgress, error) {
	category, err := p.store.GetCategory(ctx, categoryID)
	if err != nil {
		return model.UserProgress{}, fmt.Errorf("store.GetCategory(%s) > %w", categoryID, err)
	}
	videos, err := p.store.GetVideosByCategory(ctx, categoryID)
	if err != nil {
		return model.UserProgress{}, fmt.Errorf("store.GetVideosByCategory(%s) > %w", categoryID, err)
	}
	if len(videos) == 0 {
		return model.UserProgress{}, fmt.Errorf("category %s has no videos", categoryID)
	}

	start := 0
	if startVideoID != "" {
		start = slices.IndexFunc(videos, func(v model.Video) bool { return v.ID == startVideoID })
		if start < 0 {
			return model.UserProgress{}, fmt.Errorf("video %s is not in category %s", startVideoID, categoryID)
		}
	}

	progress, err := p.store.StartCategory(ctx, userID, categoryID, videos[start].ID)
	if err != nil {
		return model.UserProgress{}, fmt.Errorf("store.StartCategory(%s, %s) > %w", userID, categoryID, err)
	}

	playlist := videos[start : start+1]
	if sequence {
		playlist = videos[start:]
	}
	_, _ = p.bold.Fprintf(p.stdoutWriter, "%s %s\n", category.Icon, category.Name)
	for _, video := range playlist {
		if err := ctx.Err(); err != nil {
			return progress, err
		}
		p.printVideo(category, video)
		progress, err = p.store.RecordVideoWatched(ctx, userID, categoryID, video.ID, sequence)
		if err != nil {
			return progress, fmt.Errorf("store.RecordVideoWatched(%s, %s) > %w", userID, video.ID, err)
		}
	}

	if progress.HasCompletedSequence {
		_, _ = color.New(color.FgGreen).Fprintf(p.stdoutWriter, "Finished all %d videos of %s!\n", len(videos), category.Name)
	}
	return progress, nil
}

func (p *Player) printVideo(category model.Category, video model.Video) {
	_, _ = fmt.Fprintf(p.stdoutWriter, "▶ %d. %s\n", video.Order, video.Title)
	_, _ = fmt.Fprintf(p.stdoutWriter, "   video: %s\n", video.Filename)
	_, _ = fmt.Fprintf(p.stdoutWriter, "   thumbnail: %s\n", assets.ThumbnailKey(video))
	narration, err := assets.NarrationKey(category.ID, p.narrationLevel, video)
	if err != nil {
		_, _ = fmt.Fprintf(p.stdoutWriter, "   narration: none (%v)\n", err)
		return
	}
	_, _ = fmt.Fprintf(p.stdoutWriter, "   narration: %s\n", narration)
}
