package seed

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// Action describes how a category's videos are named.
type Action struct {
	CategoryID string
	// Folder is the asset directory, e.g. "Eat".
	Folder string
	// Gerund is the verb form used in file names, e.g. "eating".
	Gerund string
}

const (
	videoDuration   = 5
	oldmanCharacter = "Oldman"
)

// Characters in the order their videos appear in every category.
var Characters = []string{"Dog", "Cat", "Girl", "Boy", "Woman"}

var (
	OriginalActions = []Action{
		{CategoryID: "eat", Folder: "Eat", Gerund: "eating"},
		{CategoryID: "drink", Folder: "Drink", Gerund: "drinking"},
		{CategoryID: "sleep", Folder: "Sleep", Gerund: "sleeping"},
		{CategoryID: "open", Folder: "Open", Gerund: "opening"},
		{CategoryID: "draw", Folder: "Draw", Gerund: "drawing"},
	}
	PlayAction   = Action{CategoryID: "play", Folder: "Play", Gerund: "playing"}
	LaterActions = []Action{
		{CategoryID: "blow", Folder: "Blow", Gerund: "blowing"},
		{CategoryID: "clap", Folder: "Clap", Gerund: "clapping"},
		{CategoryID: "run", Folder: "Run", Gerund: "running"},
		{CategoryID: "wash", Folder: "Wash", Gerund: "washing"},
	}
)

// AllActions lists every category in catalog order.
func AllActions() []Action {
	actions := append([]Action{}, OriginalActions...)
	actions = append(actions, PlayAction)
	return append(actions, LaterActions...)
}

// Video builds the catalog entry for character at the given 1-based order.
func (a Action) Video(character string, order int) model.Video {
	return model.Video{
		ID:         fmt.Sprintf("%s_%d", a.CategoryID, order),
		CategoryID: a.CategoryID,
		Title:      character,
		Filename:   fmt.Sprintf("%s/%s_%s.mp4", a.Folder, strings.ToLower(character), a.Gerund),
		Duration:   videoDuration,
		Order:      order,
	}
}

// CharacterVideos returns the five character videos of the category.
func (a Action) CharacterVideos() []model.Video {
	videos := make([]model.Video, 0, len(Characters))
	for i, character := range Characters {
		videos = append(videos, a.Video(character, i+1))
	}
	return videos
}

// OldmanVideo is the sixth video added to every category.
func (a Action) OldmanVideo() model.Video {
	return a.Video(oldmanCharacter, len(Characters)+1)
}

func IsOldman(v model.Video) bool {
	return v.Title == oldmanCharacter
}

// CanonicalVideos is the five-category video table that replaces older catalogs.
func CanonicalVideos() []model.Video {
	var videos []model.Video
	for _, action := range OriginalActions {
		videos = append(videos, action.CharacterVideos()...)
	}
	return videos
}

// PlayCategory is the category record added to stores created before it existed.
func PlayCategory() model.Category {
	return model.Category{
		ID:          "play",
		Name:        "Play",
		Description: "Learn about playing actions",
		Icon:        "game-controller",
		VideoCount:  5,
		Unlocked:    true,
	}
}

var laterCategoryIcons = map[string]string{
	"blow": "leaf",
	"clap": "hand-right",
	"run":  "fitness",
	"wash": "water-outline",
}

// LaterCategory is the record added for blow, clap, run and wash.
func (a Action) LaterCategory() model.Category {
	return model.Category{
		ID:          a.CategoryID,
		Name:        a.Folder,
		Description: fmt.Sprintf("Learn about %s actions", a.Gerund),
		Icon:        laterCategoryIcons[a.CategoryID],
		VideoCount:  6,
		Unlocked:    true,
	}
}

// TitleSimplifications maps the old "Character Action" titles to the bare character.
func TitleSimplifications() map[string]string {
	mappings := make(map[string]string)
	for _, action := range OriginalActions {
		verb := strings.ToUpper(action.Gerund[:1]) + action.Gerund[1:]
		for _, character := range Characters {
			mappings[character+" "+verb] = character
		}
	}
	return mappings
}
