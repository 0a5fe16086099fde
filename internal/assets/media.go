package assets

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// The media files themselves are bundled by the player. This package only
// derives the keys the player resolves.

const (
	MinNarrationLevel = 1
	MaxNarrationLevel = 3
)

var ErrNoCharacter = errors.New("video filename has no character part")

// CharacterOf returns the lower-cased character of a filename such as
// "Eat/dog_eating.mp4".
func CharacterOf(video model.Video) (string, error) {
	base := strings.TrimSuffix(path.Base(video.Filename), path.Ext(video.Filename))
	character, _, found := strings.Cut(base, "_")
	if !found || character == "" {
		return "", fmt.Errorf("%w: %q", ErrNoCharacter, video.Filename)
	}
	return strings.ToLower(character), nil
}

// NarrationKey returns the audio clip key for the video at the given level.
// Level 1 narrates the category, levels 2 and 3 narrate the character.
func NarrationKey(categoryID string, level int, video model.Video) (string, error) {
	switch {
	case level == MinNarrationLevel:
		return fmt.Sprintf("%s_%dlevel", categoryID, level), nil
	case level > MinNarrationLevel && level <= MaxNarrationLevel:
		character, err := CharacterOf(video)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s_%s_%dlevel", character, categoryID, level), nil
	default:
		return "", fmt.Errorf("narration level %d is outside %d-%d", level, MinNarrationLevel, MaxNarrationLevel)
	}
}

// ThumbnailKey swaps the video extension for the still image one.
func ThumbnailKey(video model.Video) string {
	return strings.TrimSuffix(video.Filename, path.Ext(video.Filename)) + ".jpg"
}

type FeedbackSound string

const (
	SoundWow            FeedbackSound = "wow"
	SoundGreat          FeedbackSound = "great"
	SoundGreatJob       FeedbackSound = "great_job"
	SoundYouGotItRight  FeedbackSound = "you_got_it_right"
	SoundCool           FeedbackSound = "cool"
	SoundWrongAnswer    FeedbackSound = "that_is_a_wrong_answer"
	SoundAnotherTry     FeedbackSound = "another_try"
	SoundTryOneMoreTime FeedbackSound = "try_quiz_one_more_time"
)

var (
	CorrectSounds = []FeedbackSound{SoundWow, SoundGreat, SoundGreatJob, SoundYouGotItRight, SoundCool}
	WrongSounds   = []FeedbackSound{SoundWrongAnswer, SoundAnotherTry}
)

// Key is the quiz audio asset key, e.g. "quiz/great_job.mp3".
func (s FeedbackSound) Key() string {
	return "quiz/" + string(s) + ".mp3"
}
