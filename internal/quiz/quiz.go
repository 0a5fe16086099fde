// Package quiz builds the "which action is this?" rounds and turns answers
// into quiz attempts.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/littlesteps/internal/assets"
	"github.com/at-ishikawa/littlesteps/internal/model"
)

const (
	DefaultQuestions = 5
	optionsPerRound  = 3
)

var ErrNotEnoughCategories = errors.New("need at least 3 categories with videos to play a quiz")

// Round shows one video and asks which of the options it belongs to.
type Round struct {
	// Index is 0-based within the quiz.
	Index   int
	Video   model.Video
	Correct model.Category
	Options []model.Category
}

func (r Round) IsCorrect(categoryID string) bool {
	return categoryID == r.Correct.ID
}

// QuestionID is the synthesized id q_<category>_<index+1>. It does not
// match a stored question, so attempts also carry the category.
func (r Round) QuestionID() string {
	return fmt.Sprintf("q_%s_%d", r.Correct.ID, r.Index+1)
}

// Answer records the selection as an attempt filed under the correct category.
func (r Round) Answer(selectedCategoryID string, elapsed time.Duration, now time.Time) model.QuizAttempt {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return model.QuizAttempt{
		ID:             fmt.Sprintf("attempt_%d_%s", now.UnixMilli(), random[:9]),
		QuestionID:     r.QuestionID(),
		SelectedAnswer: selectedCategoryID,
		IsCorrect:      r.IsCorrect(selectedCategoryID),
		AttemptedAt:    now,
		TimeTaken:      max(int(elapsed.Round(time.Second)/time.Second), 1),
		CategoryID:     r.Correct.ID,
	}
}

type Generator struct {
	rng *rand.Rand
}

// NewGenerator uses rng for every random choice. A nil rng is seeded randomly.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate builds n rounds, DefaultQuestions when n is not positive. Only
// categories that have videos take part.
func (g *Generator) Generate(categories []model.Category, videos []model.Video, n int) ([]Round, error) {
	if n <= 0 {
		n = DefaultQuestions
	}

	byCategory := make(map[string][]model.Video)
	for _, v := range videos {
		byCategory[v.CategoryID] = append(byCategory[v.CategoryID], v)
	}
	eligible := slices.DeleteFunc(slices.Clone(categories), func(c model.Category) bool {
		return len(byCategory[c.ID]) == 0
	})
	if len(eligible) < optionsPerRound {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughCategories, len(eligible))
	}

	rounds := make([]Round, 0, n)
	for i := range n {
		correct := eligible[g.rng.IntN(len(eligible))]
		candidates := byCategory[correct.ID]
		video := candidates[g.rng.IntN(len(candidates))]

		others := slices.DeleteFunc(slices.Clone(eligible), func(c model.Category) bool {
			return c.ID == correct.ID
		})
		g.rng.Shuffle(len(others), func(a, b int) { others[a], others[b] = others[b], others[a] })

		options := append([]model.Category{correct}, others[:optionsPerRound-1]...)
		g.rng.Shuffle(len(options), func(a, b int) { options[a], options[b] = options[b], options[a] })

		rounds = append(rounds, Round{Index: i, Video: video, Correct: correct, Options: options})
	}
	return rounds, nil
}

// Feedback picks the sound played after each answer of one quiz session.
type Feedback struct {
	rng              *rand.Rand
	consecutiveWrong int
}

func NewFeedback(rng *rand.Rand) *Feedback {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Feedback{rng: rng}
}

// Sound returns a random cheer for a correct answer. From the second wrong
// answer in a row it asks to try the quiz again.
func (f *Feedback) Sound(correct bool) assets.FeedbackSound {
	if correct {
		f.consecutiveWrong = 0
		return assets.CorrectSounds[f.rng.IntN(len(assets.CorrectSounds))]
	}
	f.consecutiveWrong++
	if f.consecutiveWrong >= 2 {
		return assets.SoundTryOneMoreTime
	}
	return assets.WrongSounds[f.rng.IntN(len(assets.WrongSounds))]
}

// Score counts the correct attempts.
func Score(attempts []model.QuizAttempt) (correct, total int) {
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
	}
	return correct, len(attempts)
}
