package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/quiz"
)

type QuizStore interface {
	AddQuizAttempt(ctx context.Context, userID, categoryID string, attempt model.QuizAttempt) error
}

// ActionQuizCLI asks which action each video shows and records every answer
// in the user's progress for the correct category.
type ActionQuizCLI struct {
	*InteractiveQuizCLI
	store    QuizStore
	userID   string
	rounds   []quiz.Round
	feedback *quiz.Feedback
	attempts []model.QuizAttempt
	total    int
	// askedAt is zero until the current round is shown.
	askedAt time.Time
}

func NewActionQuizCLI(base *InteractiveQuizCLI, store QuizStore, userID string, rounds []quiz.Round, feedback *quiz.Feedback) *ActionQuizCLI {
	return &ActionQuizCLI{
		InteractiveQuizCLI: base,
		store:              store,
		userID:             userID,
		rounds:             rounds,
		feedback:           feedback,
		total:              len(rounds),
	}
}

// Attempts returns the attempts recorded so far.
func (r *ActionQuizCLI) Attempts() []model.QuizAttempt {
	return r.attempts
}

func (r *ActionQuizCLI) Session(ctx context.Context) error {
	if len(r.rounds) == 0 {
		correct, total := quiz.Score(r.attempts)
		_, _ = r.bold.Fprintf(r.stdoutWriter, "You got %d of %d right!\n", correct, total)
		return errEnd
	}

	round := r.rounds[0]
	if r.askedAt.IsZero() {
		r.askedAt = r.now()
	}
	r.printRound(round)

	line, err := r.readLine()
	if err != nil {
		return err
	}
	selected, ok := selectOption(round.Options, line)
	if !ok {
		_, _ = fmt.Fprintf(r.stdoutWriter, "Please answer with a number from 1 to %d.\n\n", len(round.Options))
		return nil
	}

	now := r.now()
	attempt := round.Answer(selected.ID, now.Sub(r.askedAt), now)
	if err := r.store.AddQuizAttempt(ctx, r.userID, round.Correct.ID, attempt); err != nil {
		return fmt.Errorf("store.AddQuizAttempt(%s, %s) > %w", r.userID, round.Correct.ID, err)
	}
	r.attempts = append(r.attempts, attempt)

	sound := r.feedback.Sound(attempt.IsCorrect)
	if attempt.IsCorrect {
		_, _ = fmt.Fprint(r.stdoutWriter, "✅ ")
		_, _ = color.New(color.FgGreen).Fprintf(r.stdoutWriter, "Correct! It's %s\n", r.bold.Sprint(round.Correct.Name))
	} else {
		_, _ = fmt.Fprint(r.stdoutWriter, "❌ ")
		_, _ = color.New(color.FgRed).Fprintf(r.stdoutWriter, "Not quite. It was %s\n", r.bold.Sprint(round.Correct.Name))
	}
	_, _ = fmt.Fprintf(r.stdoutWriter, "   Sound: %s\n\n", r.italic.Sprint(sound.Key()))

	r.rounds = r.rounds[1:]
	r.askedAt = time.Time{}
	return nil
}

func (r *ActionQuizCLI) printRound(round quiz.Round) {
	_, _ = fmt.Fprintf(r.stdoutWriter, "Question %d/%d: which action is this?\n", round.Index+1, r.total)
	_, _ = fmt.Fprintf(r.stdoutWriter, "Video: %s (%s)\n", r.italic.Sprint(round.Video.Title), round.Video.Filename)
	for i, option := range round.Options {
		_, _ = fmt.Fprintf(r.stdoutWriter, "  %d) %s %s\n", i+1, option.Icon, option.Name)
	}
	_, _ = r.bold.Fprint(r.stdoutWriter, "> ")
}

// selectOption accepts a 1-based option number or a category id.
func selectOption(options []model.Category, input string) (model.Category, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return model.Category{}, false
		}
		return options[n-1], true
	}
	for _, option := range options {
		if strings.EqualFold(option.ID, input) {
			return option, true
		}
	}
	return model.Category{}, false
}
