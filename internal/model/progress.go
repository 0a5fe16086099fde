package model

import "time"

// UserProgress is unique per (UserID, CategoryID). Its slices only grow.
type UserProgress struct {
	UserID     string `json:"userId"`
	CategoryID string `json:"categoryId"`
	// VideosWatched records every view, so ids repeat. Completion uses the
	// distinct ids while watch counts use every occurrence.
	VideosWatched        []string      `json:"videosWatched"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	QuizAttempts         []QuizAttempt `json:"quizAttempts"`
	CurrentVideoIndex    int           `json:"currentVideoIndex"`
	HasCompletedSequence bool          `json:"hasCompletedSequence"`
}

func NewUserProgress(userID, categoryID string) UserProgress {
	return UserProgress{
		UserID:        userID,
		CategoryID:    categoryID,
		VideosWatched: []string{},
		QuizAttempts:  []QuizAttempt{},
	}
}

type QuizAttempt struct {
	ID string `json:"id"`
	// QuestionID may be synthesized by the quiz and match no stored question.
	QuestionID     string    `json:"questionId"`
	SelectedAnswer string    `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AttemptedAt    time.Time `json:"attemptedAt"`
	TimeTaken      int       `json:"timeTaken"`
	// CategoryID classifies the attempt when QuestionID does not resolve.
	CategoryID string `json:"categoryId,omitempty"`
}
