package model

import (
	"errors"
	"fmt"
)

var ErrInvalidQuestion = errors.New("invalid question")

type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	// VideoCount is kept for stored data compatibility. Readers should rely
	// on the count the store derives from the video table.
	VideoCount int  `json:"videoCount" yaml:"videoCount"`
	Unlocked   bool `json:"unlocked" yaml:"unlocked"`
}

type Video struct {
	ID         string `json:"id" yaml:"id"`
	CategoryID string `json:"categoryId" yaml:"categoryId"`
	Title      string `json:"title" yaml:"title"`
	// Filename is a logical asset key such as "Eat/dog_eating.mp4".
	Filename string `json:"filename" yaml:"filename"`
	Duration int    `json:"duration" yaml:"duration"`
	Order    int    `json:"order" yaml:"order"`
}

type AnswerFormat string

const (
	AnswerFormatText AnswerFormat = "text"
	AnswerFormatIcon AnswerFormat = "icon"
)

type QuestionOption struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

type Question struct {
	ID            string           `json:"id" yaml:"id"`
	VideoID       string           `json:"videoId" yaml:"videoId"`
	CategoryID    string           `json:"categoryId" yaml:"categoryId"`
	Question      string           `json:"question" yaml:"question"`
	Options       []QuestionOption `json:"options" yaml:"options"`
	CorrectAnswer string           `json:"correctAnswer" yaml:"correctAnswer"`
	AnswerFormat  AnswerFormat     `json:"answerFormat" yaml:"answerFormat"`
}

// Validate checks that option ids are unique and the correct answer names one of them.
func (q Question) Validate() error {
	seen := make(map[string]bool, len(q.Options))
	for _, option := range q.Options {
		if seen[option.ID] {
			return fmt.Errorf("%w: %s has duplicate option id %q", ErrInvalidQuestion, q.ID, option.ID)
		}
		seen[option.ID] = true
	}
	if !seen[q.CorrectAnswer] {
		return fmt.Errorf("%w: %s correct answer %q is not an option", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	switch q.AnswerFormat {
	case AnswerFormatText, AnswerFormatIcon:
	default:
		return fmt.Errorf("%w: %s has unknown answer format %q", ErrInvalidQuestion, q.ID, q.AnswerFormat)
	}
	return nil
}
