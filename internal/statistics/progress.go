// Package statistics computes the progress figures shown to students and
// teachers. Every function is pure and takes all of its inputs as arguments.
package statistics

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// aliases maps spellings used by older stores onto the category id.
var aliases = map[string]string{
	"eating":   "eat",
	"food":     "eat",
	"feeding":  "eat",
	"drinking": "drink",
	"beverage": "drink",
	"sleeping": "sleep",
	"rest":     "sleep",
	"opening":  "open",
	"opened":   "open",
	"drawing":  "draw",
	"sketch":   "draw",
	"playing":  "play",
	"blowing":  "blow",
	"clapping": "clap",
	"running":  "run",
	"washing":  "wash",
}

// Canon normalizes a category reference so ids written by different
// schema versions compare equal.
func Canon(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if alias, ok := aliases[normalized]; ok {
		return alias
	}
	return normalized
}

// VideoIDsByCategory groups the distinct video ids by canonical category id.
func VideoIDsByCategory(videos []model.Video) map[string]map[string]struct{} {
	result := make(map[string]map[string]struct{})
	for _, v := range videos {
		key := Canon(v.CategoryID)
		if result[key] == nil {
			result[key] = make(map[string]struct{})
		}
		result[key][v.ID] = struct{}{}
	}
	return result
}

func QuestionByID(questions []model.Question) map[string]model.Question {
	result := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		result[q.ID] = q
	}
	return result
}

// findProgress returns the first record of the category, compared by canonical id.
func findProgress(categoryID string, progress []model.UserProgress) (model.UserProgress, bool) {
	key := Canon(categoryID)
	for _, p := range progress {
		if Canon(p.CategoryID) == key {
			return p, true
		}
	}
	return model.UserProgress{}, false
}

// CategoryVideoPercentage is the share of the category's videos watched at
// least once, from 0 to 100.
//
// Watched ids are a set here: watching a video again does not move the
// percentage. VideoWatchCounts counts the same list as a multiset, and the
// two must stay different.
func CategoryVideoPercentage(categoryID string, videoIDsByCategory map[string]map[string]struct{}, progress []model.UserProgress) float64 {
	ids := videoIDsByCategory[Canon(categoryID)]
	p, ok := findProgress(categoryID, progress)
	if len(ids) == 0 || !ok {
		return 0
	}

	watched := make(map[string]struct{})
	for _, id := range p.VideosWatched {
		if _, inCategory := ids[id]; inCategory {
			watched[id] = struct{}{}
		}
	}
	return float64(len(watched)) / float64(len(ids)) * 100
}

type VideoWatchCount struct {
	VideoID string
	Title   string
	Count   int
}

// WatchCounts lists the videos of one category in playback order.
type WatchCounts []VideoWatchCount

// Count returns the tally of videoID, or 0 when it is not in the category.
func (counts WatchCounts) Count(videoID string) int {
	for _, c := range counts {
		if c.VideoID == videoID {
			return c.Count
		}
	}
	return 0
}

// VideoWatchCounts tallies every occurrence of each category video in the
// watched list, so repeat views count.
func VideoWatchCounts(categoryID string, videos []model.Video, progress []model.UserProgress) WatchCounts {
	key := Canon(categoryID)
	var inCategory []model.Video
	for _, v := range videos {
		if Canon(v.CategoryID) == key {
			inCategory = append(inCategory, v)
		}
	}
	slices.SortStableFunc(inCategory, func(a, b model.Video) int {
		return a.Order - b.Order
	})

	occurrences := make(map[string]int)
	if p, ok := findProgress(categoryID, progress); ok {
		for _, id := range p.VideosWatched {
			occurrences[id]++
		}
	}

	counts := make(WatchCounts, 0, len(inCategory))
	seen := make(map[string]bool, len(inCategory))
	for _, v := range inCategory {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		counts = append(counts, VideoWatchCount{VideoID: v.ID, Title: v.Title, Count: occurrences[v.ID]})
	}
	return counts
}

type QuizStats struct {
	CorrectAnswers int
	// TotalQuestions counts every classified attempt, repeats included.
	TotalQuestions int
	// Sufficiency is CorrectAnswers / TotalQuestions * 100, or 0 without attempts.
	Sufficiency       float64
	QuestionsAnswered int
}

// CategoryQuizStats gathers the attempts of every progress record of the
// user and keeps those classified into categoryID. An attempt is classified
// by its own CategoryID first and by its question's category otherwise.
// Attempts that resolve neither way are dropped.
func CategoryQuizStats(categoryID string, progress []model.UserProgress, questionByID map[string]model.Question) QuizStats {
	key := Canon(categoryID)

	var total, correct int
	for _, p := range progress {
		for _, attempt := range p.QuizAttempts {
			category, ok := attemptCategory(attempt, questionByID)
			if !ok || category != key {
				continue
			}
			total++
			if attempt.IsCorrect {
				correct++
			}
		}
	}

	stats := QuizStats{
		CorrectAnswers:    correct,
		TotalQuestions:    total,
		QuestionsAnswered: total,
	}
	if total > 0 {
		stats.Sufficiency = float64(correct) / float64(total) * 100
	}
	return stats
}

func attemptCategory(attempt model.QuizAttempt, questionByID map[string]model.Question) (string, bool) {
	if attempt.CategoryID != "" {
		return Canon(attempt.CategoryID), true
	}
	q, ok := questionByID[attempt.QuestionID]
	if !ok {
		slog.Warn("unmatched quiz attempt", "attemptId", attempt.ID, "questionId", attempt.QuestionID)
		return "", false
	}
	return Canon(q.CategoryID), true
}

// UnresolvedQuestionIDs returns the sorted question ids of attempts that have
// no CategoryID and match no question. Either input being empty yields nil.
func UnresolvedQuestionIDs(questions []model.Question, progress []model.UserProgress) []string {
	if len(questions) == 0 || len(progress) == 0 {
		return nil
	}
	known := QuestionByID(questions)

	missing := make(map[string]struct{})
	for _, p := range progress {
		for _, attempt := range p.QuizAttempts {
			if attempt.CategoryID != "" {
				continue
			}
			if _, ok := known[attempt.QuestionID]; !ok {
				missing[attempt.QuestionID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if len(ids) == 0 {
		return nil
	}
	return ids
}
