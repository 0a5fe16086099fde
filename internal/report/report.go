// Package report assembles per-student progress summaries and writes them
// as markdown and PDF documents.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/statistics"
)

type CategoryProgress struct {
	CategoryID      string
	Name            string
	VideoPercentage float64
	Videos          statistics.WatchCounts
	Quiz            statistics.QuizStats
}

// Watched reports whether any video of the category was played.
func (c CategoryProgress) Watched() bool {
	for _, v := range c.Videos {
		if v.Count > 0 {
			return true
		}
	}
	return false
}

type StudentReport struct {
	StudentID  string
	Name       string
	Categories []CategoryProgress
	// VideoPercentage is the mean of the category percentages.
	VideoPercentage float64
	CorrectAnswers  int
	TotalQuestions  int
	Sufficiency     float64
	// UnresolvedQuestionIDs lists attempts that could not be filed under any category.
	UnresolvedQuestionIDs []string
}

type TeacherReport struct {
	TeacherID string
	Name      string
	Students  []StudentReport
	// MissingStudentIDs are roster entries without a student record.
	MissingStudentIDs []string
}

// Document is the data handed to the report template.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Students    []StudentReport
}

// BuildStudentReport computes the figures of every category for one student.
// progress must hold that student's records only.
func BuildStudentReport(student *model.Student, categories []model.Category, videos []model.Video, questions []model.Question, progress []model.UserProgress) StudentReport {
	videoIDs := statistics.VideoIDsByCategory(videos)
	questionByID := statistics.QuestionByID(questions)

	result := StudentReport{
		StudentID:             student.ID,
		Name:                  student.Name,
		Categories:            make([]CategoryProgress, 0, len(categories)),
		UnresolvedQuestionIDs: statistics.UnresolvedQuestionIDs(questions, progress),
	}

	var percentageSum float64
	for _, c := range categories {
		category := CategoryProgress{
			CategoryID:      c.ID,
			Name:            c.Name,
			VideoPercentage: statistics.CategoryVideoPercentage(c.ID, videoIDs, progress),
			Videos:          statistics.VideoWatchCounts(c.ID, videos, progress),
			Quiz:            statistics.CategoryQuizStats(c.ID, progress, questionByID),
		}
		percentageSum += category.VideoPercentage
		result.CorrectAnswers += category.Quiz.CorrectAnswers
		result.TotalQuestions += category.Quiz.TotalQuestions
		result.Categories = append(result.Categories, category)
	}

	if len(categories) > 0 {
		result.VideoPercentage = percentageSum / float64(len(categories))
	}
	if result.TotalQuestions > 0 {
		result.Sufficiency = float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
	}
	return result
}

// BuildTeacherReport summarizes the students of the teacher's roster, in roster order.
func BuildTeacherReport(teacher *model.Teacher, students []*model.Student, categories []model.Category, videos []model.Video, questions []model.Question, progress []model.UserProgress) TeacherReport {
	byID := make(map[string]*model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	progressByUser := make(map[string][]model.UserProgress)
	for _, p := range progress {
		progressByUser[p.UserID] = append(progressByUser[p.UserID], p)
	}

	result := TeacherReport{TeacherID: teacher.ID, Name: teacher.Name}
	for _, id := range teacher.Students {
		student, ok := byID[id]
		if !ok {
			result.MissingStudentIDs = append(result.MissingStudentIDs, id)
			continue
		}
		result.Students = append(result.Students, BuildStudentReport(student, categories, videos, questions, progressByUser[id]))
	}
	return result
}

func (r StudentReport) Document(now time.Time) Document {
	return Document{
		Title:       "Progress of " + r.Name,
		GeneratedAt: now,
		Students:    []StudentReport{r},
	}
}

func (r TeacherReport) Document(now time.Time) Document {
	return Document{
		Title:       fmt.Sprintf("Class progress of %s", r.Name),
		GeneratedAt: now,
		Students:    r.Students,
	}
}

// Source is the part of the store the reports read.
type Source interface {
	GetStudent(ctx context.Context, id string) (*model.Student, error)
	GetTeacher(ctx context.Context, id string) (*model.Teacher, error)
	GetUsers(ctx context.Context) (model.Users, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetAllVideos(ctx context.Context) ([]model.Video, error)
	GetAllQuestions(ctx context.Context) ([]model.Question, error)
	GetUserProgress(ctx context.Context, userID, categoryID string) ([]model.UserProgress, error)
	GetAllProgress(ctx context.Context) ([]model.UserProgress, error)
}

type catalog struct {
	categories []model.Category
	videos     []model.Video
	questions  []model.Question
}

func loadCatalog(ctx context.Context, src Source) (catalog, error) {
	categories, err := src.GetCategories(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("GetCategories() > %w", err)
	}
	videos, err := src.GetAllVideos(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("GetAllVideos() > %w", err)
	}
	questions, err := src.GetAllQuestions(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("GetAllQuestions() > %w", err)
	}
	return catalog{categories: categories, videos: videos, questions: questions}, nil
}

func LoadStudentReport(ctx context.Context, src Source, studentID string) (StudentReport, error) {
	student, err := src.GetStudent(ctx, studentID)
	if err != nil {
		return StudentReport{}, fmt.Errorf("GetStudent(%s) > %w", studentID, err)
	}
	c, err := loadCatalog(ctx, src)
	if err != nil {
		return StudentReport{}, err
	}
	progress, err := src.GetUserProgress(ctx, studentID, "")
	if err != nil {
		return StudentReport{}, fmt.Errorf("GetUserProgress(%s) > %w", studentID, err)
	}
	return BuildStudentReport(student, c.categories, c.videos, c.questions, progress), nil
}

func LoadTeacherReport(ctx context.Context, src Source, teacherID string) (TeacherReport, error) {
	teacher, err := src.GetTeacher(ctx, teacherID)
	if err != nil {
		return TeacherReport{}, fmt.Errorf("GetTeacher(%s) > %w", teacherID, err)
	}
	users, err := src.GetUsers(ctx)
	if err != nil {
		return TeacherReport{}, fmt.Errorf("GetUsers() > %w", err)
	}
	c, err := loadCatalog(ctx, src)
	if err != nil {
		return TeacherReport{}, err
	}
	progress, err := src.GetAllProgress(ctx)
	if err != nil {
		return TeacherReport{}, fmt.Errorf("GetAllProgress() > %w", err)
	}
	return BuildTeacherReport(teacher, users.Students(), c.categories, c.videos, c.questions, progress), nil
}
