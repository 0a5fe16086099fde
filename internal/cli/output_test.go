package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/report"
	"github.com/at-ishikawa/littlesteps/internal/statistics"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

func TestPrinter_PrintMigrations(t *testing.T) {
	tests := []struct {
		name          string
		storedVersion string
		results       []store.MigrationResult
		want          []string
	}{
		{
			name:          "nothing to run",
			storedVersion: store.SchemaVersion,
			want:          []string{"Schema version 10 is up to date"},
		},
		{
			name:          "steps from a legacy store",
			storedVersion: "6",
			results: []store.MigrationResult{
				{Name: "fix-mea-typo", Changed: true},
				{Name: "add-play-category", Changed: false},
			},
			want: []string{
				`Migrated from version "6" to 10`,
				"fix-mea-typo             applied",
				"add-play-category        unchanged",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			NewPrinter(&stdout).PrintMigrations(tt.storedVersion, tt.results)
			for _, want := range tt.want {
				assert.Contains(t, stdout.String(), want)
			}
		})
	}
}

func TestPrinter_PrintMigrationStatus(t *testing.T) {
	tests := []struct {
		storedVersion string
		wantStatus    string
	}{
		{storedVersion: "", wantStatus: "pending"},
		{storedVersion: "9", wantStatus: "pending"},
		{storedVersion: store.SchemaVersion, wantStatus: "done"},
	}

	for _, tt := range tests {
		t.Run(tt.storedVersion, func(t *testing.T) {
			var stdout bytes.Buffer
			NewPrinter(&stdout).PrintMigrationStatus(tt.storedVersion)
			assert.Contains(t, stdout.String(), "1. fix-mea-typo")
			assert.Contains(t, stdout.String(), "6. add-oldman-videos")
			assert.Equal(t, len(store.MigrationNames()), bytes.Count(stdout.Bytes(), []byte(tt.wantStatus)))
		})
	}
}

func TestPrinter_PrintConsistency(t *testing.T) {
	tests := []struct {
		name   string
		report store.ConsistencyReport
		want   []string
		not    []string
	}{
		{
			name:   "clean store",
			report: store.ConsistencyReport{Warnings: []string{"student student_9 has unknown teacher teacher_9"}},
			want:   []string{"warning: student student_9 has unknown teacher teacher_9", "No problems found (1 warnings)"},
		},
		{
			name:   "broken roster",
			report: store.ConsistencyReport{Errors: []string{"teacher teacher_1 lists student_9 twice"}},
			want:   []string{"error: teacher teacher_1 lists student_9 twice"},
			not:    []string{"No problems found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			NewPrinter(&stdout).PrintConsistency(tt.report)
			for _, want := range tt.want {
				assert.Contains(t, stdout.String(), want)
			}
			for _, not := range tt.not {
				assert.NotContains(t, stdout.String(), not)
			}
		})
	}
}

func TestPrinter_PrintCurrentUser(t *testing.T) {
	teacher := &model.Teacher{Profile: model.Profile{ID: "teacher_1", Name: "Ms. Johnson"}}
	student := &model.Student{Profile: model.Profile{ID: "student_1", Name: "Alex Thompson"}}

	tests := []struct {
		name    string
		user    model.User
		teacher *model.Teacher
		want    string
	}{
		{name: "nobody", want: "Nobody is signed in\n"},
		{name: "teacher", user: teacher, teacher: teacher, want: "Current teacher: Ms. Johnson (teacher_1)\n"},
		{name: "student picked by a teacher", user: student, teacher: teacher, want: "Current student: Alex Thompson (student_1)\nCurrent teacher: Ms. Johnson (teacher_1)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			NewPrinter(&stdout).PrintCurrentUser(tt.user, tt.teacher)
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestPrinter_PrintCatalog(t *testing.T) {
	var stdout bytes.Buffer
	p := NewPrinter(&stdout)
	p.PrintCategories([]model.Category{
		{ID: "eat", Name: "Eat", Icon: "restaurant", VideoCount: 6, Unlocked: true},
		{ID: "wash", Name: "Wash", Icon: "water", VideoCount: 5},
	})
	p.PrintVideos([]model.Video{{ID: "eat_1", Title: "Dog", Filename: "Eat/dog_eating.mp4", Order: 1}})

	assert.Equal(t, "restaurant eat      Eat        6 videos\n"+
		"water wash     Wash       5 videos (locked)\n"+
		"1. eat_1    Dog                  Eat/dog_eating.mp4\n", stdout.String())
}

func TestPrinter_PrintTeacherReport(t *testing.T) {
	var stdout bytes.Buffer
	NewPrinter(&stdout).PrintTeacherReport(report.TeacherReport{
		TeacherID: "teacher_1",
		Name:      "Ms. Johnson",
		Students: []report.StudentReport{
			{
				StudentID: "student_1",
				Name:      "Alex Thompson",
				Categories: []report.CategoryProgress{
					{
						CategoryID:      "eat",
						Name:            "Eat",
						VideoPercentage: 33.33,
						Videos:          statistics.WatchCounts{{VideoID: "eat_1", Title: "Dog", Count: 2}},
						Quiz:            statistics.QuizStats{CorrectAnswers: 1, TotalQuestions: 2, Sufficiency: 50},
					},
					{CategoryID: "drink", Name: "Drink"},
				},
				VideoPercentage:       3.33,
				CorrectAnswers:        1,
				TotalQuestions:        2,
				Sufficiency:           50,
				UnresolvedQuestionIDs: []string{"q_gone"},
			},
		},
		MissingStudentIDs: []string{"student_gone"},
	})

	output := stdout.String()
	for _, want := range []string{
		"Class of Ms. Johnson (1 students)",
		"Alex Thompson (student_1)",
		"Videos watched: 3%",
		"Quiz: 1/2 correct (50%)",
		"Eat        videos  33%  quiz 1/2",
		"Unmatched quiz attempts: [q_gone]",
		"Roster entries without a student: [student_gone]",
	} {
		assert.Contains(t, output, want)
	}
	assert.NotContains(t, output, "Drink")
}
