package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/report"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

// Printer writes the non-interactive command output.
type Printer struct {
	stdoutWriter io.Writer
	bold         *color.Color
	green        *color.Color
	yellow       *color.Color
	red          *color.Color
}

func NewPrinter(stdout io.Writer) *Printer {
	return &Printer{
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		green:        color.New(color.FgGreen),
		yellow:       color.New(color.FgYellow),
		red:          color.New(color.FgRed),
	}
}

func (p *Printer) PrintMigrations(storedVersion string, results []store.MigrationResult) {
	if len(results) == 0 {
		_, _ = p.green.Fprintf(p.stdoutWriter, "Schema version %s is up to date\n", storedVersion)
		return
	}
	_, _ = fmt.Fprintf(p.stdoutWriter, "Migrated from version %q to %s\n", storedVersion, store.SchemaVersion)
	for _, result := range results {
		status := "unchanged"
		if result.Changed {
			status = p.green.Sprint("applied")
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "  %-24s %s\n", result.Name, status)
	}
}

// PrintMigrationStatus lists the steps and whether the store needs them.
func (p *Printer) PrintMigrationStatus(storedVersion string) {
	_, _ = fmt.Fprintf(p.stdoutWriter, "Stored version: %q, target version: %s\n", storedVersion, store.SchemaVersion)
	pending := storedVersion != store.SchemaVersion
	for i, name := range store.MigrationNames() {
		status := p.green.Sprint("done")
		if pending {
			status = p.yellow.Sprint("pending")
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "  %d. %-24s %s\n", i+1, name, status)
	}
}

func (p *Printer) PrintConsistency(r store.ConsistencyReport) {
	for _, msg := range r.Errors {
		_, _ = p.red.Fprintf(p.stdoutWriter, "error: %s\n", msg)
	}
	for _, msg := range r.Warnings {
		_, _ = p.yellow.Fprintf(p.stdoutWriter, "warning: %s\n", msg)
	}
	if r.OK() {
		_, _ = p.green.Fprintf(p.stdoutWriter, "No problems found (%d warnings)\n", len(r.Warnings))
	}
}

func (p *Printer) PrintTeachers(teachers []*model.Teacher) {
	for _, t := range teachers {
		_, _ = fmt.Fprintf(p.stdoutWriter, "%-28s %-24s %d students\n", t.ID, t.Name, len(t.Students))
	}
}

func (p *Printer) PrintStudents(students []*model.Student) {
	for _, s := range students {
		_, _ = fmt.Fprintf(p.stdoutWriter, "%-28s %-24s teacher: %s\n", s.ID, s.Name, s.TeacherID)
	}
}

// PrintCurrentUser also names the signed-in teacher when a student was
// picked on their behalf.
func (p *Printer) PrintCurrentUser(user model.User, teacher *model.Teacher) {
	if user == nil {
		_, _ = fmt.Fprintln(p.stdoutWriter, "Nobody is signed in")
	} else {
		profile := user.UserProfile()
		_, _ = fmt.Fprintf(p.stdoutWriter, "Current %s: %s (%s)\n", user.Role(), p.bold.Sprint(profile.Name), profile.ID)
	}
	if teacher != nil && (user == nil || user.UserProfile().ID != teacher.ID) {
		_, _ = fmt.Fprintf(p.stdoutWriter, "Current teacher: %s (%s)\n", p.bold.Sprint(teacher.Name), teacher.ID)
	}
}

func (p *Printer) PrintCategories(categories []model.Category) {
	for _, c := range categories {
		lock := ""
		if !c.Unlocked {
			lock = " (locked)"
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s %-8s %-10s %d videos%s\n", c.Icon, c.ID, c.Name, c.VideoCount, lock)
	}
}

func (p *Printer) PrintVideos(videos []model.Video) {
	for _, v := range videos {
		_, _ = fmt.Fprintf(p.stdoutWriter, "%d. %-8s %-20s %s\n", v.Order, v.ID, v.Title, v.Filename)
	}
}

// PrintStudentReport prints the summary lines of one student report.
func (p *Printer) PrintStudentReport(r report.StudentReport) {
	_, _ = p.bold.Fprintf(p.stdoutWriter, "%s (%s)\n", r.Name, r.StudentID)
	_, _ = fmt.Fprintf(p.stdoutWriter, "  Videos watched: %.0f%%\n", r.VideoPercentage)
	_, _ = fmt.Fprintf(p.stdoutWriter, "  Quiz: %d/%d correct (%.0f%%)\n", r.CorrectAnswers, r.TotalQuestions, r.Sufficiency)
	for _, c := range r.Categories {
		if !c.Watched() && c.Quiz.TotalQuestions == 0 {
			continue
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "  %-10s videos %3.0f%%  quiz %d/%d\n", c.Name, c.VideoPercentage, c.Quiz.CorrectAnswers, c.Quiz.TotalQuestions)
	}
	if len(r.UnresolvedQuestionIDs) > 0 {
		_, _ = p.yellow.Fprintf(p.stdoutWriter, "  Unmatched quiz attempts: %v\n", r.UnresolvedQuestionIDs)
	}
}

func (p *Printer) PrintTeacherReport(r report.TeacherReport) {
	_, _ = p.bold.Fprintf(p.stdoutWriter, "Class of %s (%d students)\n\n", r.Name, len(r.Students))
	for _, s := range r.Students {
		p.PrintStudentReport(s)
	}
	if len(r.MissingStudentIDs) > 0 {
		_, _ = p.yellow.Fprintf(p.stdoutWriter, "Roster entries without a student: %v\n", r.MissingStudentIDs)
	}
}
