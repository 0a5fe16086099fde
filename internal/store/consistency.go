package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// ConsistencyReport lists broken invariants. Warnings describe states the
// store allows, such as students whose teacher was deleted.
type ConsistencyReport struct {
	Errors   []string
	Warnings []string
}

func (r ConsistencyReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *ConsistencyReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ConsistencyReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CheckConsistency verifies the hand-maintained invariants: teacher rosters
// match the students' teacherId, progress is unique per user and category,
// video order is unique per category and every question answer is valid.
func (s *Store) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report ConsistencyReport

	users, err := s.loadUsers(ctx)
	if err != nil {
		return report, err
	}
	checkRosters(&report, users)

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return report, err
	}
	seen := make(map[[2]string]bool)
	for _, p := range progress {
		key := [2]string{p.UserID, p.CategoryID}
		if seen[key] {
			report.errorf("duplicate progress for user %s in category %s", p.UserID, p.CategoryID)
		}
		seen[key] = true
	}

	videos, err := s.loadVideos(ctx)
	if err != nil {
		return report, err
	}
	orders := make(map[string]map[int]string)
	for _, v := range videos {
		if orders[v.CategoryID] == nil {
			orders[v.CategoryID] = make(map[int]string)
		}
		if other, ok := orders[v.CategoryID][v.Order]; ok {
			report.errorf("videos %s and %s share order %d in category %s", other, v.ID, v.Order, v.CategoryID)
			continue
		}
		orders[v.CategoryID][v.Order] = v.ID
	}

	questions, err := s.loadQuestions(ctx)
	if err != nil {
		return report, err
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			report.errorf("%v", err)
		}
	}
	return report, nil
}

func checkRosters(report *ConsistencyReport, users model.Users) {
	teachers := make(map[string]*model.Teacher)
	for _, t := range users.Teachers() {
		teachers[t.ID] = t
	}
	students := make(map[string]*model.Student)
	for _, st := range users.Students() {
		students[st.ID] = st
	}

	for _, t := range users.Teachers() {
		for _, id := range t.Students {
			st, ok := students[id]
			switch {
			case !ok:
				report.errorf("teacher %s lists unknown student %s", t.ID, id)
			case st.TeacherID != t.ID:
				report.errorf("teacher %s lists student %s who belongs to %s", t.ID, id, st.TeacherID)
			}
		}
	}
	for _, st := range users.Students() {
		t, ok := teachers[st.TeacherID]
		if !ok {
			report.warnf("student %s has no teacher (teacherId %q)", st.ID, st.TeacherID)
			continue
		}
		if !slices.Contains(t.Students, st.ID) {
			report.errorf("student %s is missing from teacher %s's roster", st.ID, t.ID)
		}
	}
}
