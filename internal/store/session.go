package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// The session pointers hold full copies of the user records.

func (s *Store) loadCurrentUser(ctx context.Context) (model.User, error) {
	raw, ok, err := s.kv.Get(ctx, keyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("kv.Get(%s) > %w", keyCurrentUser, err)
	}
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	user, err := model.UnmarshalUser(raw)
	if err != nil {
		slog.Warn("ignore corrupt stored value", "key", keyCurrentUser, "error", err)
		return nil, nil
	}
	return user, nil
}

func (s *Store) loadCurrentTeacher(ctx context.Context) (*model.Teacher, error) {
	teacher, _, err := readJSON[*model.Teacher](ctx, s.kv, keyCurrentTeacher)
	return teacher, err
}

// GetCurrentUser returns nil when nobody is selected.
func (s *Store) GetCurrentUser(ctx context.Context) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCurrentUser(ctx)
}

func (s *Store) SetCurrentUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(ctx, s.kv, keyCurrentUser, user)
}

// GetCurrentTeacher returns nil when no teacher is logged in.
func (s *Store) GetCurrentTeacher(ctx context.Context) (*model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCurrentTeacher(ctx)
}

func (s *Store) SetCurrentTeacher(ctx context.Context, teacher *model.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(ctx, s.kv, keyCurrentTeacher, teacher)
}

// LoginTeacher authenticates the teacher and makes it both the current
// teacher and the current user.
func (s *Store) LoginTeacher(ctx context.Context, id, password string) (*model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	teacher, _ := findTeacher(users, id)
	if teacher == nil || !passwordMatches(teacher.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if err := writeJSON(ctx, s.kv, keyCurrentUser, teacher); err != nil {
		return nil, err
	}
	if err := writeJSON(ctx, s.kv, keyCurrentTeacher, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

// SelectStudent makes the student the current user, keeping the teacher session.
func (s *Store) SelectStudent(ctx context.Context, id string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	student, _ := findStudent(users, id)
	if student == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrStudentNotFound)
	}
	if err := writeJSON(ctx, s.kv, keyCurrentUser, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeKeys(ctx, keyCurrentUser, keyCurrentTeacher)
}
