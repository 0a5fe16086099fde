package store

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

// NewTeacher is the input of AddTeacher. Name defaults to "First Last".
type NewTeacher struct {
	Name      string
	FirstName string
	LastName  string
	Photo     string
	Password  string
}

// NewStudent is the input of AddStudent. Name defaults to "First Last".
type NewStudent struct {
	Name      string
	FirstName string
	LastName  string
	Photo     string
	TeacherID string
}

func (s *Store) loadUsers(ctx context.Context) (model.Users, error) {
	users, _, err := readJSON[model.Users](ctx, s.kv, keyUsers)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = model.Users{}
	}
	return users, nil
}

func (s *Store) GetUsers(ctx context.Context) (model.Users, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers(ctx)
}

func (s *Store) GetTeachers(ctx context.Context) ([]*model.Teacher, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	return users.Teachers(), nil
}

// GetStudentsByTeacher filters students by their teacherId, not by the
// teacher's roster list.
func (s *Store) GetStudentsByTeacher(ctx context.Context, teacherID string) ([]*model.Student, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	var students []*model.Student
	for _, student := range users.Students() {
		if student.TeacherID == teacherID {
			students = append(students, student)
		}
	}
	return students, nil
}

func (s *Store) TeacherStudentCount(ctx context.Context, teacherID string) (int, error) {
	students, err := s.GetStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return 0, err
	}
	return len(students), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := users.IndexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return users[i], nil
}

func (s *Store) GetTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	teacher, _ := findTeacher(users, id)
	if teacher == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrTeacherNotFound)
	}
	return teacher, nil
}

func (s *Store) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	student, _ := findStudent(users, id)
	if student == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrStudentNotFound)
	}
	return student, nil
}

func findTeacher(users model.Users, id string) (*model.Teacher, int) {
	for i, user := range users {
		if t, ok := user.(*model.Teacher); ok && t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func findStudent(users model.Users, id string) (*model.Student, int) {
	for i, user := range users {
		if st, ok := user.(*model.Student); ok && st.ID == id {
			return st, i
		}
	}
	return nil, -1
}

func (s *Store) AddTeacher(ctx context.Context, input NewTeacher) (*model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	password, err := s.storedPassword(input.Password)
	if err != nil {
		return nil, err
	}

	teacher := &model.Teacher{
		Profile:  newProfile(s.newID("teacher"), input.Name, input.FirstName, input.LastName, input.Photo),
		Password: password,
		Students: []string{},
	}
	users = append(users, teacher)
	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return nil, err
	}
	return teacher, nil
}

// AddStudent also appends the new id to the owning teacher's roster when
// that teacher exists.
func (s *Store) AddStudent(ctx context.Context, input NewStudent) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Profile:   newProfile(s.newID("student"), input.Name, input.FirstName, input.LastName, input.Photo),
		TeacherID: input.TeacherID,
	}
	users = append(users, student)
	if teacher, _ := findTeacher(users, input.TeacherID); teacher != nil {
		teacher.Students = append(teacher.Students, student.ID)
	}

	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return nil, err
	}
	return student, nil
}

func newProfile(id, name, firstName, lastName, photo string) model.Profile {
	if name == "" {
		name = model.FullName(firstName, lastName)
	}
	return model.Profile{ID: id, Name: name, FirstName: firstName, LastName: lastName, Photo: photo}
}

// DeleteTeacher leaves the teacher's students in place with a dangling
// teacherId. Both session pointers are cleared when the teacher is logged in.
func (s *Store) DeleteTeacher(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	_, i := findTeacher(users, id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrTeacherNotFound)
	}
	users = slices.Delete(users, i, i+1)
	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return err
	}

	current, err := s.loadCurrentTeacher(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.ID == id {
		return s.removeKeys(ctx, keyCurrentTeacher, keyCurrentUser)
	}
	return nil
}

// DeleteStudent removes the id from its teacher's roster and clears the
// current user pointer when it points at the student.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	student, i := findStudent(users, id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrStudentNotFound)
	}
	if teacher, _ := findTeacher(users, student.TeacherID); teacher != nil {
		teacher.Students = slices.DeleteFunc(teacher.Students, func(studentID string) bool {
			return studentID == id
		})
	}
	users = slices.Delete(users, i, i+1)
	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return err
	}

	current, err := s.loadCurrentUser(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.UserProfile().ID == id {
		return s.removeKeys(ctx, keyCurrentUser)
	}
	return nil
}

// UpdateStudent replaces the whole record and refreshes the current user
// pointer when it holds the same student.
func (s *Store) UpdateStudent(ctx context.Context, updated *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	_, i := findStudent(users, updated.ID)
	if i < 0 {
		return fmt.Errorf("%s: %w", updated.ID, ErrStudentNotFound)
	}
	users[i] = updated
	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return err
	}

	current, err := s.loadCurrentUser(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.UserProfile().ID == updated.ID {
		return writeJSON(ctx, s.kv, keyCurrentUser, updated)
	}
	return nil
}

// UpdateTeacher replaces the whole record, including the roster, and
// refreshes whichever session pointers hold the same teacher.
func (s *Store) UpdateTeacher(ctx context.Context, updated *model.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	existing, i := findTeacher(users, updated.ID)
	if i < 0 {
		return fmt.Errorf("%s: %w", updated.ID, ErrTeacherNotFound)
	}

	record := *updated
	if record.Password != existing.Password {
		if record.Password, err = s.storedPassword(record.Password); err != nil {
			return err
		}
	}
	if record.Students == nil {
		record.Students = []string{}
	}
	users[i] = &record
	if err := writeJSON(ctx, s.kv, keyUsers, users); err != nil {
		return err
	}

	currentTeacher, err := s.loadCurrentTeacher(ctx)
	if err != nil {
		return err
	}
	if currentTeacher != nil && currentTeacher.ID == record.ID {
		if err := writeJSON(ctx, s.kv, keyCurrentTeacher, &record); err != nil {
			return err
		}
	}
	currentUser, err := s.loadCurrentUser(ctx)
	if err != nil {
		return err
	}
	if currentUser != nil && currentUser.UserProfile().ID == record.ID {
		return writeJSON(ctx, s.kv, keyCurrentUser, &record)
	}
	return nil
}

// AuthenticateTeacher reports whether password matches the stored one.
// Unknown ids authenticate as false without an error.
func (s *Store) AuthenticateTeacher(ctx context.Context, id, password string) (bool, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return false, err
	}
	teacher, _ := findTeacher(users, id)
	if teacher == nil {
		return false, nil
	}
	return passwordMatches(teacher.Password, password), nil
}

func (s *Store) storedPassword(password string) (string, error) {
	if !s.hashPasswords || isBcryptHash(password) {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword() > %w", err)
	}
	return string(hashed), nil
}

func isBcryptHash(value string) bool {
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

// passwordMatches compares bcrypt records by hash and anything else as
// plain text, so stores seeded before hashing was enabled keep working.
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
