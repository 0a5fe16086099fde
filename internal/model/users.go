// Package model defines the records persisted by the Local Store.
package model

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Profile holds the fields shared by every user.
type Profile struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Photo     string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

// User is either a *Teacher or a *Student.
type User interface {
	Role() Role
	UserProfile() *Profile
}

type Teacher struct {
	Profile  `yaml:",inline"`
	Password string `json:"password" yaml:"password"`
	// Students lists student ids in roster order. The student records live
	// in the user table on their own.
	Students []string `json:"students" yaml:"students"`
}

func (t *Teacher) Role() Role            { return RoleTeacher }
func (t *Teacher) UserProfile() *Profile { return &t.Profile }

func (t *Teacher) MarshalJSON() ([]byte, error) {
	type teacher Teacher
	v := teacher(*t)
	if v.Students == nil {
		v.Students = []string{}
	}
	return json.Marshal(struct {
		teacher
		Role Role `json:"role"`
	}{v, RoleTeacher})
}

type Student struct {
	Profile `yaml:",inline"`
	// TeacherID may point at a teacher that has since been deleted.
	TeacherID string `json:"teacherId" yaml:"teacherId"`
}

func (s *Student) Role() Role            { return RoleStudent }
func (s *Student) UserProfile() *Profile { return &s.Profile }

func (s *Student) MarshalJSON() ([]byte, error) {
	type student Student
	return json.Marshal(struct {
		student
		Role Role `json:"role"`
	}{student(*s), RoleStudent})
}

// FullName joins the first and last name the way the forms build Name.
func FullName(firstName, lastName string) string {
	switch {
	case firstName == "":
		return lastName
	case lastName == "":
		return firstName
	}
	return firstName + " " + lastName
}

// UnmarshalUser decodes one user record using its role field.
func UnmarshalUser(data []byte) (User, error) {
	var header struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}

	switch header.Role {
	case RoleTeacher:
		var t Teacher
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(teacher) > %w", err)
		}
		return &t, nil
	case RoleStudent:
		var s Student
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(student) > %w", err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unknown user role %q", header.Role)
	}
}

// Users is the persisted user table.
type Users []User

// UnmarshalJSON skips records with an unknown role instead of failing the
// whole table.
func (users *Users) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	result := make(Users, 0, len(raws))
	for i, raw := range raws {
		user, err := UnmarshalUser(raw)
		if err != nil {
			slog.Warn("skip unreadable user record", "index", i, "error", err)
			continue
		}
		result = append(result, user)
	}
	*users = result
	return nil
}

func (users Users) Teachers() []*Teacher {
	var teachers []*Teacher
	for _, user := range users {
		if t, ok := user.(*Teacher); ok {
			teachers = append(teachers, t)
		}
	}
	return teachers
}

func (users Users) Students() []*Student {
	var students []*Student
	for _, user := range users {
		if s, ok := user.(*Student); ok {
			students = append(students, s)
		}
	}
	return students
}

// IndexOf returns the position of the user with id, or -1.
func (users Users) IndexOf(id string) int {
	for i, user := range users {
		if user.UserProfile().ID == id {
			return i
		}
	}
	return -1
}
