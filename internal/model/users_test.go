package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_JSON(t *testing.T) {
	users := Users{
		&Teacher{
			Profile:  Profile{ID: "teacher_1", Name: "Ms. Johnson", FirstName: "Sarah", LastName: "Johnson"},
			Password: "demo123",
		},
		&Student{
			Profile:   Profile{ID: "student_1", Name: "Alex Thompson", FirstName: "Alex", LastName: "Thompson", Photo: "internal_icon_3"},
			TeacherID: "teacher_1",
		},
	}

	data, err := json.Marshal(users)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"teacher_1","name":"Ms. Johnson","firstName":"Sarah","lastName":"Johnson","password":"demo123","students":[],"role":"teacher"},
		{"id":"student_1","name":"Alex Thompson","firstName":"Alex","lastName":"Thompson","photo":"internal_icon_3","teacherId":"teacher_1","role":"student"}
	]`, string(data))

	var got Users
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)

	teacher, ok := got[0].(*Teacher)
	require.True(t, ok)
	assert.Equal(t, "demo123", teacher.Password)
	assert.Equal(t, []string{}, teacher.Students)

	student, ok := got[1].(*Student)
	require.True(t, ok)
	assert.Equal(t, "teacher_1", student.TeacherID)
	assert.Equal(t, RoleStudent, student.Role())
}

func TestUsers_UnmarshalJSON_SkipsUnknownRoles(t *testing.T) {
	var got Users
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"admin_1","role":"admin"},
		{"id":"student_1","role":"student","teacherId":"teacher_1"}
	]`), &got))

	require.Len(t, got, 1)
	assert.Equal(t, "student_1", got[0].UserProfile().ID)
}

func TestUsers_Projections(t *testing.T) {
	users := Users{
		&Teacher{Profile: Profile{ID: "teacher_1"}},
		&Student{Profile: Profile{ID: "student_1"}},
		&Student{Profile: Profile{ID: "student_2"}},
	}

	assert.Len(t, users.Teachers(), 1)
	assert.Len(t, users.Students(), 2)
	assert.Equal(t, 2, users.IndexOf("student_2"))
	assert.Equal(t, -1, users.IndexOf("missing"))
}

func TestUnmarshalUser(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantRole Role
		wantErr  bool
	}{
		{name: "teacher", data: `{"id":"t","role":"teacher","students":["s"]}`, wantRole: RoleTeacher},
		{name: "student", data: `{"id":"s","role":"student"}`, wantRole: RoleStudent},
		{name: "missing role", data: `{"id":"x"}`, wantErr: true},
		{name: "broken json", data: `{"id":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalUser([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role())
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Sarah Johnson", FullName("Sarah", "Johnson"))
	assert.Equal(t, "Sarah", FullName("Sarah", ""))
	assert.Equal(t, "Johnson", FullName("", "Johnson"))
}
