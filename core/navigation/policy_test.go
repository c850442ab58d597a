package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-web/core/user"
)

func labels(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestFor(t *testing.T) {
	tests := []struct {
		role user.Role
		want []string
	}{
		{role: user.RoleStudent, want: []string{"Home", "Courses", "Lessons", "Assignments", "Submissions"}},
		{role: user.RoleTeacher, want: []string{"Home", "Courses", "Lessons", "Assignments", "Submissions", "Attendances"}},
		{role: user.RoleParent, want: []string{"Home", "Students", "Attendances", "Lessons", "Assignments", "Tuition Fees", "Payments"}},
		{role: user.RoleAdmin, want: []string{"Home", "Courses", "Students", "Groups", "Teachers"}},
		{role: user.RoleAccountant, want: []string{"Home", "Tuition Fees", "Payments"}},
		{role: "", want: []string{"Home", "Courses", "Lessons", "Assignments", "Submissions"}},
		{role: "janitor", want: []string{"Home", "Courses", "Lessons", "Assignments", "Submissions"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			items := For(tc.role)
			assert.Equal(t, tc.want, labels(items))
			assert.Equal(t, "/", items[0].Path)
		})
	}
}

func TestFor_ReturnsCopy(t *testing.T) {
	items := For(user.RoleAdmin)
	items[1].Label = "Hacked"
	assert.Equal(t, "Courses", For(user.RoleAdmin)[1].Label)
}

func TestFor_PathsAreRoutes(t *testing.T) {
	known := make(map[string]bool)
	for _, r := range AllRoutes {
		known[r.Pattern] = true
	}
	for _, role := range user.AllRoles {
		for _, item := range For(role) {
			assert.True(t, known[item.Path], "%s: %s", role, item.Path)
		}
	}
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("/signin"))
	assert.True(t, IsPublic("/registration/"))
	assert.True(t, IsPublic("/signin?next=/"))
	assert.False(t, IsPublic("/"))
	assert.False(t, IsPublic("/admin/students"))
}

func TestAllows(t *testing.T) {
	tests := []struct {
		role user.Role
		path string
		want bool
	}{
		{user.RoleAdmin, "/", true},
		{user.RoleAdmin, "/admin/students", true},
		{user.RoleAdmin, "/admin/students/create", true},
		{user.RoleAdmin, "/parents/payments", false},
		{user.RoleTeacher, "/teacher/submissions/12", true},
		{user.RoleTeacher, "/student/lessons", false},
		{user.RoleStudent, "/student/assignments/3", true},
		{user.RoleParent, "/parents/assignments/3", true},
		{user.RoleAccountant, "/accountant/payments", true},
		{user.RoleAccountant, "/admin-courses", false},
		{"", "/student-courses", true},
		{"", "/signin", true},
		{user.RoleStudent, "/student-coursesX", false},
	}
	for _, tc := range tests {
		t.Run(string(tc.role)+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, Allows(tc.role, tc.path))
		})
	}
}

func TestRoute_Path(t *testing.T) {
	assert.Equal(t, "/teacher/submissions/12", TeacherSubmission.Path(12))
	assert.Equal(t, "/student/assignments", StudentAssignments.Path())
	assert.Equal(t, "/parents/assignments/:id", ParentAssignment.Path())
}

func TestItem_IsActive(t *testing.T) {
	item := Item{Path: "/teacher/lessons", Label: "Lessons"}
	assert.True(t, item.IsActive("/teacher/lessons/"))
	assert.False(t, item.IsActive("/teacher/lessons/2"))
}
