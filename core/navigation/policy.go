package navigation

import (
	"strings"

	"github.com/trezcool/masomo-web/core/user"
)

// Item is an entry of the navigation menu.
type Item struct {
	Path  string
	Label string
}

var menus = map[user.Role][]Item{
	user.RoleStudent: {
		{Home.Pattern, "Home"},
		{StudentCourses.Pattern, "Courses"},
		{StudentLessons.Pattern, "Lessons"},
		{StudentAssignments.Pattern, "Assignments"},
		{StudentSubmissions.Pattern, "Submissions"},
	},
	user.RoleTeacher: {
		{Home.Pattern, "Home"},
		{TeacherCourses.Pattern, "Courses"},
		{TeacherLessons.Pattern, "Lessons"},
		{TeacherAssignments.Pattern, "Assignments"},
		{TeacherSubmissions.Pattern, "Submissions"},
		{TeacherAttendances.Pattern, "Attendances"},
	},
	user.RoleParent: {
		{Home.Pattern, "Home"},
		{ParentStudents.Pattern, "Students"},
		{ParentAttendances.Pattern, "Attendances"},
		{ParentLessons.Pattern, "Lessons"},
		{ParentAssignments.Pattern, "Assignments"},
		{ParentTuitionFees.Pattern, "Tuition Fees"},
		{ParentPayments.Pattern, "Payments"},
	},
	user.RoleAdmin: {
		{Home.Pattern, "Home"},
		{AdminCourses.Pattern, "Courses"},
		{AdminStudents.Pattern, "Students"},
		{AdminGroups.Pattern, "Groups"},
		{AdminTeachers.Pattern, "Teachers"},
	},
	user.RoleAccountant: {
		{Home.Pattern, "Home"},
		{AccountantTuitionFees.Pattern, "Tuition Fees"},
		{AccountantPayments.Pattern, "Payments"},
	},
}

// For returns the navigation menu of role. Unknown or empty roles get the student menu.
// The returned slice is a copy.
func For(role user.Role) []Item {
	items, ok := menus[role]
	if !ok {
		items = menus[user.RoleStudent]
	}
	return append([]Item(nil), items...)
}

// IsPublic reports whether path can be rendered without an identity.
func IsPublic(path string) bool {
	path = normalize(path)
	for _, r := range PublicRoutes {
		if path == r.Pattern {
			return true
		}
	}
	return false
}

// Allows reports whether role may visit path: public routes, the role's menu entries
// and the pages nested under them (eg. `/teacher/submissions/12`).
func Allows(role user.Role, path string) bool {
	path = normalize(path)
	if IsPublic(path) {
		return true
	}
	for _, item := range For(role) {
		if path == item.Path {
			return true
		}
		if item.Path != "/" && strings.HasPrefix(path, item.Path+"/") {
			return true
		}
	}
	return false
}

// IsActive reports whether item is the menu entry of the current path.
func (item Item) IsActive(path string) bool {
	return normalize(path) == item.Path
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}
