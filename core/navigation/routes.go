package navigation

import (
	"fmt"
	"strings"
)

// Route is a page of the application. Its Pattern uses echo-style `:param` segments.
type Route struct {
	Name    string
	Pattern string
}

// Path fills the route parameters in order.
func (r Route) Path(args ...interface{}) string {
	if len(args) == 0 {
		return r.Pattern
	}
	segments := strings.Split(r.Pattern, "/")
	i := 0
	for idx, seg := range segments {
		if strings.HasPrefix(seg, ":") && i < len(args) {
			segments[idx] = fmt.Sprint(args[i])
			i++
		}
	}
	return strings.Join(segments, "/")
}

// Routes
var (
	SignIn       = Route{Name: "signIn", Pattern: "/signin"}
	Registration = Route{Name: "registration", Pattern: "/registration"}
	Home         = Route{Name: "homePage", Pattern: "/"}

	StudentCourses = Route{Name: "studentCourses", Pattern: "/student-courses"}
	TeacherCourses = Route{Name: "teacherCourses", Pattern: "/teacher-courses"}
	AdminCourses   = Route{Name: "adminCourses", Pattern: "/admin-courses"}

	AdminStudents = Route{Name: "adminStudents", Pattern: "/admin/students"}
	AdminGroups   = Route{Name: "adminGroups", Pattern: "/admin/groups"}
	AdminTeachers = Route{Name: "adminTeachers", Pattern: "/admin/teachers"}

	TeacherLessons     = Route{Name: "teacherLessons", Pattern: "/teacher/lessons"}
	TeacherAssignments = Route{Name: "teacherAssignments", Pattern: "/teacher/assignments"}
	TeacherSubmissions = Route{Name: "teacherSubmissions", Pattern: "/teacher/submissions"}
	TeacherSubmission  = Route{Name: "teacherSubmission", Pattern: "/teacher/submissions/:id"}
	TeacherAttendances = Route{Name: "teacherAttendances", Pattern: "/teacher/attendances"}

	StudentLessons     = Route{Name: "studentLessons", Pattern: "/student/lessons"}
	StudentAssignments = Route{Name: "studentAssignments", Pattern: "/student/assignments"}
	StudentAssignment  = Route{Name: "studentAssignment", Pattern: "/student/assignments/:id"}
	StudentSubmissions = Route{Name: "studentSubmissions", Pattern: "/student/submissions"}

	ParentStudents    = Route{Name: "parentStudents", Pattern: "/parents/students"}
	ParentAttendances = Route{Name: "parentsAttendances", Pattern: "/parents/attendances"}
	ParentLessons     = Route{Name: "parentsLessons", Pattern: "/parents/lessons"}
	ParentAssignments = Route{Name: "parentsAssignments", Pattern: "/parents/assignments"}
	ParentAssignment  = Route{Name: "parentsAssignment", Pattern: "/parents/assignments/:id"}
	ParentTuitionFees = Route{Name: "parentsTuitionFees", Pattern: "/parents/tuition-fees"}
	ParentPayments    = Route{Name: "parentsPayments", Pattern: "/parents/payments"}

	AccountantTuitionFees = Route{Name: "accountantTuitionFees", Pattern: "/accountant/tuition-fees"}
	AccountantPayments    = Route{Name: "accountantPayments", Pattern: "/accountant/payments"}
)

// PublicRoutes never require an identity.
var PublicRoutes = []Route{SignIn, Registration}

// AllRoutes is the route table, in declaration order.
var AllRoutes = []Route{
	SignIn, Registration, Home,
	StudentCourses, TeacherCourses, AdminCourses,
	AdminStudents, AdminGroups, AdminTeachers,
	TeacherLessons, TeacherAssignments, TeacherSubmissions, TeacherSubmission, TeacherAttendances,
	StudentLessons, StudentAssignments, StudentAssignment, StudentSubmissions,
	ParentStudents, ParentAttendances, ParentLessons, ParentAssignments, ParentAssignment,
	ParentTuitionFees, ParentPayments,
	AccountantTuitionFees, AccountantPayments,
}
