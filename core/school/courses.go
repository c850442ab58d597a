package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type Course struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Mandatory       bool       `json:"mandatory"`
	GradeLevel      int        `json:"grade_level"`
	TeacherID       int        `json:"teacher_id"`
	EnrollmentCount int        `json:"enrollment_count"`
	Teacher         *PersonRef `json:"teacher,omitempty"`
}

type NewCourse struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Description string `json:"description,omitempty" form:"description"`
	Mandatory   bool   `json:"mandatory" form:"mandatory"`
	GradeLevel  int    `json:"grade_level,omitempty" form:"grade_level" validate:"omitempty,min=1,max=12"`
	TeacherID   int    `json:"teacher_id,omitempty" form:"teacher_id" validate:"omitempty,gt=0"`
}

func (nc *NewCourse) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
}

type TeacherAssignment struct {
	CourseID  int `json:"course_id" form:"course_id" validate:"required,gt=0"`
	TeacherID int `json:"teacher_id" form:"teacher_id" validate:"required,gt=0"`
}

type CourseFilter struct {
	TeacherID int `query:"teacher_id"`
	StudentID int `query:"student_id"`
}

type CoursesResponse struct {
	Courses []Course `json:"courses"`
}

var (
	CreateCourse = gateway.Mutation[NewCourse, Course]{
		Name:        "createCourse",
		Build:       func(nc NewCourse) gateway.Request { return send(http.MethodPost, "/courses/", nc) },
		Invalidates: tags(gateway.TagCourses),
	}

	AssignTeacher = gateway.Mutation[TeacherAssignment, Course]{
		Name:        "assignTeacher",
		Build:       func(ta TeacherAssignment) gateway.Request { return send(http.MethodPost, "/courses/assign-teacher", ta) },
		Invalidates: tags(gateway.TagCourses, gateway.TagTeachers),
	}

	FilterCourses = gateway.Query[CourseFilter, CoursesResponse]{
		Name: "filterCourses",
		Build: func(f CourseFilter) gateway.Request {
			return get("/courses/filter", newQuery().int("teacher_id", f.TeacherID).int("student_id", f.StudentID))
		},
		Provides: tags(gateway.TagCourses),
	}

	CoursesByTeacher = gateway.Query[int, []Course]{
		Name:     "coursesByTeacher",
		Build:    func(teacherID int) gateway.Request { return get(pathf("/courses/teacher/%d", teacherID), newQuery()) },
		Provides: tags(gateway.TagCourses),
	}

	CoursesByStudent = gateway.Query[int, []Course]{
		Name:     "coursesByStudent",
		Build:    func(studentID int) gateway.Request { return get(pathf("/courses/student/%d", studentID), newQuery()) },
		Provides: tags(gateway.TagCourses),
	}
)

// Teachers

const (
	SortByHireDate    = "hireDate"
	SortByCourseCount = "courseCount"
)

type Teacher struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	HireDate    string `json:"hire_date"`
	CourseCount int    `json:"courseCount"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Patronym    string `json:"patronym,omitempty"`
}

func (t Teacher) FullName() string { return core.FullName(t.FirstName, t.LastName, t.Patronym) }

type TeacherFilter struct {
	SortBy    string `query:"sort_by" validate:"omitempty,oneof=hireDate courseCount"`
	Order     string `query:"order" validate:"omitempty,oneof=ASC DESC"`
	FirstName string `query:"first_name"`
	LastName  string `query:"last_name"`
	Patronym  string `query:"patronym"`
}

func (f *TeacherFilter) Clean() {
	if f.SortBy == "" {
		f.SortBy = SortByHireDate
	}
	f.FirstName = core.CleanString(f.FirstName)
	f.LastName = core.CleanString(f.LastName)
	f.Patronym = core.CleanString(f.Patronym)
}

var ListTeachers = gateway.Query[TeacherFilter, []Teacher]{
	Name: "teachersSorted",
	Build: func(f TeacherFilter) gateway.Request {
		sortBy := f.SortBy
		if sortBy == "" {
			sortBy = SortByHireDate
		}
		return get("/teachers", newQuery().
			str("sort_by", sortBy).
			str("order", f.Order).
			str("first_name", f.FirstName).
			str("last_name", f.LastName).
			str("patronym", f.Patronym))
	},
	Provides: tags(gateway.TagTeachers),
}
