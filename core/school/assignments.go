package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type Assignment struct {
	ID          int        `json:"id"`
	CourseID    int        `json:"course_id"`
	TeacherID   int        `json:"teacher_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignDate  string     `json:"assign_date"`
	DueDate     string     `json:"due_date"`
	MaxGrade    float64    `json:"max_grade"`
	Course      *CourseRef `json:"course,omitempty"`
	Teacher     *PersonRef `json:"teacher,omitempty"`
}

// IsPastDue reports whether the assignment's due date is before today (YYYY-MM-DD).
func (a Assignment) IsPastDue(today string) bool {
	return a.DueDate != "" && Day(a.DueDate) < today
}

type NewAssignment struct {
	CourseID    int     `json:"course_id" form:"course_id" validate:"required,gt=0"`
	TeacherID   int     `json:"teacher_id,omitempty" form:"teacher_id" validate:"omitempty,gt=0"`
	Title       string  `json:"title" form:"title" validate:"required,notblank,max=150"`
	Description string  `json:"description,omitempty" form:"description"`
	AssignDate  string  `json:"assign_date,omitempty" form:"assign_date" validate:"isodate"`
	DueDate     string  `json:"due_date" form:"due_date" validate:"required,isodate"`
	MaxGrade    float64 `json:"max_grade,omitempty" form:"max_grade" validate:"omitempty,min=0,max=999.99"`
}

func (na *NewAssignment) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.AssignDate = core.CleanString(na.AssignDate)
	na.DueDate = core.CleanString(na.DueDate)
}

type AssignmentUpdate struct {
	ID          int     `json:"-" param:"id" validate:"required,gt=0"`
	CourseID    int     `json:"course_id,omitempty" form:"course_id" validate:"omitempty,gt=0"`
	Title       string  `json:"title,omitempty" form:"title" validate:"max=150"`
	Description string  `json:"description,omitempty" form:"description"`
	AssignDate  string  `json:"assign_date,omitempty" form:"assign_date" validate:"isodate"`
	DueDate     string  `json:"due_date,omitempty" form:"due_date" validate:"isodate"`
	MaxGrade    float64 `json:"max_grade,omitempty" form:"max_grade" validate:"omitempty,min=0,max=999.99"`
}

func (au *AssignmentUpdate) Clean() {
	au.Title = core.CleanString(au.Title)
	au.Description = core.CleanString(au.Description)
	au.AssignDate = core.CleanString(au.AssignDate)
	au.DueDate = core.CleanString(au.DueDate)
}

type AssignmentFilter struct {
	TeacherID    int    `query:"teacher_id"`
	CourseID     int    `query:"course_id"`
	AssignmentID int    `query:"assignment_id"`
	StartDate    string `query:"start_date" validate:"isodate"`
	EndDate      string `query:"end_date" validate:"isodate"`
}

type GroupAssignmentFilter struct {
	StudentID int    `query:"student_id"`
	CourseID  int    `query:"course_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type AssignmentsResponse struct {
	Data []Assignment `json:"data"`
}

var (
	CreateAssignment = gateway.Mutation[NewAssignment, Assignment]{
		Name:        "createAssignment",
		Build:       func(na NewAssignment) gateway.Request { return send(http.MethodPost, "/assignments/create", na) },
		Invalidates: tags(gateway.TagAssignments),
	}

	UpdateAssignment = gateway.Mutation[AssignmentUpdate, Assignment]{
		Name: "updateAssignment",
		Build: func(au AssignmentUpdate) gateway.Request {
			return send(http.MethodPut, pathf("/assignments/update/%d", au.ID), au)
		},
		Invalidates: tags(gateway.TagAssignments),
	}

	FilterAssignments = gateway.Query[AssignmentFilter, AssignmentsResponse]{
		Name: "filterAssignments",
		Build: func(f AssignmentFilter) gateway.Request {
			return get("/assignments/filter", newQuery().
				int("teacher_id", f.TeacherID).
				int("course_id", f.CourseID).
				int("assignment_id", f.AssignmentID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagAssignments),
	}

	GroupAssignments = gateway.Query[GroupAssignmentFilter, AssignmentsResponse]{
		Name: "studentGroupAssignments",
		Build: func(f GroupAssignmentFilter) gateway.Request {
			return get("/assignments/student-group", newQuery().
				int("student_id", f.StudentID).
				int("course_id", f.CourseID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagAssignments),
	}
)
