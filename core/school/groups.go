package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type Group struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	GradeLevel   int    `json:"grade_level"`
	StartYear    int    `json:"start_year"`
	CuratorID    int    `json:"curator_id"`
	CuratorName  string `json:"curator_name"`
	StudentCount int    `json:"student_count"`
}

type NewGroup struct {
	Name       string `json:"name" form:"name" validate:"required"`
	GradeLevel int    `json:"grade_level" form:"grade_level" validate:"required,min=1,max=11"`
	StartYear  int    `json:"start_year,omitempty" form:"start_year" validate:"omitempty,min=2000,max=2100"`
	CuratorID  int    `json:"curator_id,omitempty" form:"curator_id" validate:"omitempty,gt=0"`
}

func (ng *NewGroup) Clean() {
	ng.Name = core.CleanString(ng.Name)
}

type GroupFilter struct {
	Name      string `query:"name"`
	StartYear int    `query:"start_year"`
	CuratorID int    `query:"curator_id"`
}

type GroupsResponse struct {
	Groups []Group `json:"groups"`
}

var (
	CreateGroup = gateway.Mutation[NewGroup, Group]{
		Name:        "createGroup",
		Build:       func(ng NewGroup) gateway.Request { return send(http.MethodPost, "/groups/create", ng) },
		Invalidates: tags(gateway.TagGroups),
	}

	FilterGroups = gateway.Query[GroupFilter, GroupsResponse]{
		Name: "filterGroups",
		Build: func(f GroupFilter) gateway.Request {
			return get("/groups/filter", newQuery().
				str("name", core.CleanString(f.Name)).
				int("start_year", f.StartYear).
				int("curator_id", f.CuratorID))
		},
		Provides: tags(gateway.TagGroups),
	}

	GroupsByTeacher = gateway.Query[int, GroupsResponse]{
		Name: "groupsByTeacherEnrollments",
		Build: func(teacherID int) gateway.Request {
			return get("/groups/by-teacher-enrollments", newQuery().int("teacher_id", teacherID))
		},
		Provides: tags(gateway.TagGroups),
	}
)

// Students

type Student struct {
	ID        int    `json:"id"`
	StudentID int    `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Patronym  string `json:"patronym"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (s Student) FullName() string { return core.FullName(s.FirstName, s.LastName, s.Patronym) }

// StudentSearch is sent as the body of a read.
type StudentSearch struct {
	GroupID   int    `json:"group_id,omitempty" query:"group_id"`
	FirstName string `json:"first_name,omitempty" query:"first_name"`
	LastName  string `json:"last_name,omitempty" query:"last_name"`
	Patronym  string `json:"patronym,omitempty" query:"patronym"`
}

func (s *StudentSearch) Clean() {
	s.FirstName = core.CleanString(s.FirstName)
	s.LastName = core.CleanString(s.LastName)
	s.Patronym = core.CleanString(s.Patronym)
}

type StudentUpdate struct {
	ID         int    `json:"-" param:"id" validate:"required,gt=0"`
	FirstName  string `json:"first_name,omitempty" form:"first_name"`
	LastName   string `json:"last_name,omitempty" form:"last_name"`
	MiddleName string `json:"middle_name,omitempty" form:"middle_name"`
	Email      string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=32"`
	BirthDate  string `json:"birth_date,omitempty" form:"birth_date" validate:"isodate"`
	GroupID    int    `json:"group_id,omitempty" form:"group_id" validate:"omitempty,gt=0"`
}

func (su *StudentUpdate) Clean() {
	su.FirstName = core.CleanString(su.FirstName)
	su.LastName = core.CleanString(su.LastName)
	su.MiddleName = core.CleanString(su.MiddleName)
	su.Email = core.CleanString(su.Email, true /* lower */)
	su.Phone = core.CleanString(su.Phone)
	su.BirthDate = core.CleanString(su.BirthDate)
}

type StudentsResponse struct {
	Students []Student `json:"students"`
}

var (
	SearchStudents = gateway.Query[StudentSearch, StudentsResponse]{
		Name:     "searchStudents",
		Build:    func(s StudentSearch) gateway.Request { return send(http.MethodPost, "/students/search", s) },
		Provides: tags(gateway.TagStudents),
	}

	UpdateStudent = gateway.Mutation[StudentUpdate, Student]{
		Name:        "updateStudent",
		Build:       func(su StudentUpdate) gateway.Request { return send(http.MethodPut, pathf("/students/%d", su.ID), su) },
		Invalidates: tags(gateway.TagStudents, gateway.TagGroups),
	}

	StudentsByTeacher = gateway.Query[int, StudentsResponse]{
		Name: "studentsByTeacherEnrollments",
		Build: func(teacherID int) gateway.Request {
			return get("/students/by-teacher-enrollments", newQuery().int("teacher_id", teacherID))
		},
		Provides: tags(gateway.TagStudents),
	}
)
