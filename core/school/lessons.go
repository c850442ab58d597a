package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type Lesson struct {
	ID         int       `json:"id"`
	Course     CourseRef `json:"course"`
	Teacher    PersonRef `json:"teacher"`
	LessonDate string    `json:"lesson_date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Topic      string    `json:"topic"`
}

type NewLesson struct {
	CourseID   int    `json:"course_id" form:"course_id" validate:"required,gt=0"`
	TeacherID  int    `json:"teacher_id,omitempty" form:"teacher_id" validate:"omitempty,gt=0"`
	LessonDate string `json:"lesson_date" form:"lesson_date" validate:"required,isodate"`
	StartTime  string `json:"start_time,omitempty" form:"start_time" validate:"clocktime"`
	EndTime    string `json:"end_time,omitempty" form:"end_time" validate:"clocktime"`
	Topic      string `json:"topic,omitempty" form:"topic" validate:"max=255"`
}

func (nl *NewLesson) Clean() {
	nl.LessonDate = core.CleanString(nl.LessonDate)
	nl.StartTime = core.CleanString(nl.StartTime)
	nl.EndTime = core.CleanString(nl.EndTime)
	nl.Topic = core.CleanString(nl.Topic)
}

type TeacherLessonFilter struct {
	TeacherID int    `query:"teacher_id"`
	CourseID  int    `query:"course_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type StudentLessonFilter struct {
	StudentID int    `query:"student_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type LessonsResponse struct {
	Data []Lesson `json:"data"`
}

var (
	TeacherLessons = gateway.Query[TeacherLessonFilter, LessonsResponse]{
		Name: "teacherLessons",
		Build: func(f TeacherLessonFilter) gateway.Request {
			return get("/lessons/teacher", newQuery().
				int("teacher_id", f.TeacherID).
				int("course_id", f.CourseID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagLessons),
	}

	StudentLessons = gateway.Query[StudentLessonFilter, LessonsResponse]{
		Name: "studentLessons",
		Build: func(f StudentLessonFilter) gateway.Request {
			return get("/lessons/student", newQuery().
				int("student_id", f.StudentID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagLessons),
	}

	CreateLesson = gateway.Mutation[NewLesson, Lesson]{
		Name:        "createLesson",
		Build:       func(nl NewLesson) gateway.Request { return send(http.MethodPost, "/lessons/create", nl) },
		Invalidates: tags(gateway.TagLessons, gateway.TagAttendances),
	}
)
