package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core/gateway"
)

type (
	Attendance struct {
		ID        int               `json:"id"`
		StudentID int               `json:"student_id"`
		LessonID  int               `json:"lesson_id"`
		Attended  bool              `json:"attended"`
		Student   *PersonRef        `json:"student,omitempty"`
		Lesson    *AttendanceLesson `json:"lesson,omitempty"`
	}

	AttendanceLesson struct {
		ID         int    `json:"id"`
		CourseID   int    `json:"course_id"`
		TeacherID  int    `json:"teacher_id"`
		LessonDate string `json:"lesson_date"`
		StartTime  string `json:"start_time"`
		EndTime    string `json:"end_time"`
		Topic      string `json:"topic"`
	}

	AttendanceSummary struct {
		Attendances      []Attendance `json:"attendances"`
		Count            int          `json:"count"`
		AttendedCount    int          `json:"attendedCount"`
		NotAttendedCount int          `json:"notAttendedCount"`
	}
)

// Rate returns the share of attended lessons, in percent.
func (s AttendanceSummary) Rate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.AttendedCount) * 100 / float64(s.Count)
}

type AttendanceFilter struct {
	GroupID   int    `query:"group_id"`
	StudentID int    `query:"student_id"`
	LessonID  int    `query:"lesson_id"`
	CourseID  int    `query:"course_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type AttendancesResponse struct {
	Data AttendanceSummary `json:"data"`
}

type NewAttendance struct {
	StudentID int  `json:"student_id" form:"student_id" validate:"required,gt=0"`
	LessonID  int  `json:"lesson_id" form:"lesson_id" validate:"required,gt=0"`
	Attended  bool `json:"attended" form:"attended"`
}

var (
	FilterAttendances = gateway.Query[AttendanceFilter, AttendancesResponse]{
		Name: "filterAttendances",
		Build: func(f AttendanceFilter) gateway.Request {
			return get("/attendances", newQuery().
				int("group_id", f.GroupID).
				int("student_id", f.StudentID).
				int("lesson_id", f.LessonID).
				int("course_id", f.CourseID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagAttendances),
	}

	CreateAttendance = gateway.Mutation[NewAttendance, Attendance]{
		Name:        "createAttendance",
		Build:       func(na NewAttendance) gateway.Request { return send(http.MethodPost, "/attendances/create", na) },
		Invalidates: tags(gateway.TagAttendances),
	}
)
