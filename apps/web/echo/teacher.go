package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
)

type (
	lessonsData struct {
		Teacher  bool
		Children childSelection
		Courses  gateway.Result[[]school.Course]
		Lessons  gateway.Result[school.LessonsResponse]
		CourseID int
		Start    string
		End      string
	}

	assignmentsData struct {
		Role        string // teacher, student or parent
		Children    childSelection
		Courses     gateway.Result[[]school.Course]
		Assignments gateway.Result[school.AssignmentsResponse]
		CourseID    int
		Start       string
		End         string
		Editing     int
		Today       string
	}

	submissionsData struct {
		Teacher     bool
		Filter      school.SubmissionFilter
		Assignments gateway.Result[school.AssignmentsResponse]
		Submissions gateway.Result[school.SubmissionsResponse]
	}

	submissionData struct {
		Submission *school.Submission
		Result     gateway.Result[school.SubmissionsResponse]
		Feedbacks  gateway.Result[school.FeedbacksResponse]
		Editing    *school.Feedback
	}

	attendancesData struct {
		Teacher     bool
		Children    childSelection
		Filter      school.AttendanceFilter
		Groups      gateway.Result[school.GroupsResponse]
		Students    gateway.Result[school.StudentsResponse]
		Courses     gateway.Result[[]school.Course]
		Lessons     gateway.Result[school.LessonsResponse]
		Attendances gateway.Result[school.AttendancesResponse]
	}
)

func registerTeacherPages(app *echo.Echo, h *handler) {
	route(app, navigation.TeacherLessons, h.teacherLessons, h.createLesson)
	route(app, navigation.TeacherAssignments, h.teacherAssignments, h.createAssignment)
	app.POST(navigation.TeacherAssignments.Pattern+"/:id", h.updateAssignment)
	app.GET(navigation.TeacherSubmissions.Pattern, h.teacherSubmissions)
	app.GET(navigation.TeacherSubmission.Pattern, h.teacherSubmission)
	app.POST(navigation.TeacherSubmission.Pattern+"/grade", h.gradeSubmission)
	app.POST(navigation.TeacherSubmission.Pattern+"/feedback", h.giveFeedback)
	app.POST(navigation.TeacherSubmission.Pattern+"/feedback/delete", h.deleteFeedback)
	route(app, navigation.TeacherAttendances, h.teacherAttendances, h.createAttendance)
}

// Lessons

func (h *handler) teacherLessons(ctx echo.Context) error {
	return h.teacherLessonsView(ctx, nil)
}

func (h *handler) teacherLessonsView(ctx echo.Context, f *form) error {
	tid := teacherID(getSession(ctx).user())
	filter := school.TeacherLessonFilter{TeacherID: tid}
	bindQuery(ctx, &filter)
	filter.TeacherID = tid

	data := lessonsData{
		Teacher:  true,
		Courses:  readIf(ctx, tid > 0, school.CoursesByTeacher, tid),
		Lessons:  readIf(ctx, tid > 0, school.TeacherLessons, filter),
		CourseID: filter.CourseID,
		Start:    filter.StartDate,
		End:      filter.EndDate,
	}
	return h.render(ctx, http.StatusOK, "lessons", page{Title: "Lessons", Form: f, Data: data})
}

func (h *handler) createLesson(ctx echo.Context) error {
	var nl school.NewLesson
	err := h.bindForm(ctx, &nl, func() { nl.TeacherID = teacherID(getSession(ctx).user()) })
	if err == nil {
		_, err = mutate(ctx, school.CreateLesson, nl)
	}
	return h.submitted(ctx, err, "Lesson created", navigation.TeacherLessons.Path(), func(f *form) error {
		return h.teacherLessonsView(ctx, f)
	})
}

// Assignments

func (h *handler) teacherAssignments(ctx echo.Context) error {
	return h.teacherAssignmentsView(ctx, nil)
}

func (h *handler) teacherAssignmentsView(ctx echo.Context, f *form) error {
	tid := teacherID(getSession(ctx).user())
	filter := school.AssignmentFilter{}
	bindQuery(ctx, &filter)
	filter.TeacherID = tid

	data := assignmentsData{
		Role:        "teacher",
		Courses:     readIf(ctx, tid > 0, school.CoursesByTeacher, tid),
		Assignments: readIf(ctx, tid > 0, school.FilterAssignments, filter),
		CourseID:    filter.CourseID,
		Start:       filter.StartDate,
		End:         filter.EndDate,
		Editing:     intQuery(ctx, "edit"),
		Today:       h.today(),
	}
	return h.render(ctx, http.StatusOK, "assignments", page{Title: "Assignments", Form: f, Data: data})
}

func (h *handler) createAssignment(ctx echo.Context) error {
	var na school.NewAssignment
	err := h.bindForm(ctx, &na, func() { na.TeacherID = teacherID(getSession(ctx).user()) })
	if err == nil {
		_, err = mutate(ctx, school.CreateAssignment, na)
	}
	return h.submitted(ctx, err, "Assignment created", navigation.TeacherAssignments.Path(), func(f *form) error {
		return h.teacherAssignmentsView(ctx, f)
	})
}

func (h *handler) updateAssignment(ctx echo.Context) error {
	var au school.AssignmentUpdate
	err := h.bindForm(ctx, &au)
	if err == nil {
		_, err = mutate(ctx, school.UpdateAssignment, au)
	}
	return h.submitted(ctx, err, "Assignment updated", navigation.TeacherAssignments.Path(), func(f *form) error {
		return h.teacherAssignmentsView(ctx, f)
	})
}

// Submissions

func (h *handler) teacherSubmissions(ctx echo.Context) error {
	tid := teacherID(getSession(ctx).user())
	filter := school.SubmissionFilter{
		AssignmentID:  intQuery(ctx, "assignment_id"),
		CourseID:      intQuery(ctx, "course_id"),
		TeacherID:     tid,
		IsLate:        boolQuery(ctx, "is_late"),
		FeedbackGiven: boolQuery(ctx, "feedback_given"),
		SubmittedFrom: ctx.QueryParam("submitted_from"),
		SubmittedTo:   ctx.QueryParam("submitted_to"),
	}
	data := submissionsData{
		Teacher:     true,
		Filter:      filter,
		Assignments: readIf(ctx, tid > 0, school.FilterAssignments, school.AssignmentFilter{TeacherID: tid}),
		Submissions: readIf(ctx, tid > 0, school.FilterSubmissions, filter),
	}
	return h.render(ctx, http.StatusOK, "submissions", page{Title: "Submissions", Data: data})
}

func (h *handler) teacherSubmission(ctx echo.Context) error {
	return h.teacherSubmissionView(ctx, nil)
}

func (h *handler) teacherSubmissionView(ctx echo.Context, f *form) error {
	id := intParam(ctx, "id")
	if id == 0 {
		return echo.ErrNotFound
	}
	data := submissionData{
		Result:    read(ctx, school.FilterSubmissions, school.SubmissionFilter{SubmissionID: id}),
		Feedbacks: read(ctx, school.FeedbacksBySubmission, id),
	}
	if subs := data.Result.Data.Data; data.Result.IsSuccess() && len(subs) > 0 {
		data.Submission = &subs[0]
	}
	edit := intQuery(ctx, "edit")
	if f.Is("feedback") {
		edit = formInt(ctx, "feedback_id")
	}
	if edit > 0 && data.Feedbacks.IsSuccess() {
		for i, fb := range data.Feedbacks.Data.Data {
			if fb.ID == edit {
				data.Editing = &data.Feedbacks.Data.Data[i]
			}
		}
	}
	return h.render(ctx, http.StatusOK, "submission", page{Title: "Submission", Form: f, Data: data})
}

// gradeSubmission grades the submission, or changes its grade when `grade_id` is set.
func (h *handler) gradeSubmission(ctx echo.Context) error {
	id := intParam(ctx, "id")
	to := navigation.TeacherSubmission.Path(id)

	var err error
	if gradeID := formInt(ctx, "grade_id"); gradeID > 0 {
		var gu school.GradeUpdate
		if err = h.bindForm(ctx, &gu, func() { gu.ID = gradeID }); err == nil {
			_, err = mutate(ctx, school.UpdateGrade, gu)
		}
	} else {
		var ng school.NewGrade
		if err = h.bindForm(ctx, &ng, func() { ng.SubmissionID = id }); err == nil {
			_, err = mutate(ctx, school.CreateGrade, ng)
		}
	}
	return h.submitted(ctx, err, "Grade saved", to, func(f *form) error {
		return h.teacherSubmissionView(ctx, f)
	})
}

// giveFeedback adds feedback to the submission, or edits it when `feedback_id` is set.
func (h *handler) giveFeedback(ctx echo.Context) error {
	id := intParam(ctx, "id")
	to := navigation.TeacherSubmission.Path(id)

	var err error
	if feedbackID := formInt(ctx, "feedback_id"); feedbackID > 0 {
		var fu school.FeedbackUpdate
		if err = h.bindForm(ctx, &fu, func() { fu.ID = feedbackID }); err == nil {
			_, err = mutate(ctx, school.UpdateFeedback, fu)
		}
	} else {
		var nf school.NewFeedback
		err = h.bindForm(ctx, &nf, func() {
			nf.SubmissionID = id
			nf.TeacherID = teacherID(getSession(ctx).user())
		})
		if err == nil {
			_, err = mutate(ctx, school.CreateFeedback, nf)
		}
	}
	return h.submitted(ctx, err, "Feedback saved", to, func(f *form) error {
		return h.teacherSubmissionView(ctx, f)
	})
}

func (h *handler) deleteFeedback(ctx echo.Context) error {
	id := intParam(ctx, "id")
	feedbackID := formInt(ctx, "feedback_id")
	if feedbackID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing feedback")
	}
	_, err := mutate(ctx, school.DeleteFeedback, feedbackID)
	return h.submitted(ctx, err, "Feedback deleted", navigation.TeacherSubmission.Path(id), func(f *form) error {
		return h.teacherSubmissionView(ctx, f)
	})
}

// Attendances

func (h *handler) teacherAttendances(ctx echo.Context) error {
	return h.teacherAttendancesView(ctx, nil)
}

func (h *handler) teacherAttendancesView(ctx echo.Context, f *form) error {
	tid := teacherID(getSession(ctx).user())
	var filter school.AttendanceFilter
	bindQuery(ctx, &filter)

	ok := tid > 0
	data := attendancesData{
		Teacher:     true,
		Filter:      filter,
		Groups:      readIf(ctx, ok, school.GroupsByTeacher, tid),
		Students:    readIf(ctx, ok, school.StudentsByTeacher, tid),
		Courses:     readIf(ctx, ok, school.CoursesByTeacher, tid),
		Lessons:     readIf(ctx, ok, school.TeacherLessons, school.TeacherLessonFilter{TeacherID: tid, CourseID: filter.CourseID}),
		Attendances: readIf(ctx, ok, school.FilterAttendances, filter),
	}
	return h.render(ctx, http.StatusOK, "attendances", page{Title: "Attendances", Form: f, Data: data})
}

func (h *handler) createAttendance(ctx echo.Context) error {
	var na school.NewAttendance
	err := h.bindForm(ctx, &na)
	if err == nil {
		_, err = mutate(ctx, school.CreateAttendance, na)
	}
	return h.submitted(ctx, err, "Attendance recorded", navigation.TeacherAttendances.Path(), func(f *form) error {
		return h.teacherAttendancesView(ctx, f)
	})
}
