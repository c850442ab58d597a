package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
)

// assignmentData is the detail of an assignment, and the viewed student's submission of it.
type assignmentData struct {
	Student     bool
	Children    childSelection
	ID          int
	Assignment  *school.Assignment
	Assignments gateway.Result[school.AssignmentsResponse]
	Submission  *school.Submission
	Submissions gateway.Result[school.SubmissionsResponse]
	Feedbacks   gateway.Result[school.FeedbacksResponse]
	Today       string
}

func (d *assignmentData) pick(studentID int) {
	if d.Assignments.IsSuccess() {
		for i, a := range d.Assignments.Data.Data {
			if a.ID == d.ID {
				d.Assignment = &d.Assignments.Data.Data[i]
				break
			}
		}
	}
	if d.Submissions.IsSuccess() {
		for i, s := range d.Submissions.Data.Data {
			if s.StudentID == studentID {
				d.Submission = &d.Submissions.Data.Data[i]
				break
			}
		}
	}
}

func registerStudentPages(app *echo.Echo, h *handler) {
	app.GET(navigation.StudentLessons.Pattern, h.studentLessons)
	app.GET(navigation.StudentAssignments.Pattern, h.studentAssignments)
	route(app, navigation.StudentAssignment, h.studentAssignment, h.submitAssignment)
	app.GET(navigation.StudentSubmissions.Pattern, h.studentSubmissions)
}

func (h *handler) studentLessons(ctx echo.Context) error {
	sid := studentID(getSession(ctx).user())
	var filter school.StudentLessonFilter
	bindQuery(ctx, &filter)
	filter.StudentID = sid

	data := lessonsData{
		Lessons: readIf(ctx, sid > 0, school.StudentLessons, filter),
		Start:   filter.StartDate,
		End:     filter.EndDate,
	}
	return h.render(ctx, http.StatusOK, "lessons", page{Title: "My Lessons", Data: data})
}

func (h *handler) studentAssignments(ctx echo.Context) error {
	sid := studentID(getSession(ctx).user())
	var filter school.GroupAssignmentFilter
	bindQuery(ctx, &filter)
	filter.StudentID = sid

	data := assignmentsData{
		Role:        "student",
		Courses:     readIf(ctx, sid > 0, school.CoursesByStudent, sid),
		Assignments: readIf(ctx, sid > 0, school.GroupAssignments, filter),
		CourseID:    filter.CourseID,
		Start:       filter.StartDate,
		End:         filter.EndDate,
		Today:       h.today(),
	}
	return h.render(ctx, http.StatusOK, "assignments", page{Title: "My Assignments", Data: data})
}

func (h *handler) studentAssignment(ctx echo.Context) error {
	return h.studentAssignmentView(ctx, nil)
}

func (h *handler) studentAssignmentView(ctx echo.Context, f *form) error {
	sid := studentID(getSession(ctx).user())
	id := intParam(ctx, "id")
	if id == 0 {
		return echo.ErrNotFound
	}
	ok := sid > 0
	data := assignmentData{
		Student:     true,
		ID:          id,
		Assignments: readIf(ctx, ok, school.GroupAssignments, school.GroupAssignmentFilter{StudentID: sid}),
		Submissions: readIf(ctx, ok, school.FilterSubmissions, school.SubmissionFilter{AssignmentID: id, StudentID: sid}),
		Today:       h.today(),
	}
	data.pick(sid)
	data.Feedbacks = readIf(ctx, data.Submission != nil, school.FeedbacksBySubmission, submissionID(data.Submission))
	return h.render(ctx, http.StatusOK, "assignment", page{Title: "Assignment", Form: f, Data: data})
}

// submitAssignment hands in the student's work, or edits it when `submission_id` is set.
func (h *handler) submitAssignment(ctx echo.Context) error {
	id := intParam(ctx, "id")
	sid := studentID(getSession(ctx).user())

	var err error
	if formInt(ctx, "submission_id") > 0 {
		var se school.SubmissionEdit
		if err = h.bindForm(ctx, &se); err == nil {
			_, err = mutate(ctx, school.EditSubmission, se)
		}
	} else {
		var ns school.NewSubmission
		err = h.bindForm(ctx, &ns, func() {
			ns.AssignmentID = id
			ns.StudentID = sid
		})
		if err == nil {
			_, err = mutate(ctx, school.CreateSubmission, ns)
		}
	}
	return h.submitted(ctx, err, "Submission saved", navigation.StudentAssignment.Path(id), func(f *form) error {
		return h.studentAssignmentView(ctx, f)
	})
}

func (h *handler) studentSubmissions(ctx echo.Context) error {
	sid := studentID(getSession(ctx).user())
	filter := school.SubmissionFilter{StudentID: sid}
	data := submissionsData{
		Filter:      filter,
		Submissions: readIf(ctx, sid > 0, school.FilterSubmissions, filter),
	}
	return h.render(ctx, http.StatusOK, "submissions", page{Title: "My Submissions", Data: data})
}
