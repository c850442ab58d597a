package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
)

type (
	parentStudentsData struct {
		Children []user.Child
	}

	tuitionFeesData struct {
		Accountant bool
		Children   childSelection
		Filter     school.TuitionFeeFilter
		Fees       gateway.Result[school.TuitionFeesResponse]
		Groups     gateway.Result[school.GroupsResponse]
		Students   gateway.Result[school.StudentsResponse]
		Paying     int
		Today      string
	}

	paymentsData struct {
		Accountant bool
		Children   childSelection
		Filter     school.PaymentFilter
		Payments   gateway.Result[school.PaymentsResponse]
		Groups     gateway.Result[school.GroupsResponse]
		Students   gateway.Result[school.StudentsResponse]
	}
)

func registerParentPages(app *echo.Echo, h *handler) {
	app.GET(navigation.ParentStudents.Pattern, h.parentStudents)
	app.GET(navigation.ParentAttendances.Pattern, h.parentAttendances)
	app.GET(navigation.ParentLessons.Pattern, h.parentLessons)
	app.GET(navigation.ParentAssignments.Pattern, h.parentAssignments)
	app.GET(navigation.ParentAssignment.Pattern, h.parentAssignment)
	route(app, navigation.ParentTuitionFees, h.parentTuitionFees, h.payTuitionFee)
	app.GET(navigation.ParentPayments.Pattern, h.parentPayments)
}

func (h *handler) parentStudents(ctx echo.Context) error {
	data := parentStudentsData{Children: getSession(ctx).user().Children}
	return h.render(ctx, http.StatusOK, "parent_students", page{Title: "My Children", Data: data})
}

func (h *handler) parentAttendances(ctx echo.Context) error {
	child := selectChild(ctx, getSession(ctx).user())
	var filter school.AttendanceFilter
	bindQuery(ctx, &filter)
	filter.StudentID = child.ID()

	data := attendancesData{
		Children:    child,
		Filter:      filter,
		Attendances: readIf(ctx, child.Found, school.FilterAttendances, filter),
	}
	return h.render(ctx, http.StatusOK, "attendances", page{Title: "Attendances", Data: data})
}

func (h *handler) parentLessons(ctx echo.Context) error {
	child := selectChild(ctx, getSession(ctx).user())
	var filter school.StudentLessonFilter
	bindQuery(ctx, &filter)
	filter.StudentID = child.ID()

	data := lessonsData{
		Children: child,
		Lessons:  readIf(ctx, child.Found, school.StudentLessons, filter),
		Start:    filter.StartDate,
		End:      filter.EndDate,
	}
	return h.render(ctx, http.StatusOK, "lessons", page{Title: "Lessons", Data: data})
}

func (h *handler) parentAssignments(ctx echo.Context) error {
	child := selectChild(ctx, getSession(ctx).user())
	var filter school.GroupAssignmentFilter
	bindQuery(ctx, &filter)
	filter.StudentID = child.ID()

	data := assignmentsData{
		Role:        "parent",
		Children:    child,
		Assignments: readIf(ctx, child.Found, school.GroupAssignments, filter),
		CourseID:    filter.CourseID,
		Start:       filter.StartDate,
		End:         filter.EndDate,
		Today:       h.today(),
	}
	return h.render(ctx, http.StatusOK, "assignments", page{Title: "Assignments", Data: data})
}

// parentAssignment shows an assignment with the selected child's submission and its feedback.
func (h *handler) parentAssignment(ctx echo.Context) error {
	child := selectChild(ctx, getSession(ctx).user())
	id := intParam(ctx, "id")
	if id == 0 {
		return echo.ErrNotFound
	}
	data := assignmentData{
		Children:    child,
		ID:          id,
		Assignments: read(ctx, school.FilterAssignments, school.AssignmentFilter{AssignmentID: id}),
		Submissions: readIf(ctx, child.Found, school.FilterSubmissions, school.SubmissionFilter{AssignmentID: id, StudentID: child.ID()}),
		Today:       h.today(),
	}
	data.pick(child.ID())
	sub := data.Submission
	data.Feedbacks = readIf(ctx, sub != nil, school.FeedbacksBySubmission, submissionID(sub))
	return h.render(ctx, http.StatusOK, "assignment", page{Title: "Assignment", Data: data})
}

func submissionID(s *school.Submission) int {
	if s == nil {
		return 0
	}
	return s.ID
}

func (h *handler) parentTuitionFees(ctx echo.Context) error {
	return h.parentTuitionFeesView(ctx, nil)
}

func (h *handler) parentTuitionFeesView(ctx echo.Context, f *form) error {
	child := selectChild(ctx, getSession(ctx).user())
	var filter school.TuitionFeeFilter
	bindQuery(ctx, &filter)
	filter.StudentID = child.ID()
	filter.GroupID = 0

	data := tuitionFeesData{
		Children: child,
		Filter:   filter,
		Fees:     readIf(ctx, child.Found, school.FilterTuitionFees, filter),
		Paying:   intQuery(ctx, "pay"),
		Today:    h.today(),
	}
	if f != nil && f.Failed() {
		data.Paying = formInt(ctx, "tuition_fee_id")
	}
	return h.render(ctx, http.StatusOK, "tuition_fees", page{Title: "Tuition Fees", Form: f, Data: data})
}

// payTuitionFee records a payment of a child's fee; the date defaults to today.
func (h *handler) payTuitionFee(ctx echo.Context) error {
	var np school.NewPayment
	err := h.bindForm(ctx, &np, func() {
		if np.PaymentDate == "" {
			np.PaymentDate = h.today()
		}
	})
	if err == nil {
		_, err = mutate(ctx, school.CreatePayment, np)
	}
	to := navigation.ParentTuitionFees.Path()
	if sid := formInt(ctx, "student_id"); sid > 0 {
		to += "?student_id=" + strconv.Itoa(sid)
	}
	return h.submitted(ctx, err, "Payment recorded", to, func(f *form) error {
		return h.parentTuitionFeesView(ctx, f)
	})
}

func (h *handler) parentPayments(ctx echo.Context) error {
	child := selectChild(ctx, getSession(ctx).user())
	var filter school.PaymentFilter
	bindQuery(ctx, &filter)
	filter.StudentID = child.ID()
	filter.GroupID = 0

	data := paymentsData{
		Children: child,
		Filter:   filter,
		Payments: readIf(ctx, child.Found, school.FilterPayments, filter),
	}
	return h.render(ctx, http.StatusOK, "payments", page{Title: "Payments", Data: data})
}
