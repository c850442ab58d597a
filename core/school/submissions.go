package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type (
	Submission struct {
		ID            int                  `json:"id"`
		AssignmentID  int                  `json:"assignment_id"`
		StudentID     int                  `json:"student_id"`
		Content       string               `json:"content"`
		IsLate        bool                 `json:"is_late"`
		FeedbackGiven bool                 `json:"feedback_given"`
		SubmittedAt   string               `json:"submitted_at"`
		Assignment    *SubmittedAssignment `json:"assignment,omitempty"`
		Student       *PersonRef           `json:"student,omitempty"`
		Grade         *SubmissionGrade     `json:"grade,omitempty"`
		Feedback      *SubmissionFeedback  `json:"submissionFeedback,omitempty"`
	}

	SubmittedAssignment struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		DueDate     string `json:"due_date"`
		TeacherID   int    `json:"teacher_id"`
	}

	SubmissionGrade struct {
		ID         int      `json:"id"`
		GradeValue *float64 `json:"grade_value"`
	}

	SubmissionFeedback struct {
		ID           int    `json:"id"`
		SubmissionID int    `json:"submission_id"`
		FeedbackText string `json:"feedback_text"`
	}
)

// IsGraded reports whether a grade value was given to the submission.
func (s Submission) IsGraded() bool {
	return s.Grade != nil && s.Grade.GradeValue != nil
}

type NewSubmission struct {
	AssignmentID int    `json:"assignment_id" form:"assignment_id" validate:"required,gt=0"`
	StudentID    int    `json:"student_id" form:"student_id" validate:"required,gt=0"`
	Content      string `json:"content" form:"content" validate:"required,notblank"`
}

func (ns *NewSubmission) Clean() {
	ns.Content = core.CleanString(ns.Content)
}

type SubmissionEdit struct {
	SubmissionID int    `json:"submission_id" form:"submission_id" validate:"required,gt=0"`
	Content      string `json:"content" form:"content" validate:"required,notblank"`
}

func (se *SubmissionEdit) Clean() {
	se.Content = core.CleanString(se.Content)
}

// SubmissionFilter is sent as the body of a read.
type SubmissionFilter struct {
	SubmissionID  int    `json:"submission_id,omitempty" query:"submission_id"`
	AssignmentID  int    `json:"assignment_id,omitempty" query:"assignment_id"`
	StudentID     int    `json:"student_id,omitempty" query:"student_id"`
	TeacherID     int    `json:"teacher_id,omitempty" query:"teacher_id"`
	CourseID      int    `json:"course_id,omitempty" query:"course_id"`
	IsLate        *bool  `json:"is_late,omitempty" query:"is_late"`
	FeedbackGiven *bool  `json:"feedback_given,omitempty" query:"feedback_given"`
	SubmittedFrom string `json:"submitted_from,omitempty" query:"submitted_from" validate:"isodate"`
	SubmittedTo   string `json:"submitted_to,omitempty" query:"submitted_to" validate:"isodate"`
}

type SubmissionsResponse struct {
	Data []Submission `json:"data"`
}

var (
	CreateSubmission = gateway.Mutation[NewSubmission, Submission]{
		Name:        "createSubmission",
		Build:       func(ns NewSubmission) gateway.Request { return send(http.MethodPost, "/submissions/create", ns) },
		Invalidates: tags(gateway.TagSubmissions),
	}

	EditSubmission = gateway.Mutation[SubmissionEdit, Submission]{
		Name:        "editSubmission",
		Build:       func(se SubmissionEdit) gateway.Request { return send(http.MethodPost, "/submissions/edit", se) },
		Invalidates: tags(gateway.TagSubmissions),
	}

	FilterSubmissions = gateway.Query[SubmissionFilter, SubmissionsResponse]{
		Name:     "filterSubmissions",
		Build:    func(f SubmissionFilter) gateway.Request { return send(http.MethodPost, "/submissions/filter", f) },
		Provides: tags(gateway.TagSubmissions),
	}
)

// Grades

type Grade struct {
	ID           int         `json:"id"`
	TeacherID    int         `json:"teacher_id"`
	Grade        *float64    `json:"grade"`
	SubmissionID int         `json:"submission_id"`
	DateGiven    string      `json:"date_given"`
	Teacher      *PersonRef  `json:"teacher,omitempty"`
	Assignment   *Assignment `json:"assignment,omitempty"`
}

type NewGrade struct {
	SubmissionID int     `json:"submission_id" form:"submission_id" validate:"required,gt=0"`
	Grade        float64 `json:"grade" form:"grade" validate:"min=0,max=100"`
}

type GradeUpdate struct {
	ID    int     `json:"-" param:"id" validate:"required,gt=0"`
	Grade float64 `json:"grade" form:"grade" validate:"min=0,max=100"`
}

type GroupAverageFilter struct {
	GroupID   int    `query:"group_id" validate:"required,gt=0"`
	CourseID  int    `query:"course_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type GroupAverage struct {
	GroupID      int      `json:"group_id"`
	AverageGrade *float64 `json:"averageGrade"`
	Count        int      `json:"count"`
}

type GroupAverageResponse struct {
	Data GroupAverage `json:"data"`
}

type StudentRangeFilter struct {
	StudentID int    `query:"student_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

func (f StudentRangeFilter) toQuery() query {
	return newQuery().
		int("student_id", f.StudentID).
		str("start_date", f.StartDate).
		str("end_date", f.EndDate)
}

type GradesResponse struct {
	Data []Grade `json:"data"`
}

var (
	CreateGrade = gateway.Mutation[NewGrade, Grade]{
		Name:        "createGrade",
		Build:       func(ng NewGrade) gateway.Request { return send(http.MethodPost, "/grades/", ng) },
		Invalidates: tags(gateway.TagGrades, gateway.TagSubmissions),
	}

	UpdateGrade = gateway.Mutation[GradeUpdate, Grade]{
		Name:        "updateGrade",
		Build:       func(gu GradeUpdate) gateway.Request { return send(http.MethodPut, pathf("/grades/%d", gu.ID), gu) },
		Invalidates: tags(gateway.TagGrades, gateway.TagSubmissions),
	}

	GroupAverageGrade = gateway.Query[GroupAverageFilter, GroupAverageResponse]{
		Name: "groupAverageGrade",
		Build: func(f GroupAverageFilter) gateway.Request {
			return get("/grades/group-average", newQuery().
				int("group_id", f.GroupID).
				int("course_id", f.CourseID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagGrades),
	}

	StudentGrades = gateway.Query[StudentRangeFilter, GradesResponse]{
		Name:     "studentGrades",
		Build:    func(f StudentRangeFilter) gateway.Request { return get("/grades/student-range", f.toQuery()) },
		Provides: tags(gateway.TagGrades),
	}
)

// Feedbacks

type Feedback struct {
	ID           int        `json:"id"`
	SubmissionID int        `json:"submission_id"`
	TeacherID    int        `json:"teacher_id"`
	FeedbackText string     `json:"feedback_text"`
	FeedbackDate string     `json:"feedback_date"`
	Teacher      *PersonRef `json:"teacher,omitempty"`
}

type NewFeedback struct {
	SubmissionID int    `json:"submission_id" form:"submission_id" validate:"required,gt=0"`
	TeacherID    int    `json:"teacher_id" form:"teacher_id" validate:"required,gt=0"`
	FeedbackText string `json:"feedback_text" form:"feedback_text" validate:"required,notblank"`
}

func (nf *NewFeedback) Clean() {
	nf.FeedbackText = core.CleanString(nf.FeedbackText)
}

type FeedbackUpdate struct {
	ID           int    `json:"-" param:"id" validate:"required,gt=0"`
	FeedbackText string `json:"feedback_text" form:"feedback_text" validate:"required,notblank"`
}

func (fu *FeedbackUpdate) Clean() {
	fu.FeedbackText = core.CleanString(fu.FeedbackText)
}

type FeedbackDeletion struct {
	Message                        string `json:"message"`
	DeletedFeedbackID              int    `json:"deleted_feedback_id"`
	SubmissionFeedbackGivenUpdated bool   `json:"submission_feedback_given_updated"`
}

type FeedbacksResponse struct {
	Data []Feedback `json:"data"`
}

var (
	CreateFeedback = gateway.Mutation[NewFeedback, Feedback]{
		Name:        "createFeedback",
		Build:       func(nf NewFeedback) gateway.Request { return send(http.MethodPost, "/submissionFeedbacks/", nf) },
		Invalidates: tags(gateway.TagFeedbacks, gateway.TagSubmissions),
	}

	UpdateFeedback = gateway.Mutation[FeedbackUpdate, Feedback]{
		Name: "updateFeedback",
		Build: func(fu FeedbackUpdate) gateway.Request {
			return send(http.MethodPut, pathf("/submissionFeedbacks/%d", fu.ID), fu)
		},
		Invalidates: tags(gateway.TagFeedbacks, gateway.TagSubmissions),
	}

	// DeleteFeedback lives under a different prefix than the other feedback endpoints on the backend.
	DeleteFeedback = gateway.Mutation[int, FeedbackDeletion]{
		Name:        "deleteFeedback",
		Build:       func(id int) gateway.Request { return send(http.MethodDelete, pathf("/submissionsFeedback/%d", id), nil) },
		Invalidates: tags(gateway.TagFeedbacks, gateway.TagSubmissions),
	}

	FeedbacksBySubmission = gateway.Query[int, FeedbacksResponse]{
		Name: "feedbacksBySubmission",
		Build: func(submissionID int) gateway.Request {
			return get(pathf("/submissionFeedbacks/submission/%d", submissionID), newQuery())
		},
		Provides: tags(gateway.TagFeedbacks),
	}

	StudentFeedbacks = gateway.Query[StudentRangeFilter, FeedbacksResponse]{
		Name:     "studentFeedbacks",
		Build:    func(f StudentRangeFilter) gateway.Request { return get("/submissionFeedbacks/student-range", f.toQuery()) },
		Provides: tags(gateway.TagFeedbacks),
	}
)
