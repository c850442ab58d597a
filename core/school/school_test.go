package school

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-web/core/gateway"
)

func TestRequests(t *testing.T) {
	yes := true

	tests := []struct {
		name      string
		req       gateway.Request
		wantMeth  string
		wantPath  string
		wantQuery string
	}{
		{
			name:      "courses filter skips unset ids",
			req:       FilterCourses.Build(CourseFilter{TeacherID: 3}),
			wantMeth:  http.MethodGet,
			wantPath:  "/courses/filter",
			wantQuery: "teacher_id=3",
		},
		{
			name:     "courses by student",
			req:      CoursesByStudent.Build(12),
			wantMeth: http.MethodGet,
			wantPath: "/courses/student/12",
		},
		{
			name:      "teachers default to hire date",
			req:       ListTeachers.Build(TeacherFilter{Order: "DESC", LastName: "Ivanov"}),
			wantMeth:  http.MethodGet,
			wantPath:  "/teachers",
			wantQuery: "last_name=Ivanov&order=DESC&sort_by=hireDate",
		},
		{
			name:      "groups by teacher",
			req:       GroupsByTeacher.Build(5),
			wantMeth:  http.MethodGet,
			wantPath:  "/groups/by-teacher-enrollments",
			wantQuery: "teacher_id=5",
		},
		{
			name:     "student search is a post",
			req:      SearchStudents.Build(StudentSearch{GroupID: 2}),
			wantMeth: http.MethodPost,
			wantPath: "/students/search",
		},
		{
			name:     "student update",
			req:      UpdateStudent.Build(StudentUpdate{ID: 8, Phone: "555"}),
			wantMeth: http.MethodPut,
			wantPath: "/students/8",
		},
		{
			name:      "lessons of a teacher",
			req:       TeacherLessons.Build(TeacherLessonFilter{TeacherID: 1, StartDate: "2024-09-01"}),
			wantMeth:  http.MethodGet,
			wantPath:  "/lessons/teacher",
			wantQuery: "start_date=2024-09-01&teacher_id=1",
		},
		{
			name:     "assignment update",
			req:      UpdateAssignment.Build(AssignmentUpdate{ID: 4}),
			wantMeth: http.MethodPut,
			wantPath: "/assignments/update/4",
		},
		{
			name:      "group assignments",
			req:       GroupAssignments.Build(GroupAssignmentFilter{StudentID: 7, CourseID: 2}),
			wantMeth:  http.MethodGet,
			wantPath:  "/assignments/student-group",
			wantQuery: "course_id=2&student_id=7",
		},
		{
			name:     "submission filter is a post",
			req:      FilterSubmissions.Build(SubmissionFilter{FeedbackGiven: &yes}),
			wantMeth: http.MethodPost,
			wantPath: "/submissions/filter",
		},
		{
			name:     "feedback delete uses its own prefix",
			req:      DeleteFeedback.Build(9),
			wantMeth: http.MethodDelete,
			wantPath: "/submissionsFeedback/9",
		},
		{
			name:      "student feedbacks",
			req:       StudentFeedbacks.Build(StudentRangeFilter{StudentID: 7, EndDate: "2024-12-31"}),
			wantMeth:  http.MethodGet,
			wantPath:  "/submissionFeedbacks/student-range",
			wantQuery: "end_date=2024-12-31&student_id=7",
		},
		{
			name:      "attendances",
			req:       FilterAttendances.Build(AttendanceFilter{GroupID: 2, LessonID: 11}),
			wantMeth:  http.MethodGet,
			wantPath:  "/attendances",
			wantQuery: "group_id=2&lesson_id=11",
		},
		{
			name:      "overdue fees",
			req:       OverdueTuitionFees.Build(TuitionFeeFilter{StudentID: 7, OnlyOverdue: true}),
			wantMeth:  http.MethodGet,
			wantPath:  "/tuitionFees/overdue",
			wantQuery: "student_id=7",
		},
		{
			name:     "fees by group",
			req:      CreateGroupTuitionFees.Build(GroupTuitionFee{GroupID: 2}),
			wantMeth: http.MethodPost,
			wantPath: "/tuitionFees/by-group",
		},
		{
			name:      "payments",
			req:       FilterPayments.Build(PaymentFilter{GroupID: 2}),
			wantMeth:  http.MethodGet,
			wantPath:  "/payments/filter",
			wantQuery: "group_id=2",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantMeth, tc.req.Method)
			assert.Equal(t, tc.wantPath, tc.req.Path)
			assert.Equal(t, tc.wantQuery, tc.req.Query.Encode())
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t, []gateway.Tag{gateway.TagPayments, gateway.TagTuitionFees}, CreatePayment.Invalidates)
	assert.Equal(t, []gateway.Tag{gateway.TagGrades, gateway.TagSubmissions}, CreateGrade.Invalidates)
	assert.Equal(t, []gateway.Tag{gateway.TagFeedbacks, gateway.TagSubmissions}, DeleteFeedback.Invalidates)
	assert.Equal(t, []gateway.Tag{gateway.TagTuitionFees}, FilterTuitionFees.Provides)
}

func TestNewTuitionFee_ForGroup(t *testing.T) {
	fee := NewTuitionFee{GroupID: 2, FeePeriod: validPeriod()}
	group, ok := fee.ForGroup()
	assert.True(t, ok)
	assert.Equal(t, GroupTuitionFee{GroupID: 2, FeePeriod: validPeriod()}, group)

	fee.StudentID = 4
	_, ok = fee.ForGroup()
	assert.False(t, ok)
}

func TestTuitionFee_IsOverdue(t *testing.T) {
	paymentID := 3
	tests := []struct {
		name string
		fee  TuitionFee
		want bool
	}{
		{"due yesterday", TuitionFee{DueDate: "2024-10-01T00:00:00.000Z"}, true},
		{"due today", TuitionFee{DueDate: "2024-10-02"}, false},
		{"paid", TuitionFee{DueDate: "2024-10-01", PaymentID: &paymentID}, false},
		{"no due date", TuitionFee{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fee.IsOverdue("2024-10-02"))
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "2024-09-01", Day("2024-09-01T08:00:00Z"))
	assert.Equal(t, "2024", Day("2024"))

	assert.Equal(t, 75.0, AttendanceSummary{Count: 4, AttendedCount: 3}.Rate())
	assert.Zero(t, AttendanceSummary{}.Rate())

	assert.True(t, Assignment{DueDate: "2024-09-01"}.IsPastDue("2024-09-02"))
	assert.False(t, Assignment{DueDate: "2024-09-02"}.IsPastDue("2024-09-02"))

	var nobody *PersonRef
	assert.Equal(t, "", nobody.FullName())
	assert.Equal(t, "Anna Petrova", (&PersonRef{FirstName: "Anna", LastName: "Petrova"}).FullName())

	grade := 12.5
	assert.True(t, Submission{Grade: &SubmissionGrade{GradeValue: &grade}}.IsGraded())
	assert.False(t, Submission{Grade: &SubmissionGrade{}}.IsGraded())
}
