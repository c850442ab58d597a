package gateway

// Tag labels cached reads and mutations; invalidating a Tag marks every read providing it as stale.
type Tag string

const (
	TagAuth        Tag = "Auth"
	TagCourses     Tag = "Courses"
	TagGroups      Tag = "Groups"
	TagStudents    Tag = "Students"
	TagTeachers    Tag = "Teachers"
	TagLessons     Tag = "Lessons"
	TagAssignments Tag = "Assignments"
	TagSubmissions Tag = "Submissions"
	TagGrades      Tag = "Grades"
	TagFeedbacks   Tag = "Feedbacks"
	TagAttendances Tag = "Attendances"
	TagTuitionFees Tag = "TuitionFees"
	TagPayments    Tag = "Payments"
)

// Tags is the fixed set of declared tags.
var Tags = []Tag{
	TagAuth, TagCourses, TagGroups, TagStudents, TagTeachers, TagLessons, TagAssignments,
	TagSubmissions, TagGrades, TagFeedbacks, TagAttendances, TagTuitionFees, TagPayments,
}
