package school

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-web/core"
)

var (
	studentOrGroupTag  = "student_or_group"
	studentOrGroupText = "one of student or group is required"

	periodOrderTag  = "period_order"
	periodOrderText = "the period must end after it starts"

	dueAfterAssignTag  = "due_after_assign"
	dueAfterAssignText = "the due date cannot be before the assign date"

	timeOrderTag  = "time_order"
	timeOrderText = "the lesson must end after it starts"
)

// InitValidators registers the school validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newTuitionFeeStructValidation, NewTuitionFee{})
	core.RegisterCustomTranslation(validate, translator, studentOrGroupTag, studentOrGroupText)

	validate.RegisterStructValidation(feePeriodStructValidation, FeePeriod{})
	core.RegisterCustomTranslation(validate, translator, periodOrderTag, periodOrderText)

	validate.RegisterStructValidation(newAssignmentStructValidation, NewAssignment{})
	validate.RegisterStructValidation(assignmentUpdateStructValidation, AssignmentUpdate{})
	core.RegisterCustomTranslation(validate, translator, dueAfterAssignTag, dueAfterAssignText)

	validate.RegisterStructValidation(newLessonStructValidation, NewLesson{})
	core.RegisterCustomTranslation(validate, translator, timeOrderTag, timeOrderText)
}

// Validate cleans the input when it knows how, then validates it.
func Validate(validate *validator.Validate, input interface{}) error {
	if c, ok := input.(interface{ Clean() }); ok {
		c.Clean()
	}
	return validate.Struct(input)
}

func newTuitionFeeStructValidation(sl validator.StructLevel) {
	fee := sl.Current().Interface().(NewTuitionFee)
	if fee.StudentID == 0 && fee.GroupID == 0 {
		sl.ReportError(fee.StudentID, "student_id", "StudentID", studentOrGroupTag, "")
		sl.ReportError(fee.GroupID, "group_id", "GroupID", studentOrGroupTag, "")
	}
}

func feePeriodStructValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(FeePeriod)
	if p.PeriodStart != "" && p.PeriodEnd != "" && p.PeriodEnd < p.PeriodStart {
		sl.ReportError(p.PeriodEnd, "period_end", "PeriodEnd", periodOrderTag, "")
	}
}

func newAssignmentStructValidation(sl validator.StructLevel) {
	a := sl.Current().Interface().(NewAssignment)
	checkDueDate(sl, a.AssignDate, a.DueDate)
}

func assignmentUpdateStructValidation(sl validator.StructLevel) {
	a := sl.Current().Interface().(AssignmentUpdate)
	checkDueDate(sl, a.AssignDate, a.DueDate)
}

// dates are validated as YYYY-MM-DD, so they compare as strings
func checkDueDate(sl validator.StructLevel, assign, due string) {
	if assign != "" && due != "" && due < assign {
		sl.ReportError(due, "due_date", "DueDate", dueAfterAssignTag, "")
	}
}

func newLessonStructValidation(sl validator.StructLevel) {
	l := sl.Current().Interface().(NewLesson)
	if l.StartTime != "" && l.EndTime != "" && l.EndTime <= l.StartTime {
		sl.ReportError(l.EndTime, "end_time", "EndTime", timeOrderTag, "")
	}
}
