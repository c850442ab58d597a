package school

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-web/core"
)

func newValidator() (*validator.Validate, func(error) map[string]string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	fields := func(err error) map[string]string {
		if err == nil {
			return nil
		}
		vErr, ok := core.TranslateValidation(err, translator).(*core.ValidationError)
		if !ok {
			return map[string]string{"": err.Error()}
		}
		return vErr.FieldMap()
	}
	return validate, fields
}

func validPeriod() FeePeriod {
	return FeePeriod{
		PeriodStart: "2024-09-01",
		PeriodEnd:   "2024-12-31",
		Amount:      1500,
		DueDate:     "2024-10-01",
	}
}

func TestValidate(t *testing.T) {
	validate, fields := newValidator()

	tests := []struct {
		name    string
		input   interface{}
		wantErr map[string]string
	}{
		{
			name:  "fee for a student",
			input: &NewTuitionFee{StudentID: 4, FeePeriod: validPeriod()},
		},
		{
			name:  "fee for a group",
			input: &NewTuitionFee{GroupID: 2, FeePeriod: validPeriod()},
		},
		{
			name:  "fee for nobody",
			input: &NewTuitionFee{FeePeriod: validPeriod()},
			wantErr: map[string]string{
				"student_id": "one of student or group is required",
				"group_id":   "one of student or group is required",
			},
		},
		{
			name: "fee period ends before it starts",
			input: &NewTuitionFee{StudentID: 4, FeePeriod: FeePeriod{
				PeriodStart: "2024-12-31",
				PeriodEnd:   "2024-09-01",
				DueDate:     "2024-10-01",
			}},
			wantErr: map[string]string{"period_end": "the period must end after it starts"},
		},
		{
			name: "fee period is required",
			input: &GroupTuitionFee{GroupID: 2, FeePeriod: FeePeriod{
				PeriodStart: " ",
				PeriodEnd:   "31/12/2024",
				Amount:      -1,
			}},
			wantErr: map[string]string{
				"period_start": "this field is required",
				"period_end":   "period_end must be a date formatted as YYYY-MM-DD",
				"amount":       "amount must be 0 or greater",
				"due_date":     "this field is required",
			},
		},
		{
			name:  "assignment",
			input: &NewAssignment{CourseID: 1, Title: " Essay ", AssignDate: "2024-09-01", DueDate: "2024-09-10"},
		},
		{
			name:  "assignment due before assigned",
			input: &NewAssignment{CourseID: 1, Title: "Essay", AssignDate: "2024-09-10", DueDate: "2024-09-01"},
			wantErr: map[string]string{
				"due_date": "the due date cannot be before the assign date",
			},
		},
		{
			name:  "assignment missing fields",
			input: &NewAssignment{Title: "   "},
			wantErr: map[string]string{
				"course_id": "this field is required",
				"title":     "this field is required",
				"due_date":  "this field is required",
			},
		},
		{
			name:    "assignment update due before assigned",
			input:   &AssignmentUpdate{ID: 3, AssignDate: "2024-09-10", DueDate: "2024-09-01"},
			wantErr: map[string]string{"due_date": "the due date cannot be before the assign date"},
		},
		{
			name:  "lesson",
			input: &NewLesson{CourseID: 1, LessonDate: "2024-09-02", StartTime: "08:30", EndTime: "09:15"},
		},
		{
			name:    "lesson ends before it starts",
			input:   &NewLesson{CourseID: 1, LessonDate: "2024-09-02", StartTime: "09:15", EndTime: "08:30"},
			wantErr: map[string]string{"end_time": "the lesson must end after it starts"},
		},
		{
			name:    "lesson with a bad time",
			input:   &NewLesson{CourseID: 1, LessonDate: "2024-09-02", StartTime: "9h"},
			wantErr: map[string]string{"start_time": "start_time must be a time formatted as HH:MM"},
		},
		{
			name:    "blank submission",
			input:   &NewSubmission{AssignmentID: 1, StudentID: 2, Content: "\n\t"},
			wantErr: map[string]string{"content": "this field is required"},
		},
		{
			name:    "grade out of range",
			input:   &NewGrade{SubmissionID: 1, Grade: 101},
			wantErr: map[string]string{"grade": "grade must be 100 or less"},
		},
		{
			name:    "payment without amount",
			input:   &NewPayment{TuitionFeeID: 1},
			wantErr: map[string]string{"amount_paid": "amount_paid must be greater than 0"},
		},
		{
			name:    "teachers sorted by an unknown field",
			input:   &TeacherFilter{SortBy: "name"},
			wantErr: map[string]string{"SortBy": "SortBy must be one of [hireDate courseCount]"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(validate, tc.input)
			assert.Equal(t, tc.wantErr, fields(err))
		})
	}
}

func TestValidate_Cleans(t *testing.T) {
	validate, _ := newValidator()

	na := NewAssignment{CourseID: 1, Title: "  Essay\n", DueDate: " 2024-09-10 "}
	assert.NoError(t, Validate(validate, &na))
	assert.Equal(t, "Essay", na.Title)
	assert.Equal(t, "2024-09-10", na.DueDate)

	fee := NewTuitionFee{StudentID: 1, FeePeriod: validPeriod()}
	fee.Description = "  Autumn term "
	assert.NoError(t, Validate(validate, &fee))
	assert.Equal(t, "Autumn term", fee.Description)

	tf := TeacherFilter{FirstName: " Anna "}
	assert.NoError(t, Validate(validate, &tf))
	assert.Equal(t, SortByHireDate, tf.SortBy)
	assert.Equal(t, "Anna", tf.FirstName)
}
