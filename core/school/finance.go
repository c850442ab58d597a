package school

import (
	"net/http"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

type (
	TuitionFee struct {
		ID          int         `json:"id"`
		StudentID   int         `json:"student_id"`
		PeriodStart string      `json:"period_start"`
		PeriodEnd   string      `json:"period_end"`
		Amount      float64     `json:"amount"`
		DueDate     string      `json:"due_date"`
		Description string      `json:"description"`
		PaymentID   *int        `json:"payment_id"`
		Student     *PersonRef  `json:"student,omitempty"`
		Payment     *FeePayment `json:"payment,omitempty"`
	}

	FeePayment struct {
		ID          int     `json:"id"`
		Amount      float64 `json:"amount"`
		PaymentDate string  `json:"payment_date"`
	}

	TuitionFeeList struct {
		TuitionFees []TuitionFee `json:"tuitionFees"`
		Count       int          `json:"count"`
		TotalAmount float64      `json:"totalAmount"`
	}
)

func (f TuitionFee) IsPaid() bool {
	return f.PaymentID != nil || f.Payment != nil
}

// IsOverdue reports whether an unpaid fee is due before today (YYYY-MM-DD).
func (f TuitionFee) IsOverdue(today string) bool {
	return !f.IsPaid() && f.DueDate != "" && Day(f.DueDate) < today
}

// FeePeriod is the billed period shared by fee creation inputs.
type FeePeriod struct {
	PeriodStart string  `json:"period_start" form:"period_start" validate:"required,isodate"`
	PeriodEnd   string  `json:"period_end" form:"period_end" validate:"required,isodate"`
	Amount      float64 `json:"amount" form:"amount" validate:"min=0"`
	DueDate     string  `json:"due_date" form:"due_date" validate:"required,isodate"`
	Description string  `json:"description,omitempty" form:"description"`
}

func (p *FeePeriod) Clean() {
	p.PeriodStart = core.CleanString(p.PeriodStart)
	p.PeriodEnd = core.CleanString(p.PeriodEnd)
	p.DueDate = core.CleanString(p.DueDate)
	p.Description = core.CleanString(p.Description)
}

// NewTuitionFee bills a single student, or every student of a group.
type NewTuitionFee struct {
	StudentID int `json:"student_id,omitempty" form:"student_id" validate:"omitempty,gt=0"`
	GroupID   int `json:"group_id,omitempty" form:"group_id" validate:"omitempty,gt=0"`
	FeePeriod
}

// ForGroup returns the by-group input when the fee targets a group.
func (f NewTuitionFee) ForGroup() (GroupTuitionFee, bool) {
	if f.StudentID != 0 || f.GroupID == 0 {
		return GroupTuitionFee{}, false
	}
	return GroupTuitionFee{GroupID: f.GroupID, FeePeriod: f.FeePeriod}, true
}

type GroupTuitionFee struct {
	GroupID int `json:"group_id" form:"group_id" validate:"required,gt=0"`
	FeePeriod
}

type TuitionFeeFilter struct {
	StudentID   int    `query:"student_id"`
	GroupID     int    `query:"group_id"`
	StartDate   string `query:"start_date" validate:"isodate"`
	EndDate     string `query:"end_date" validate:"isodate"`
	OnlyOverdue bool   `query:"only_overdue"`
}

func (f TuitionFeeFilter) toQuery() query {
	return newQuery().
		int("student_id", f.StudentID).
		int("group_id", f.GroupID).
		str("start_date", f.StartDate).
		str("end_date", f.EndDate)
}

type TuitionFeesResponse struct {
	Data TuitionFeeList `json:"data"`
}

type TuitionFeeCreated struct {
	TuitionFee TuitionFee `json:"tuitionFee"`
}

type GroupTuitionFeesCreated struct {
	TuitionFees []TuitionFee `json:"tuitionFees"`
	Count       int          `json:"count"`
}

func tuitionFeeRead(name, path string) gateway.Query[TuitionFeeFilter, TuitionFeesResponse] {
	return gateway.Query[TuitionFeeFilter, TuitionFeesResponse]{
		Name:     name,
		Build:    func(f TuitionFeeFilter) gateway.Request { return get(path, f.toQuery()) },
		Provides: tags(gateway.TagTuitionFees),
	}
}

var (
	CreateTuitionFee = gateway.Mutation[NewTuitionFee, TuitionFeeCreated]{
		Name:        "createTuitionFee",
		Build:       func(f NewTuitionFee) gateway.Request { return send(http.MethodPost, "/tuitionFees/", f) },
		Invalidates: tags(gateway.TagTuitionFees),
	}

	CreateGroupTuitionFees = gateway.Mutation[GroupTuitionFee, GroupTuitionFeesCreated]{
		Name:        "createTuitionFeesByGroup",
		Build:       func(f GroupTuitionFee) gateway.Request { return send(http.MethodPost, "/tuitionFees/by-group", f) },
		Invalidates: tags(gateway.TagTuitionFees),
	}

	StudentTuitionFees = tuitionFeeRead("studentTuitionFees", "/tuitionFees/student-range")
	GroupTuitionFees   = tuitionFeeRead("groupTuitionFees", "/tuitionFees/group")
	OverdueTuitionFees = tuitionFeeRead("overdueTuitionFees", "/tuitionFees/overdue")
	FilterTuitionFees  = tuitionFeeRead("filterTuitionFees", "/tuitionFees/filter")
)

// Payments

type (
	Payment struct {
		ID               int         `json:"id"`
		TuitionFeeID     int         `json:"tuition_fee_id"`
		AmountPaid       float64     `json:"amount_paid"`
		PaymentDate      string      `json:"payment_date"`
		PaymentMethod    string      `json:"payment_method"`
		ReceiptReference string      `json:"receipt_reference"`
		TuitionFee       *TuitionFee `json:"tuitionFee,omitempty"`
		Student          *PersonRef  `json:"student,omitempty"`
	}

	PaymentList struct {
		Payments    []Payment `json:"payments"`
		Count       int       `json:"count"`
		TotalAmount float64   `json:"totalAmount"`
	}
)

type NewPayment struct {
	TuitionFeeID     int     `json:"tuition_fee_id" form:"tuition_fee_id" validate:"required,gt=0"`
	AmountPaid       float64 `json:"amount_paid" form:"amount_paid" validate:"gt=0"`
	PaymentDate      string  `json:"payment_date,omitempty" form:"payment_date" validate:"isodate"`
	PaymentMethod    string  `json:"payment_method,omitempty" form:"payment_method" validate:"max=50"`
	ReceiptReference string  `json:"receipt_reference,omitempty" form:"receipt_reference" validate:"max=100"`
}

func (np *NewPayment) Clean() {
	np.PaymentDate = core.CleanString(np.PaymentDate)
	np.PaymentMethod = core.CleanString(np.PaymentMethod)
	np.ReceiptReference = core.CleanString(np.ReceiptReference)
}

type PaymentFilter struct {
	StudentID int    `query:"student_id"`
	GroupID   int    `query:"group_id"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

type PaymentsResponse struct {
	Data PaymentList `json:"data"`
}

var (
	CreatePayment = gateway.Mutation[NewPayment, Payment]{
		Name:        "createPayment",
		Build:       func(np NewPayment) gateway.Request { return send(http.MethodPost, "/payments/", np) },
		Invalidates: tags(gateway.TagPayments, gateway.TagTuitionFees),
	}

	FilterPayments = gateway.Query[PaymentFilter, PaymentsResponse]{
		Name: "filterPayments",
		Build: func(f PaymentFilter) gateway.Request {
			return get("/payments/filter", newQuery().
				int("student_id", f.StudentID).
				int("group_id", f.GroupID).
				str("start_date", f.StartDate).
				str("end_date", f.EndDate))
		},
		Provides: tags(gateway.TagPayments),
	}
)
