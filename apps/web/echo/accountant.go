package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
)

func registerAccountantPages(app *echo.Echo, h *handler) {
	route(app, navigation.AccountantTuitionFees, h.accountantTuitionFees, h.createTuitionFee)
	app.GET(navigation.AccountantPayments.Pattern, h.accountantPayments)
}

func (h *handler) accountantTuitionFees(ctx echo.Context) error {
	return h.accountantTuitionFeesView(ctx, nil)
}

func (h *handler) accountantTuitionFeesView(ctx echo.Context, f *form) error {
	var filter school.TuitionFeeFilter
	bindQuery(ctx, &filter)

	fees := school.FilterTuitionFees
	if filter.OnlyOverdue {
		fees = school.OverdueTuitionFees
	}
	data := tuitionFeesData{
		Accountant: true,
		Filter:     filter,
		Fees:       read(ctx, fees, filter),
		Groups:     read(ctx, school.FilterGroups, school.GroupFilter{}),
		Students:   read(ctx, school.SearchStudents, school.StudentSearch{}),
		Today:      h.today(),
	}
	return h.render(ctx, http.StatusOK, "tuition_fees", page{Title: "Tuition Fees", Form: f, Data: data})
}

// createTuitionFee bills a student, or every student of a group when only a group is picked.
func (h *handler) createTuitionFee(ctx echo.Context) error {
	var nf school.NewTuitionFee
	err := h.bindForm(ctx, &nf)
	if err == nil {
		if gf, ok := nf.ForGroup(); ok {
			_, err = mutate(ctx, school.CreateGroupTuitionFees, gf)
		} else {
			_, err = mutate(ctx, school.CreateTuitionFee, nf)
		}
	}
	return h.submitted(ctx, err, "Tuition fee created", navigation.AccountantTuitionFees.Path(), func(f *form) error {
		return h.accountantTuitionFeesView(ctx, f)
	})
}

func (h *handler) accountantPayments(ctx echo.Context) error {
	var filter school.PaymentFilter
	bindQuery(ctx, &filter)
	data := paymentsData{
		Accountant: true,
		Filter:     filter,
		Payments:   read(ctx, school.FilterPayments, filter),
		Groups:     read(ctx, school.FilterGroups, school.GroupFilter{}),
		Students:   read(ctx, school.SearchStudents, school.StudentSearch{}),
	}
	return h.render(ctx, http.StatusOK, "payments", page{Title: "Payments", Data: data})
}
