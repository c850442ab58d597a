package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
)

type (
	adminStudentsData struct {
		Search   school.StudentSearch
		Students gateway.Result[school.StudentsResponse]
		Groups   gateway.Result[school.GroupsResponse]
		Editing  int
	}

	adminGroupsData struct {
		Filter   school.GroupFilter
		Groups   gateway.Result[school.GroupsResponse]
		Teachers gateway.Result[[]school.Teacher]
	}

	adminTeachersData struct {
		Filter   school.TeacherFilter
		Teachers gateway.Result[[]school.Teacher]
	}
)

func registerAdminPages(app *echo.Echo, h *handler) {
	route(app, navigation.AdminStudents, h.adminStudents, h.enrollStudent)
	app.POST(navigation.AdminStudents.Pattern+"/:id", h.updateStudent)
	route(app, navigation.AdminGroups, h.adminGroups, h.createGroup)
	route(app, navigation.AdminTeachers, h.adminTeachers, h.enrollTeacher)
}

func (h *handler) adminStudents(ctx echo.Context) error {
	return h.adminStudentsView(ctx, nil)
}

func (h *handler) adminStudentsView(ctx echo.Context, f *form) error {
	var search school.StudentSearch
	bindQuery(ctx, &search)
	search.Clean()
	data := adminStudentsData{
		Search:   search,
		Students: read(ctx, school.SearchStudents, search),
		Groups:   read(ctx, school.FilterGroups, school.GroupFilter{}),
		Editing:  intQuery(ctx, "edit"),
	}
	return h.render(ctx, http.StatusOK, "admin_students", page{Title: "Students", Form: f, Data: data})
}

func (h *handler) enrollStudent(ctx echo.Context) error {
	return h.enroll(ctx, user.RoleStudent, "Student added", navigation.AdminStudents.Path(), h.adminStudentsView)
}

func (h *handler) updateStudent(ctx echo.Context) error {
	var su school.StudentUpdate
	err := h.bindForm(ctx, &su)
	if err == nil {
		_, err = mutate(ctx, school.UpdateStudent, su)
	}
	return h.submitted(ctx, err, "Student updated", navigation.AdminStudents.Path(), func(f *form) error {
		return h.adminStudentsView(ctx, f)
	})
}

func (h *handler) adminGroups(ctx echo.Context) error {
	return h.adminGroupsView(ctx, nil)
}

func (h *handler) adminGroupsView(ctx echo.Context, f *form) error {
	var filter school.GroupFilter
	bindQuery(ctx, &filter)
	data := adminGroupsData{
		Filter:   filter,
		Groups:   read(ctx, school.FilterGroups, filter),
		Teachers: read(ctx, school.ListTeachers, school.TeacherFilter{SortBy: school.SortByHireDate}),
	}
	return h.render(ctx, http.StatusOK, "admin_groups", page{Title: "Groups", Form: f, Data: data})
}

func (h *handler) createGroup(ctx echo.Context) error {
	var ng school.NewGroup
	err := h.bindForm(ctx, &ng)
	if err == nil {
		_, err = mutate(ctx, school.CreateGroup, ng)
	}
	return h.submitted(ctx, err, "Group created", navigation.AdminGroups.Path(), func(f *form) error {
		return h.adminGroupsView(ctx, f)
	})
}

func (h *handler) adminTeachers(ctx echo.Context) error {
	return h.adminTeachersView(ctx, nil)
}

func (h *handler) adminTeachersView(ctx echo.Context, f *form) error {
	var filter school.TeacherFilter
	bindQuery(ctx, &filter)
	if err := school.Validate(h.validate, &filter); err != nil {
		filter = school.TeacherFilter{SortBy: school.SortByHireDate}
	}
	data := adminTeachersData{
		Filter:   filter,
		Teachers: read(ctx, school.ListTeachers, filter),
	}
	return h.render(ctx, http.StatusOK, "admin_teachers", page{Title: "Teachers", Form: f, Data: data})
}

func (h *handler) enrollTeacher(ctx echo.Context) error {
	return h.enroll(ctx, user.RoleTeacher, "Teacher added", navigation.AdminTeachers.Path(), h.adminTeachersView)
}

// enroll registers a user with the given role on behalf of the admin.
func (h *handler) enroll(ctx echo.Context, role user.Role, msg, to string, view func(echo.Context, *form) error) error {
	var nu user.NewUser
	err := h.bindForm(ctx, &nu, func() { nu.Role = role })
	if err == nil {
		_, err = mutate(ctx, user.Enroll, nu)
	}
	if isRejection(err) && !gateway.IsUnauthorized(err) {
		err = rejection(err, "the user could not be added")
	}
	return h.submitted(ctx, err, msg, to, func(f *form) error {
		return view(ctx, f)
	})
}
