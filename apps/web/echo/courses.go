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
	homeData struct {
		Role  user.Role
		Menu  []navigation.Item
		Child []user.Child
	}

	coursesData struct {
		Admin    bool
		Courses  gateway.Result[[]school.Course]
		Filtered gateway.Result[school.CoursesResponse]
		Teachers gateway.Result[[]school.Teacher]
		Filter   school.CourseFilter
	}
)

func registerCoursePages(app *echo.Echo, h *handler) {
	app.GET(navigation.Home.Pattern, h.home)
	app.GET(navigation.StudentCourses.Pattern, h.studentCourses)
	app.GET(navigation.TeacherCourses.Pattern, h.teacherCourses)
	route(app, navigation.AdminCourses, h.adminCourses, h.createCourse)
	app.POST(navigation.AdminCourses.Pattern+"/assign-teacher", h.assignTeacher)
}

func (h *handler) home(ctx echo.Context) error {
	usr := getSession(ctx).user()
	data := homeData{Role: usr.Role, Menu: navigation.For(usr.Role)[1:], Child: usr.Children}
	return h.render(ctx, http.StatusOK, "home", page{Title: "Home", Data: data})
}

func (h *handler) studentCourses(ctx echo.Context) error {
	sid := studentID(getSession(ctx).user())
	data := coursesData{Courses: readIf(ctx, sid > 0, school.CoursesByStudent, sid)}
	return h.render(ctx, http.StatusOK, "courses", page{Title: "My Courses", Data: data})
}

func (h *handler) teacherCourses(ctx echo.Context) error {
	tid := teacherID(getSession(ctx).user())
	data := coursesData{Courses: readIf(ctx, tid > 0, school.CoursesByTeacher, tid)}
	return h.render(ctx, http.StatusOK, "courses", page{Title: "My Courses", Data: data})
}

func (h *handler) adminCourses(ctx echo.Context) error {
	return h.adminCoursesView(ctx, nil)
}

func (h *handler) adminCoursesView(ctx echo.Context, f *form) error {
	var filter school.CourseFilter
	bindQuery(ctx, &filter)
	data := coursesData{
		Admin:    true,
		Filter:   filter,
		Filtered: read(ctx, school.FilterCourses, filter),
		Teachers: read(ctx, school.ListTeachers, school.TeacherFilter{SortBy: school.SortByHireDate}),
	}
	return h.render(ctx, http.StatusOK, "courses", page{Title: "Courses", Form: f, Data: data})
}

func (h *handler) createCourse(ctx echo.Context) error {
	var nc school.NewCourse
	err := h.bindForm(ctx, &nc)
	if err == nil {
		_, err = mutate(ctx, school.CreateCourse, nc)
	}
	return h.submitted(ctx, err, "Course created", navigation.AdminCourses.Path(), func(f *form) error {
		return h.adminCoursesView(ctx, f)
	})
}

func (h *handler) assignTeacher(ctx echo.Context) error {
	var ta school.TeacherAssignment
	err := h.bindForm(ctx, &ta)
	if err == nil {
		_, err = mutate(ctx, school.AssignTeacher, ta)
	}
	return h.submitted(ctx, err, "Teacher assigned", navigation.AdminCourses.Path(), func(f *form) error {
		return h.adminCoursesView(ctx, f)
	})
}
