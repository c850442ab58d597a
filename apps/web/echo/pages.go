package echoweb

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/user"
)

// teacherID returns the id the backend expects in teacher_id fields: the identity's own id.
func teacherID(usr *user.Me) int {
	if usr == nil {
		return 0
	}
	return usr.ID
}

func studentID(usr *user.Me) int {
	if usr == nil || usr.StudentID == nil {
		return 0
	}
	return *usr.StudentID
}

func groupID(usr *user.Me) int {
	if usr == nil || usr.GroupID == nil {
		return 0
	}
	return *usr.GroupID
}

// bindQuery binds the query string into filter. Malformed values are left unset.
func bindQuery(ctx echo.Context, filter interface{}) {
	_ = (&echo.DefaultBinder{}).BindQueryParams(ctx, filter)
}

func intParam(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.Param(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func intQuery(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// boolQuery parses a tri-state select: "true", "false" or anything else for unset.
func boolQuery(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &b
}

func (h *handler) today() string {
	return h.now().Format(core.DateLayout)
}

// childSelection is the child a parent page shows: the `student_id` param (query or form),
// or the first child.
type childSelection struct {
	Parent   bool
	Children []user.Child
	Selected user.Child
	Found    bool
}

func selectChild(ctx echo.Context, usr *user.Me) childSelection {
	sel := childSelection{Parent: true, Children: usr.Children}
	if id := formInt(ctx, "student_id"); id > 0 {
		sel.Selected, sel.Found = usr.Child(id)
	} else if len(usr.Children) > 0 {
		sel.Selected, sel.Found = usr.Children[0], true
	}
	return sel
}

func (s childSelection) ID() int {
	if !s.Found {
		return 0
	}
	return s.Selected.ID
}

func formInt(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.FormValue(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
