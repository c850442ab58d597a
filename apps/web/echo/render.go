package echoweb

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
)

const (
	csrfField = "_csrf"
	formField = "_form"
)

//go:embed templates
var templateFS embed.FS

// renderer renders the pages. Each page is parsed on its own copy of the layout
// so that every page can define the "content" block.
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() (*renderer, error) {
	base, err := template.New("layout").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout/*.html")
	if err != nil {
		return nil, err
	}
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		tpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if tpl, err = tpl.ParseFS(templateFS, file); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = tpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	return tpl.ExecuteTemplate(w, "layout", data)
}

var templateFuncs = template.FuncMap{
	"day": school.Day,
	"fullName": func(parts ...string) string {
		return core.FullName(parts...)
	},
	"money": func(amount float64) string {
		return fmt.Sprintf("$%.2f", amount)
	},
	"grade": func(g *float64) string {
		if g == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *g)
	},
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"tri": func(b *bool) string {
		if b == nil {
			return ""
		}
		return strconv.FormatBool(*b)
	},
	"str": func(v interface{}) string {
		return fmt.Sprint(v)
	},
	"roles": func() []user.Role { return user.RegistrationRoles },
}

// page is the data of every rendered page.
type page struct {
	Title string
	Path  string
	CSRF  string
	User  *user.Me
	Nav   []navigation.Item
	Flash string
	Form  *form
	Data  interface{}
}

// form is the state of a submitted form: its values and errors.
type form struct {
	Name   string
	Values url.Values
	Errors map[string]string
	Error  string
}

func (f *form) Get(key string) string {
	if f == nil || f.Values == nil {
		return ""
	}
	return f.Values.Get(key)
}

// Err returns the error of field.
func (f *form) Err(field string) string {
	if f == nil {
		return ""
	}
	return f.Errors[field]
}

func (f *form) Failed() bool {
	return f != nil && (f.Error != "" || len(f.Errors) > 0)
}

// Is reports whether the form named name was the one submitted.
func (f *form) Is(name string) bool {
	return f != nil && f.Name == name
}

// For returns f when it is the form named name, otherwise an empty form.
// Pages with several forms use it so that values and errors stay on the submitted one.
func (f *form) For(name string) *form {
	if f.Is(name) {
		return f
	}
	return &form{}
}

func (h *handler) render(ctx echo.Context, code int, name string, p page) error {
	p.Path = ctx.Request().URL.Path
	p.CSRF, _ = ctx.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	if usr := getSession(ctx).user(); usr != nil {
		p.User = usr
		p.Nav = navigation.For(usr.Role)
	}
	p.Flash = popFlash(ctx)
	if p.Form == nil {
		p.Form = &form{}
	}
	if p.Form.Failed() && code == http.StatusOK {
		code = http.StatusUnprocessableEntity
	}
	return ctx.Render(code, name, p)
}
