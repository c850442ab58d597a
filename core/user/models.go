package user

import (
	"strings"

	"github.com/trezcool/masomo-web/core"
)

type Role string

// Roles
const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleParent     Role = "parent"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
)

var (
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleParent, RoleAdmin, RoleAccountant}

	// RegistrationRoles are the roles a visitor may pick when signing up.
	RegistrationRoles = []Role{RoleStudent, RoleTeacher, RoleParent}

	roleLabels = map[Role]string{
		RoleStudent:    "Student",
		RoleTeacher:    "Teacher",
		RoleParent:     "Parent",
		RoleAdmin:      "Admin",
		RoleAccountant: "Accountant",
	}
)

// ParseRole returns the Role named by s, or "" when s is not a known role.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return ""
}

func (r Role) IsValid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

func (r Role) CanRegister() bool {
	for _, role := range RegistrationRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Me is the identity of the signed-in user, as returned by the backend. It is never mutated locally.
type Me struct {
	ID           int     `json:"id"`
	UserID       int     `json:"user_id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Patronym     string  `json:"patronym"`
	Phone        *string `json:"phone"`
	BirthDate    *string `json:"birth_date"`
	Role         Role    `json:"role"`
	IsActive     bool    `json:"is_active"`
	GroupID      *int    `json:"group_id"`
	ParentID     *int    `json:"parent_id"`
	StudentID    *int    `json:"student_id"`
	TeacherID    *int    `json:"teacher_id"`
	TuitionFeeID *int    `json:"tuition_fee_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	Children     []Child `json:"children,omitempty"` // parents only
}

// Child is a student linked to a parent account.
type Child struct {
	ID           int     `json:"id"`
	UserID       int     `json:"user_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Patronym     string  `json:"patronym"`
	BirthDate    string  `json:"birth_date"`
	GroupID      *int    `json:"group_id"`
	ParentID     *int    `json:"parent_id"`
	TuitionFeeID *int    `json:"tuition_fee_id"`
	Phone        string  `json:"phone"`
	AverageGrade float64 `json:"average_grade"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func (u *Me) FullName() string {
	return core.FullName(u.FirstName, u.LastName, u.Patronym)
}

func (u *Me) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *Me) IsTeacher() bool    { return u.Role == RoleTeacher }
func (u *Me) IsStudent() bool    { return u.Role == RoleStudent }
func (u *Me) IsParent() bool     { return u.Role == RoleParent }
func (u *Me) IsAccountant() bool { return u.Role == RoleAccountant }

// Child returns the parent's child with the given student id.
func (u *Me) Child(id int) (Child, bool) {
	for _, c := range u.Children {
		if c.ID == id {
			return c, true
		}
	}
	return Child{}, false
}

func (c Child) FullName() string {
	return core.FullName(c.FirstName, c.LastName, c.Patronym)
}

// NewUser contains the information needed to register a user.
// Admins add students and teachers through it as well.
type NewUser struct {
	Email          string `json:"email" form:"email" validate:"required,email"`
	Password       string `json:"password" form:"password" validate:"required"`
	Role           Role   `json:"role" form:"role" validate:"required,regrole"`
	FirstName      string `json:"first_name" form:"first_name" validate:"required"`
	LastName       string `json:"last_name" form:"last_name" validate:"required"`
	Patronym       string `json:"patronym" form:"patronym" validate:"required"`
	Specialization string `json:"specialization,omitempty" form:"specialization"`
	Phone          string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=32"`
	HireDate       string `json:"hire_date,omitempty" form:"hire_date" validate:"isodate"`
	BirthDate      string `json:"birth_date,omitempty" form:"birth_date" validate:"isodate"`
	ParentID       int    `json:"parent_id,omitempty" form:"parent_id" validate:"omitempty,gt=0"`
}

// Clean normalizes the user input before validation.
func (nu *NewUser) Clean() {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Patronym = core.CleanString(nu.Patronym)
	nu.Specialization = core.CleanString(nu.Specialization)
	nu.Phone = core.CleanString(nu.Phone)
	nu.HireDate = core.CleanString(nu.HireDate)
	nu.BirthDate = core.CleanString(nu.BirthDate)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
	if nu.Role != RoleTeacher {
		nu.Specialization = ""
		nu.HireDate = ""
	}
	if nu.Role != RoleStudent {
		nu.ParentID = 0
	}
}

type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (c *Credentials) Clean() {
	c.Email = core.CleanString(c.Email, true /* lower */)
}

// MeResponse is the body of the identity endpoint.
type MeResponse struct {
	Success bool `json:"success"`
	Data    *Me  `json:"data"`
}

// TokenResponse is the body of the sign-in and registration endpoints.
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}
