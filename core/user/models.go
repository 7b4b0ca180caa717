package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academy/core"
)

// Roles
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleCoach      = "coach"
	RoleParent     = "parent"
)

// Statuses
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusRejected  = "rejected"
	StatusSuspended = "suspended"
)

var (
	AllRoles    = []string{RoleSuperAdmin, RoleAdmin, RoleCoach, RoleParent}
	AllStatuses = []string{StatusActive, StatusPending, StatusRejected, StatusSuspended}

	rolePriorities = map[string]int{
		RoleSuperAdmin: 40,
		RoleAdmin:      30,
		RoleCoach:      20,
		RoleParent:     10,
	}

	Roles = []Role{
		{Name: "Parent", Value: RoleParent},
		{Name: "Coach", Value: RoleCoach},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}
)

// OrderingFields maps the sortable JSON field names to their columns.
var OrderingFields = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"status":    "status",
	"createdAt": "created_at",
	"lastLogin": "last_login",
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string      `json:"id" db:"id"`
	AcademyID    string      `json:"academyId" db:"academy_id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Phone        null.String `json:"phone" db:"phone"`
	Role         string      `json:"role" db:"role"`
	Status       string      `json:"status" db:"status"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"` // UTC
	LastLogin    null.Time   `json:"lastLogin" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsActive() bool     { return u.Status == StatusActive }
func (u User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }
func (u User) IsAdmin() bool      { return u.Role == RoleAdmin || u.Role == RoleSuperAdmin }
func (u User) IsCoach() bool      { return u.Role == RoleCoach }
func (u User) IsParent() bool     { return u.Role == RoleParent }

// HasAnyRole reports whether the user holds one of roles. A superadmin holds them all.
func (u User) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 || u.IsSuperAdmin() {
		return true
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// CanManage reports whether u may change other's status.
func (u User) CanManage(other User) bool {
	if u.ID == other.ID || !u.IsAdmin() {
		return false
	}
	return u.IsSuperAdmin() || RolePriority(other.Role) < RolePriority(u.Role)
}

// PublicProfile is what non-admins get to see of another user.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) PublicProfile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	AcademyID       string `json:"academyId"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,max=32"`
	Role            string `json:"role" validate:"required,userrole"`
	Status          string `json:"status" validate:"omitempty,userstatus"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required_with=Password,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// UpdateStatus is the payload admins send to change a user's status.
type UpdateStatus struct {
	Status string `json:"status" validate:"required,userstatus"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search    string   `query:"search"`
	Roles     []string `query:"role"`
	Statuses  []string `query:"status"`
	AcademyID string   `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.Statuses == nil && qf.AcademyID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	for i, r := range qf.Roles {
		qf.Roles[i] = core.CleanString(r, true /* lower */)
	}
	for i, s := range qf.Statuses {
		qf.Statuses[i] = core.CleanString(s, true /* lower */)
	}
}
