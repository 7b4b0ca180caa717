package registration

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
)

// Roles a registrant can apply for.
const (
	RoleParent = "parent"
	RoleCoach  = "coach"
)

// Statuses
const (
	StatusPendingEmail = "pending_email"
	StatusPendingAdmin = "pending_admin"
	StatusActive       = "active"
	StatusRejected     = "rejected"
)

var AllStatuses = []string{StatusPendingEmail, StatusPendingAdmin, StatusActive, StatusRejected}

// Registration is a signup awaiting email and/or admin confirmation.
// It is never deleted; only its status changes.
type Registration struct {
	ID         string      `json:"id" db:"id"`
	AcademyID  string      `json:"academyId" db:"academy_id"`
	ParentName string      `json:"parentName" db:"parent_name"`
	Email      string      `json:"email" db:"email"`
	Phone      null.String `json:"phone" db:"phone"`
	ChildName  null.String `json:"childName" db:"child_name"`
	AgeGroup   null.String `json:"ageGroup" db:"age_group"`
	Role       string      `json:"role" db:"role"`
	Status     string      `json:"status" db:"status"`
	EmailToken string      `json:"-" db:"email_token"`
	AdminToken string      `json:"-" db:"admin_token"`
	UserID     null.String `json:"userId" db:"user_id"` // the account this registration created
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"` // UTC
}

// NewRegistration is the public registration form.
type NewRegistration struct {
	ParentName string `json:"parentName" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	ChildName  string `json:"childName" validate:"omitempty,max=120"`
	AgeGroup   string `json:"ageGroup" validate:"omitempty,agegroup"`
	Role       string `json:"role" validate:"required,oneof=parent coach"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.ParentName = core.CleanString(nr.ParentName)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Phone = core.CleanString(nr.Phone)
	nr.ChildName = core.CleanString(nr.ChildName)
	nr.AgeGroup = core.CleanString(nr.AgeGroup)
	nr.Role = core.CleanString(nr.Role, true /* lower */)
	return validate.Struct(nr)
}

// GetFilter looks a registration up; non-empty fields are AND-ed.
type GetFilter struct {
	ID         string
	EmailToken string
	AdminToken string
}

type QueryFilter struct {
	Statuses  []string `query:"status"`
	AcademyID string   `query:"-"`
}
