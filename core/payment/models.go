package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
)

// Providers
const (
	ProviderPayPal = "paypal"
	ProviderManual = "manual"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

var AllStatuses = []string{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}

type Payment struct {
	ID          string      `json:"id" db:"id"`
	AcademyID   string      `json:"academyId" db:"academy_id"`
	ParentID    string      `json:"parentId" db:"parent_id"`
	PlayerID    null.String `json:"playerId" db:"player_id"`
	AmountCents int64       `json:"amountCents" db:"amount_cents"`
	Currency    string      `json:"currency" db:"currency"`
	Description string      `json:"description" db:"description"`
	Provider    string      `json:"provider" db:"provider"`
	Status      string      `json:"status" db:"status"`
	ProviderRef null.String `json:"providerRef" db:"provider_ref"`
	ApproveURL  null.String `json:"approveUrl" db:"approve_url"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Amount formats AmountCents as a decimal string, e.g. 1250 -> "12.50".
func (p Payment) Amount() string {
	return fmt.Sprintf("%d.%02d", p.AmountCents/100, p.AmountCents%100)
}

type NewPayment struct {
	PlayerID    string `json:"playerId" validate:"omitempty,uuid"`
	AmountCents int64  `json:"amountCents" validate:"required,gt=0,lte=10000000"`
	Currency    string `json:"currency" validate:"omitempty,len=3,alpha"`
	Description string `json:"description" validate:"required,max=200"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PlayerID = core.CleanString(np.PlayerID, true /* lower */)
	np.Currency = strings.ToUpper(core.CleanString(np.Currency))
	np.Description = core.CleanString(np.Description)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.Currency == "" {
		np.Currency = "USD"
	}
	return nil
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	AcademyID string
	ParentID  string
	Statuses  []string `query:"status"`
}
