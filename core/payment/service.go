package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/user"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrNotCapturable = errors.New("payment cannot be captured")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPayment(ctx context.Context, id string) (Payment, error)
		// QueryPayments returns the newest payments first.
		QueryPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
	}

	// Order is a checkout order to open with a payment gateway.
	Order struct {
		ReferenceID string
		Amount      string // decimal, e.g. "12.50"
		Currency    string
		Description string
	}

	OrderResult struct {
		ID         string
		Status     string
		ApproveURL string
	}

	// Gateway is an online payment provider.
	Gateway interface {
		CreateOrder(ctx context.Context, order Order) (OrderResult, error)
		// CaptureOrder returns true once the funds are captured.
		CaptureOrder(ctx context.Context, orderID string) (bool, error)
	}

	PlayerGetter interface {
		Get(ctx context.Context, id string) (player.Player, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, np NewPayment, by user.User) (Payment, error)
		Get(ctx context.Context, id string) (Payment, error)
		Query(ctx context.Context, filter QueryFilter) ([]Payment, error)
		Capture(ctx context.Context, p Payment) (Payment, error)
		SetStatus(ctx context.Context, p Payment, status string) (Payment, error)
	}

	Service struct {
		repo    Repository
		gateway Gateway // nil: payments are settled manually
		players PlayerGetter
		logger  core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, gateway Gateway, players PlayerGetter, logger core.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, players: players, logger: logger}
}

// Create records a payment and, when a gateway is configured, opens the checkout order the parent
// must approve.
func (svc *Service) Create(ctx context.Context, np NewPayment, by user.User) (Payment, error) {
	if np.PlayerID != "" {
		plyr, err := svc.players.Get(ctx, np.PlayerID)
		if err != nil && errors.Cause(err) != player.ErrNotFound {
			return Payment{}, errors.Wrap(err, "finding player")
		}
		if err != nil || (plyr.ParentID != by.ID && !by.IsAdmin()) {
			return Payment{}, core.NewValidationError(nil, core.FieldError{Field: "playerId", Error: "unknown player"})
		}
	}

	now := time.Now().UTC()
	p := Payment{
		ID:          uuid.NewString(),
		AcademyID:   by.AcademyID,
		ParentID:    by.ID,
		PlayerID:    null.NewString(np.PlayerID, np.PlayerID != ""),
		AmountCents: np.AmountCents,
		Currency:    np.Currency,
		Description: np.Description,
		Provider:    ProviderManual,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.AcademyID == "" {
		p.AcademyID = core.DefaultAcademyID
	}

	if svc.gateway != nil {
		res, err := svc.gateway.CreateOrder(ctx, Order{
			ReferenceID: p.ID,
			Amount:      p.Amount(),
			Currency:    p.Currency,
			Description: p.Description,
		})
		if err != nil {
			return Payment{}, errors.Wrap(err, "creating gateway order")
		}
		p.Provider = ProviderPayPal
		p.ProviderRef = null.StringFrom(res.ID)
		p.ApproveURL = null.NewString(res.ApproveURL, res.ApproveURL != "")
	}
	return svc.repo.CreatePayment(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPayment(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, filter)
}

// Capture settles an approved gateway order.
func (svc *Service) Capture(ctx context.Context, p Payment) (Payment, error) {
	if p.Provider != ProviderPayPal || p.Status != StatusPending || !p.ProviderRef.Valid || svc.gateway == nil {
		return Payment{}, core.NewValidationError(ErrNotCapturable)
	}

	captured, err := svc.gateway.CaptureOrder(ctx, p.ProviderRef.String)
	if err != nil {
		msg := fmt.Sprintf("capturing order %s of payment %s", p.ProviderRef.String, p.ID)
		svc.logger.Error(msg, errors.Wrap(err, msg))
		captured = false
	}
	status := StatusFailed
	if captured {
		status = StatusCompleted
	}
	return svc.SetStatus(ctx, p, status)
}

func (svc *Service) SetStatus(ctx context.Context, p Payment, status string) (Payment, error) {
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePayment(ctx, p)
}
