package registration

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("registration not found")
	ErrInvalidToken  = errors.New("invalid token")
	ErrStatusChanged = errors.New("registration status changed concurrently")

	tokenBytes    = 32
	maxCASRetries = 3
)

type (
	Repository interface {
		// CreateRegistration stores reg. Both tokens are unique.
		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		// GetRegistration returns ErrNotFound when nothing matches filter.
		GetRegistration(ctx context.Context, filter GetFilter) (Registration, error)
		// QueryRegistrations returns the newest registrations first.
		QueryRegistrations(ctx context.Context, filter QueryFilter) ([]Registration, error)
		// UpdateStatus moves registration id from status `from` to `to`.
		// It returns ErrStatusChanged if the stored status is no longer `from`.
		UpdateStatus(ctx context.Context, id, from, to string) (Registration, error)
		// LinkUser records the account registration id created.
		LinkUser(ctx context.Context, id, userID string) (Registration, error)
	}

	// Accounts manages the user accounts created by accepted (or declined) registrations.
	Accounts interface {
		Provision(ctx context.Context, data user.Provision) (user.User, error)
		Reject(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nr NewRegistration) (Registration, error)
		Verify(ctx context.Context, emailToken string) (Registration, error)
		Approve(ctx context.Context, id, adminToken string) (Registration, error)
		Deny(ctx context.Context, id, adminToken string) (Registration, error)
		Query(ctx context.Context, filter QueryFilter) ([]Registration, error)
	}

	Service struct {
		repo     Repository
		accounts Accounts
		mailSvc  core.EmailService
		conf     *core.Config
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, accounts Accounts, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		mailSvc:  mailSvc,
		conf:     conf,
		logger:   logger,
	}
}

// Create stores a new registration awaiting email confirmation, then mails the registrant
// their verification link and the staff the approval links.
func (svc *Service) Create(ctx context.Context, nr NewRegistration) (Registration, error) {
	emailToken, err := core.RandomHex(tokenBytes)
	if err != nil {
		return Registration{}, errors.Wrap(err, "generating email token")
	}
	adminToken, err := core.RandomHex(tokenBytes)
	if err != nil {
		return Registration{}, errors.Wrap(err, "generating admin token")
	}

	now := time.Now().UTC()
	reg, err := svc.repo.CreateRegistration(ctx, Registration{
		ID:         uuid.NewString(),
		AcademyID:  core.DefaultAcademyID,
		ParentName: nr.ParentName,
		Email:      nr.Email,
		Phone:      null.NewString(nr.Phone, nr.Phone != ""),
		ChildName:  null.NewString(nr.ChildName, nr.ChildName != ""),
		AgeGroup:   null.NewString(nr.AgeGroup, nr.AgeGroup != ""),
		Role:       nr.Role,
		Status:     StatusPendingEmail,
		EmailToken: emailToken,
		AdminToken: adminToken,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Registration{}, errors.Wrap(err, "creating registration")
	}

	svc.mailSvc.SendMessages(svc.welcomeMail(reg), svc.staffMail(reg))
	return reg, nil
}

func (svc *Service) Verify(ctx context.Context, emailToken string) (Registration, error) {
	if emailToken == "" {
		return Registration{}, ErrInvalidToken
	}
	reg, err := svc.lookup(ctx, GetFilter{EmailToken: emailToken})
	if err != nil {
		return Registration{}, err
	}
	return svc.apply(ctx, reg, ActionVerify)
}

func (svc *Service) Approve(ctx context.Context, id, adminToken string) (Registration, error) {
	return svc.decide(ctx, id, adminToken, ActionApprove)
}

func (svc *Service) Deny(ctx context.Context, id, adminToken string) (Registration, error) {
	return svc.decide(ctx, id, adminToken, ActionDeny)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, filter)
}

func (svc *Service) decide(ctx context.Context, id, adminToken string, action Action) (Registration, error) {
	if id == "" || adminToken == "" {
		return Registration{}, ErrInvalidToken
	}
	reg, err := svc.lookup(ctx, GetFilter{ID: id, AdminToken: adminToken})
	if err != nil {
		return Registration{}, err
	}
	return svc.apply(ctx, reg, action)
}

func (svc *Service) lookup(ctx context.Context, filter GetFilter) (Registration, error) {
	reg, err := svc.repo.GetRegistration(ctx, filter)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Registration{}, ErrInvalidToken
		}
		return Registration{}, errors.Wrap(err, "finding registration")
	}
	return reg, nil
}

// apply moves reg to its next status. The update is a compare-and-set on the current status:
// on conflict the record is re-read and the transition re-computed.
func (svc *Service) apply(ctx context.Context, reg Registration, action Action) (Registration, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		next := Next(reg.Status, action, reg.Role, svc.conf.Flags.RequireAdminApprovalForParents)
		if next == reg.Status {
			return reg, nil
		}

		updated, err := svc.repo.UpdateStatus(ctx, reg.ID, reg.Status, next)
		if err == nil {
			return svc.afterTransition(ctx, updated), nil
		}
		if errors.Cause(err) != ErrStatusChanged {
			return Registration{}, errors.Wrap(err, "updating status")
		}
		if reg, err = svc.repo.GetRegistration(ctx, GetFilter{ID: reg.ID}); err != nil {
			return Registration{}, errors.Wrap(err, "reloading registration")
		}
	}
	return Registration{}, errors.Wrapf(ErrStatusChanged, "registration %s", reg.ID)
}

// afterTransition syncs the account this registration created with its new status.
// Accounts it did not create are never touched. Failures are logged; the registration itself has already moved.
func (svc *Service) afterTransition(ctx context.Context, reg Registration) Registration {
	var err error
	switch reg.Status {
	case StatusActive:
		var usr user.User
		usr, err = svc.accounts.Provision(ctx, user.Provision{
			UserID:    reg.UserID.String,
			AcademyID: reg.AcademyID,
			Name:      reg.ParentName,
			Email:     reg.Email,
			Phone:     reg.Phone.String,
			Role:      reg.Role,
		})
		if err == nil && !reg.UserID.Valid {
			var linked Registration
			if linked, err = svc.repo.LinkUser(ctx, reg.ID, usr.ID); err == nil {
				reg = linked
			}
		}
	case StatusRejected:
		if reg.UserID.Valid {
			err = svc.accounts.Reject(ctx, reg.UserID.String)
		}
	}

	switch {
	case err == nil:
	case errors.Cause(err) == user.ErrEmailExists:
		svc.logger.Warn(fmt.Sprintf("registration %s: %s already has an account, left untouched", reg.ID, reg.Email))
	default:
		msg := fmt.Sprintf("syncing account of registration %s (%s): %v", reg.ID, reg.Status, err)
		svc.logger.Error(msg, errors.Wrap(err, msg))
	}
	return reg
}

type mailData struct {
	Name       string
	Email      string
	Phone      string
	ChildName  string
	AgeGroup   string
	Role       string
	VerifyURL  string
	ApproveURL string
	DenyURL    string
}

func (svc *Service) newMailData(reg Registration) mailData {
	base := svc.conf.PublicBaseURL + "/api/registration"
	return mailData{
		Name:       reg.ParentName,
		Email:      reg.Email,
		Phone:      reg.Phone.String,
		ChildName:  reg.ChildName.String,
		AgeGroup:   reg.AgeGroup.String,
		Role:       reg.Role,
		VerifyURL:  fmt.Sprintf("%s/verify?token=%s", base, reg.EmailToken),
		ApproveURL: fmt.Sprintf("%s/%s/approve?token=%s", base, reg.ID, reg.AdminToken),
		DenyURL:    fmt.Sprintf("%s/%s/deny?token=%s", base, reg.ID, reg.AdminToken),
	}
}

func (svc *Service) welcomeMail(reg Registration) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: reg.ParentName, Address: reg.Email}},
		Subject:      "Please confirm your email",
		TemplateName: "registration_welcome",
		TemplateData: svc.newMailData(reg),
	}
}

func (svc *Service) staffMail(reg Registration) *core.EmailMessage {
	return &core.EmailMessage{
		To:           svc.conf.StaffEmails(),
		Subject:      fmt.Sprintf("New %s registration: %s", reg.Role, reg.ParentName),
		TemplateName: "registration_staff",
		TemplateData: svc.newMailData(reg),
	}
}
