package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotActive          = errors.New("account not active")
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		// GetUser applies AND on the non-empty GetFilter fields.
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		SetStatus(ctx context.Context, id, status string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
		Provision(ctx context.Context, data Provision) (User, error)
		Reject(ctx context.Context, id string) error
	}

	// Provision describes an account to create once a registration is accepted.
	// UserID is set when the registration already created one; that account is re-activated instead.
	Provision struct {
		UserID    string
		AcademyID string
		Name      string
		Email     string
		Phone     string
		Role      string
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		tokens  tokenGenerator
	}
)

var _ ServiceInterface = (*Service)(nil)

const invalidValueText = "invalid value"

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		tokens:  tokenGenerator{secretKey: []byte(conf.SecretKey), timeout: conf.PasswordResetTimeoutDelta},
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		AcademyID: nu.AcademyID,
		Name:      nu.Name,
		Email:     nu.Email,
		Phone:     null.NewString(nu.Phone, nu.Phone != ""),
		Role:      nu.Role,
		Status:    nu.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.Status == "" {
		usr.Status = StatusActive
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if errors.Cause(err) == ErrEmailExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return usr, err
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering...)
}

func (svc *Service) SetStatus(ctx context.Context, id, status string) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Status = status
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive() {
		return User{}, ErrNotActive
	}

	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if usr.Status == StatusRejected || usr.Status == StatusSuspended {
		return ErrNotActive
	}
	svc.mailSvc.SendMessages(svc.passwordMail(usr, "password_reset", "Password reset"))
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalid := func(field string) error {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: invalidValueText})
	}

	id, err := decodeUID(data.UID)
	if err != nil {
		return invalid("uid")
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalid("uid")
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return invalid("token")
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

// Provision activates the account of an accepted registration, then mails the user a link to set their password.
// Without data.UserID a new account is created; an account already owning the email is left untouched
// and ErrEmailExists is returned.
func (svc *Service) Provision(ctx context.Context, data Provision) (User, error) {
	var (
		usr User
		err error
	)
	if data.UserID != "" {
		if usr, err = svc.GetByID(ctx, data.UserID); err != nil {
			return User{}, errors.Wrap(err, "finding provisioned user")
		}
		usr.Status = StatusActive
		if RolePriority(data.Role) > RolePriority(usr.Role) {
			usr.Role = data.Role
		}
		usr.UpdatedAt = time.Now().UTC()
		if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
			return User{}, errors.Wrap(err, "updating user")
		}
	} else {
		email := core.CleanString(data.Email, true /* lower */)
		_, err = svc.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return User{}, ErrEmailExists
		case errors.Cause(err) != ErrNotFound:
			return User{}, errors.Wrap(err, "finding user by email")
		}
		usr, err = svc.Create(ctx, NewUser{
			AcademyID: data.AcademyID,
			Name:      data.Name,
			Email:     email,
			Phone:     data.Phone,
			Role:      data.Role,
			Status:    StatusActive,
		})
		if err != nil {
			return User{}, errors.Wrap(err, "creating user")
		}
	}

	svc.mailSvc.SendMessages(svc.passwordMail(usr, "account_activated", "Your account is active"))
	return usr, nil
}

// Reject marks the account a registration created as rejected. Admins are left alone.
func (svc *Service) Reject(ctx context.Context, id string) error {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	if usr.IsAdmin() {
		return nil
	}
	usr.Status = StatusRejected
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// MakeResetToken returns the uid & token pair of a password reset link.
func (svc *Service) MakeResetToken(usr User) (uid, token string) {
	return EncodeUID(usr), svc.tokens.makeToken(usr)
}

func (svc *Service) passwordMail(usr User, tmpl, subject string) *core.EmailMessage {
	uid, token := svc.MakeResetToken(usr)
	link := fmt.Sprintf("%s/password-reset/%s/%s", svc.conf.PublicBaseURL, uid, token)
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: map[string]interface{}{
			"Name":           usr.Name,
			"ResetURL":       link,
			"SetPasswordURL": link,
		},
	}
}
