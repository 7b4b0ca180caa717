package player

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

var (
	ErrNotFound = errors.New("player not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreatePlayer(ctx context.Context, p Player) (Player, error)
		GetPlayer(ctx context.Context, id string) (Player, error)
		// QueryPlayers returns players ordered by name.
		QueryPlayers(ctx context.Context, filter QueryFilter) ([]Player, error)
		UpdatePlayer(ctx context.Context, p Player) (Player, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, in PlayerInput, by user.User) (Player, error)
		Get(ctx context.Context, id string) (Player, error)
		Query(ctx context.Context, filter QueryFilter) ([]Player, error)
		Update(ctx context.Context, p Player, in PlayerInput, by user.User) (Player, error)
	}

	Service struct {
		repo  Repository
		users UserGetter
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, users UserGetter) *Service {
	return &Service{repo: repo, users: users}
}

// Create registers a player. Parents always register their own children; admins name the parent.
func (svc *Service) Create(ctx context.Context, in PlayerInput, by user.User) (Player, error) {
	parentID, err := svc.resolveParent(ctx, in.ParentID, by)
	if err != nil {
		return Player{}, err
	}

	now := time.Now().UTC()
	p := Player{
		ID:        uuid.NewString(),
		AcademyID: by.AcademyID,
		ParentID:  parentID,
		CreatedAt: now,
	}
	if p.AcademyID == "" {
		p.AcademyID = core.DefaultAcademyID
	}
	in.apply(&p, now)
	return svc.repo.CreatePlayer(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Player, error) {
	return svc.repo.GetPlayer(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Player, error) {
	return svc.repo.QueryPlayers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, p Player, in PlayerInput, by user.User) (Player, error) {
	if by.IsAdmin() && in.ParentID != "" && in.ParentID != p.ParentID {
		parentID, err := svc.resolveParent(ctx, in.ParentID, by)
		if err != nil {
			return Player{}, err
		}
		p.ParentID = parentID
	}
	in.apply(&p, time.Now().UTC())
	return svc.repo.UpdatePlayer(ctx, p)
}

func (svc *Service) resolveParent(ctx context.Context, parentID string, by user.User) (string, error) {
	if !by.IsAdmin() {
		return by.ID, nil
	}
	if parentID == "" {
		return "", core.NewValidationError(nil, core.FieldError{Field: "parentId", Error: "this field is required"})
	}
	parent, err := svc.users.GetByID(ctx, parentID)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return "", errors.Wrap(err, "finding parent")
	}
	if err != nil || !parent.IsParent() {
		return "", core.NewValidationError(nil, core.FieldError{Field: "parentId", Error: "unknown parent"})
	}
	return parent.ID, nil
}

func (in PlayerInput) apply(p *Player, now time.Time) {
	p.Name = in.Name
	p.DateOfBirth = in.dob
	p.AgeGroup = in.AgeGroup
	p.MedicalNotes = null.NewString(in.MedicalNotes, in.MedicalNotes != "")
	p.UpdatedAt = now
}
