package academy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
)

var (
	ErrNotFound   = errors.New("academy not found")
	ErrSlugExists = errors.New("slug already taken")
)

type (
	Repository interface {
		CreateAcademy(ctx context.Context, a Academy) (Academy, error)
		GetAcademy(ctx context.Context, id string) (Academy, error)
		// QueryAcademies returns academies ordered by name.
		QueryAcademies(ctx context.Context) ([]Academy, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, na NewAcademy) (Academy, error)
		Get(ctx context.Context, id string) (Academy, error)
		Query(ctx context.Context) ([]Academy, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAcademy) (Academy, error) {
	a, err := svc.repo.CreateAcademy(ctx, Academy{
		ID:        uuid.NewString(),
		Name:      na.Name,
		Slug:      na.Slug,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Cause(err) == ErrSlugExists {
		return Academy{}, core.NewValidationError(nil, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
	}
	return a, err
}

func (svc *Service) Get(ctx context.Context, id string) (Academy, error) {
	return svc.repo.GetAcademy(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Academy, error) {
	return svc.repo.QueryAcademies(ctx)
}
