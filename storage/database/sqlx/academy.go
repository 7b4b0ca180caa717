package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/academy"
)

type academyRepository struct {
	db core.DB
}

var _ academy.Repository = (*academyRepository)(nil)

func NewAcademyRepository(db core.DB) *academyRepository {
	return &academyRepository{db: db}
}

func (repo *academyRepository) CreateAcademy(ctx context.Context, a academy.Academy) (academy.Academy, error) {
	q := `INSERT INTO academies (id, name, slug, created_at) VALUES (:id, :name, :slug, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, a); err != nil {
		if isUniqueViolation(err) {
			return academy.Academy{}, academy.ErrSlugExists
		}
		return academy.Academy{}, errors.Wrap(err, "inserting academy")
	}
	return a, nil
}

func (repo *academyRepository) GetAcademy(ctx context.Context, id string) (academy.Academy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academy.Academy{}, academy.ErrNotFound
	}
	var a academy.Academy
	q := repo.db.Rebind(`SELECT id, name, slug, created_at FROM academies WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &a, q, id); err != nil {
		return academy.Academy{}, trapNoRows(err, academy.ErrNotFound, "finding academy")
	}
	return a, nil
}

func (repo *academyRepository) QueryAcademies(ctx context.Context) ([]academy.Academy, error) {
	academies := make([]academy.Academy, 0)
	if err := repo.db.SelectContext(ctx, &academies, `SELECT id, name, slug, created_at FROM academies ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying academies")
	}
	return academies, nil
}
