package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/registration"
)

const registrationColumns = `id, academy_id, parent_name, email, phone, child_name, age_group, role, status,
	email_token, admin_token, user_id, created_at, updated_at`

type registrationRepository struct {
	db     core.DB
	logger core.Logger
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db core.DB, logger core.Logger) *registrationRepository {
	return &registrationRepository{db: db, logger: logger}
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	q := `INSERT INTO registrations (` + registrationColumns + `)
		VALUES (:id, :academy_id, :parent_name, :email, :phone, :child_name, :age_group, :role, :status,
			:email_token, :admin_token, :user_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, reg); err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, filter registration.GetFilter) (registration.Registration, error) {
	return repo.get(ctx, repo.db, filter, "")
}

func (repo *registrationRepository) get(ctx context.Context, exec core.DBExecutor, filter registration.GetFilter, lock string) (registration.Registration, error) {
	if filter.ID == "" && filter.EmailToken == "" && filter.AdminToken == "" {
		return registration.Registration{}, registration.ErrNotFound
	}
	w := new(where)
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return registration.Registration{}, registration.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	}
	if filter.EmailToken != "" {
		w.add("email_token = ?", filter.EmailToken)
	}
	if filter.AdminToken != "" {
		w.add("admin_token = ?", filter.AdminToken)
	}

	q, args, err := w.build(exec, `SELECT `+registrationColumns+` FROM registrations`, "LIMIT 1 "+lock)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "building registration query")
	}
	var reg registration.Registration
	if err = exec.GetContext(ctx, &reg, q, args...); err != nil {
		return registration.Registration{}, trapNoRows(err, registration.ErrNotFound, "finding registration")
	}
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter registration.QueryFilter) ([]registration.Registration, error) {
	w := new(where)
	if len(filter.Statuses) > 0 {
		w.add("status IN (?)", filter.Statuses)
	}
	if filter.AcademyID != "" {
		w.add("academy_id = ?", filter.AcademyID)
	}

	q, args, err := w.build(repo.db, `SELECT `+registrationColumns+` FROM registrations`, "ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, errors.Wrap(err, "building registrations query")
	}
	regs := make([]registration.Registration, 0)
	if err = repo.db.SelectContext(ctx, &regs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return regs, nil
}

// UpdateStatus is a compare-and-set on the current status, done under a row lock.
func (repo *registrationRepository) UpdateStatus(ctx context.Context, id, from, to string) (registration.Registration, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "starting transaction")
	}
	defer SafeRollback(tx, repo.logger)

	reg, err := repo.get(ctx, tx, registration.GetFilter{ID: id}, "FOR UPDATE")
	if err != nil {
		return registration.Registration{}, err
	}
	if reg.Status != from {
		return registration.Registration{}, registration.ErrStatusChanged
	}

	reg.Status = to
	reg.UpdatedAt = time.Now().UTC()
	q := tx.Rebind(`UPDATE registrations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`)
	if _, err = tx.ExecContext(ctx, q, reg.Status, reg.UpdatedAt, reg.ID, from); err != nil {
		return registration.Registration{}, errors.Wrap(err, "updating registration status")
	}
	if err = tx.Commit(); err != nil {
		return registration.Registration{}, errors.Wrap(err, "committing registration status")
	}
	return reg, nil
}

func (repo *registrationRepository) LinkUser(ctx context.Context, id, userID string) (registration.Registration, error) {
	q := repo.db.Rebind(`UPDATE registrations SET user_id = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, userID, time.Now().UTC(), id)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "linking registration user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return registration.Registration{}, registration.ErrNotFound
	}
	return repo.GetRegistration(ctx, registration.GetFilter{ID: id})
}
