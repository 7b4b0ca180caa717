package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/payment"
)

const paymentColumns = `id, academy_id, parent_id, player_id, amount_cents, currency, description, provider, status,
	provider_ref, approve_url, created_at, updated_at`

type paymentRepository struct {
	db core.DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db core.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := `INSERT INTO payments (` + paymentColumns + `)
		VALUES (:id, :academy_id, :parent_id, :player_id, :amount_cents, :currency, :description, :provider, :status,
			:provider_ref, :approve_url, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, p); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payment.Payment{}, payment.ErrNotFound
	}
	var p payment.Payment
	q := repo.db.Rebind(`SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &p, q, id); err != nil {
		return payment.Payment{}, trapNoRows(err, payment.ErrNotFound, "finding payment")
	}
	return p, nil
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	w := new(where)
	if filter.AcademyID != "" {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if filter.ParentID != "" {
		w.add("parent_id = ?", filter.ParentID)
	}
	if len(filter.Statuses) > 0 {
		w.add("status IN (?)", filter.Statuses)
	}

	q, args, err := w.build(repo.db, `SELECT `+paymentColumns+` FROM payments`, "ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, errors.Wrap(err, "building payments query")
	}
	payments := make([]payment.Payment, 0)
	if err = repo.db.SelectContext(ctx, &payments, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := `UPDATE payments SET status = :status, provider_ref = :provider_ref, approve_url = :approve_url,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, p)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}
