package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/academy/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	t := repo.db.payments
	t.Lock()
	defer t.Unlock()

	t.table[p.ID] = p
	return p, nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	t := repo.db.payments
	t.RLock()
	defer t.RUnlock()

	if p, ok := t.table[id]; ok {
		return p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	t := repo.db.payments
	t.RLock()
	defer t.RUnlock()

	payments := make([]payment.Payment, 0, len(t.table))
	for _, p := range t.table {
		if filter.AcademyID != "" && p.AcademyID != filter.AcademyID {
			continue
		}
		if filter.ParentID != "" && p.ParentID != filter.ParentID {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, p.Status) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	t := repo.db.payments
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[p.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	t.table[p.ID] = p
	return p, nil
}
