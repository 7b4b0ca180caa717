package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core/registration"
)

var errDuplicateToken = errors.New("duplicate registration token")

type registrationRepository struct {
	db *DB
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) CreateRegistration(_ context.Context, reg registration.Registration) (registration.Registration, error) {
	t := repo.db.registrations
	t.Lock()
	defer t.Unlock()

	for _, r := range t.table {
		if r.EmailToken == reg.EmailToken || r.AdminToken == reg.AdminToken {
			return registration.Registration{}, errDuplicateToken
		}
	}
	t.table[reg.ID] = reg
	return reg, nil
}

func (repo *registrationRepository) GetRegistration(_ context.Context, filter registration.GetFilter) (registration.Registration, error) {
	t := repo.db.registrations
	t.RLock()
	defer t.RUnlock()

	if filter.ID == "" && filter.EmailToken == "" && filter.AdminToken == "" {
		return registration.Registration{}, registration.ErrNotFound
	}
	for _, r := range t.table {
		if filter.ID != "" && r.ID != filter.ID {
			continue
		}
		if filter.EmailToken != "" && r.EmailToken != filter.EmailToken {
			continue
		}
		if filter.AdminToken != "" && r.AdminToken != filter.AdminToken {
			continue
		}
		return r, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) QueryRegistrations(_ context.Context, filter registration.QueryFilter) ([]registration.Registration, error) {
	t := repo.db.registrations
	t.RLock()
	defer t.RUnlock()

	regs := make([]registration.Registration, 0, len(t.table))
	for _, r := range t.table {
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, r.Status) {
			continue
		}
		if filter.AcademyID != "" && r.AcademyID != filter.AcademyID {
			continue
		}
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].ID > regs[j].ID
		}
		return regs[i].CreatedAt.After(regs[j].CreatedAt)
	})
	return regs, nil
}

func (repo *registrationRepository) UpdateStatus(_ context.Context, id, from, to string) (registration.Registration, error) {
	t := repo.db.registrations
	t.Lock()
	defer t.Unlock()

	reg, ok := t.table[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	if reg.Status != from {
		return registration.Registration{}, registration.ErrStatusChanged
	}
	reg.Status = to
	reg.UpdatedAt = time.Now().UTC()
	t.table[id] = reg
	return reg, nil
}

func (repo *registrationRepository) LinkUser(_ context.Context, id, userID string) (registration.Registration, error) {
	t := repo.db.registrations
	t.Lock()
	defer t.Unlock()

	reg, ok := t.table[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	reg.UserID = null.StringFrom(userID)
	reg.UpdatedAt = time.Now().UTC()
	t.table[id] = reg
	return reg, nil
}
