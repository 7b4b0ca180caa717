package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	t := repo.db.users
	t.Lock()
	defer t.Unlock()

	for _, u := range t.table {
		if strings.EqualFold(u.Email, usr.Email) {
			return user.User{}, user.ErrEmailExists
		}
	}
	t.table[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	t := repo.db.users
	t.RLock()
	defer t.RUnlock()

	if filter.ID == "" && filter.Email == "" {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range t.table {
		if filter.ID != "" && u.ID != filter.ID {
			continue
		}
		if filter.Email != "" && !strings.EqualFold(u.Email, filter.Email) {
			continue
		}
		return u, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	t := repo.db.users
	t.RLock()
	defer t.RUnlock()

	search := strings.ToLower(filter.Search)
	users := make([]user.User, 0, len(t.table))
	for _, u := range t.table {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if len(filter.Roles) > 0 && !contains(filter.Roles, u.Role) {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, u.Status) {
			continue
		}
		if filter.AcademyID != "" && u.AcademyID != filter.AcademyID {
			continue
		}
		users = append(users, u)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := userField(users[i], ord.Field), userField(users[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	t := repo.db.users
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range t.table {
		if u.ID != usr.ID && strings.EqualFold(u.Email, usr.Email) {
			return user.User{}, user.ErrEmailExists
		}
	}
	t.table[usr.ID] = usr
	return usr, nil
}

// userField returns the sortable value of column.
func userField(u user.User, column string) string {
	switch column {
	case "email":
		return u.Email
	case "role":
		return u.Role
	case "status":
		return u.Status
	case "created_at":
		return u.CreatedAt.Format(sortableTime)
	case "last_login":
		if !u.LastLogin.Valid {
			return ""
		}
		return u.LastLogin.Time.Format(sortableTime)
	default:
		return strings.ToLower(u.Name)
	}
}
