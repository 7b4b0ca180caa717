package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

const userColumns = `id, academy_id, name, email, phone, role, status, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :academy_id, :name, :email, :phone, :role, :status, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, usr); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	if filter.ID == "" && filter.Email == "" {
		return user.User{}, user.ErrNotFound
	}
	w := new(where)
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	}
	if filter.Email != "" {
		w.add("lower(email) = lower(?)", filter.Email)
	}

	q, args, err := w.build(repo.db, `SELECT `+userColumns+` FROM users`, "LIMIT 1")
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user query")
	}
	var usr user.User
	if err = repo.db.GetContext(ctx, &usr, q, args...); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	w := new(where)
	// users with Name or Email matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		w.add("(name ILIKE ? OR email ILIKE ?)", val, val)
	}
	if len(filter.Roles) > 0 {
		w.add("role IN (?)", filter.Roles)
	}
	if len(filter.Statuses) > 0 {
		w.add("status IN (?)", filter.Statuses)
	}
	if filter.AcademyID != "" {
		w.add("academy_id = ?", filter.AcademyID)
	}

	q, args, err := w.build(repo.db, `SELECT `+userColumns+` FROM users`, "ORDER BY "+userOrderBy(ordering))
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}
	users := make([]user.User, 0)
	if err = repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET academy_id = :academy_id, name = :name, email = :email, phone = :phone, role = :role,
		status = :status, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, usr)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

// userOrderBy only keeps known columns; anything else could be SQL.
func userOrderBy(ordering []core.DBOrdering) string {
	known := make(map[string]bool, len(user.OrderingFields))
	for _, col := range user.OrderingFields {
		known[col] = true
	}

	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if known[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "name ASC")
	}
	clauses = append(clauses, "id ASC")
	return strings.Join(clauses, ", ")
}
