package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
)

const uniqueViolation = "23505"

// SafeRollback rolls tx back, logging anything but "already committed" errors.
func SafeRollback(tx core.DBTransactor, logger core.Logger) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logger.Error("rolling back transaction", errors.Wrap(err, "rolling back transaction"))
	}
}

// isUniqueViolation reports whether err is a unique constraint error from either driver.
func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == uniqueViolation
	case *pgconn.PgError:
		return e.Code == uniqueViolation
	}
	return false
}

// trapNoRows maps sql.ErrNoRows to notFound and wraps any other error with msg.
func trapNoRows(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// build appends the WHERE clause (if any) and the suffix to query, expanding slice arguments
// and rebinding placeholders for exec's driver.
func (w *where) build(exec sqlx.ExtContext, query, suffix string) (string, []interface{}, error) {
	if len(w.conds) > 0 {
		query += " WHERE " + strings.Join(w.conds, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	query, args, err := sqlx.In(query, w.args...)
	if err != nil {
		return "", nil, err
	}
	return exec.Rebind(query), args, nil
}
