package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/schedule"
)

const sessionColumns = `id, academy_id, coach_id, title, age_group, location, notes, starts_at, ends_at,
	created_by, created_at, updated_at`

type sessionRepository struct {
	db core.DB
}

var _ schedule.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db core.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	q := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (:id, :academy_id, :coach_id, :title, :age_group, :location, :notes, :starts_at, :ends_at,
			:created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, sess); err != nil {
		return schedule.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (schedule.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.Session{}, schedule.ErrNotFound
	}
	var sess schedule.Session
	q := repo.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &sess, q, id); err != nil {
		return schedule.Session{}, trapNoRows(err, schedule.ErrNotFound, "finding session")
	}
	return sess, nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Session, error) {
	w := new(where)
	if !filter.From.IsZero() {
		w.add("starts_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		w.add("starts_at < ?", filter.To.UTC())
	}
	if filter.AgeGroup != "" {
		w.add("age_group = ?", filter.AgeGroup)
	}
	if filter.CoachID != "" {
		w.add("coach_id = ?", filter.CoachID)
	}
	if filter.AcademyID != "" {
		w.add("academy_id = ?", filter.AcademyID)
	}

	q, args, err := w.build(repo.db, `SELECT `+sessionColumns+` FROM sessions`, "ORDER BY starts_at ASC, id ASC")
	if err != nil {
		return nil, errors.Wrap(err, "building sessions query")
	}
	sessions := make([]schedule.Session, 0)
	if err = repo.db.SelectContext(ctx, &sessions, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	return sessions, nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	q := `UPDATE sessions SET coach_id = :coach_id, title = :title, age_group = :age_group, location = :location,
		notes = :notes, starts_at = :starts_at, ends_at = :ends_at, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, sess)
	if err != nil {
		return schedule.Session{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Session{}, schedule.ErrNotFound
	}
	return sess, nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}
