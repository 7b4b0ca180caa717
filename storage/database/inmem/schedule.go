package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/academy/core/schedule"
)

type sessionRepository struct {
	db *DB
}

var _ schedule.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess schedule.Session) (schedule.Session, error) {
	t := repo.db.sessions
	t.Lock()
	defer t.Unlock()

	t.table[sess.ID] = sess
	return sess, nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (schedule.Session, error) {
	t := repo.db.sessions
	t.RLock()
	defer t.RUnlock()

	if sess, ok := t.table[id]; ok {
		return sess, nil
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (repo *sessionRepository) QuerySessions(_ context.Context, filter schedule.QueryFilter) ([]schedule.Session, error) {
	t := repo.db.sessions
	t.RLock()
	defer t.RUnlock()

	sessions := make([]schedule.Session, 0, len(t.table))
	for _, sess := range t.table {
		if !filter.From.IsZero() && sess.StartsAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sess.StartsAt.Before(filter.To) {
			continue
		}
		if filter.AgeGroup != "" && sess.AgeGroup != filter.AgeGroup {
			continue
		}
		if filter.CoachID != "" && sess.CoachID.String != filter.CoachID {
			continue
		}
		if filter.AcademyID != "" && sess.AcademyID != filter.AcademyID {
			continue
		}
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartsAt.Equal(sessions[j].StartsAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartsAt.Before(sessions[j].StartsAt)
	})
	return sessions, nil
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess schedule.Session) (schedule.Session, error) {
	t := repo.db.sessions
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[sess.ID]; !ok {
		return schedule.Session{}, schedule.ErrNotFound
	}
	t.table[sess.ID] = sess
	return sess, nil
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	t := repo.db.sessions
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(t.table, id)
	return nil
}
