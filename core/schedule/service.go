package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

var ErrNotFound = errors.New("session not found")

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		// QuerySessions returns sessions ordered by StartsAt, then ID.
		QuerySessions(ctx context.Context, filter QueryFilter) ([]Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	// UserGetter finds the coach a session is assigned to.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, in SessionInput, by user.User) (Session, error)
		Get(ctx context.Context, id string) (Session, error)
		Query(ctx context.Context, filter QueryFilter) ([]Session, error)
		Update(ctx context.Context, sess Session, in SessionInput) (Session, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo  Repository
		users UserGetter
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, users UserGetter) *Service {
	return &Service{repo: repo, users: users}
}

// Create stores a validated SessionInput. Sessions created by a coach are always theirs.
func (svc *Service) Create(ctx context.Context, in SessionInput, by user.User) (Session, error) {
	if by.IsCoach() {
		in.CoachID = by.ID
	} else if err := svc.checkCoach(ctx, in.CoachID); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		AcademyID: by.AcademyID,
		CreatedBy: by.ID,
		CreatedAt: now,
	}
	if sess.AcademyID == "" {
		sess.AcademyID = core.DefaultAcademyID
	}
	in.apply(&sess, now)
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Session, error) {
	return svc.repo.QuerySessions(ctx, filter)
}

// Update replaces the session's fields with in. The coach is kept when in.CoachID is empty,
// unless in.UnassignCoach is set.
func (svc *Service) Update(ctx context.Context, sess Session, in SessionInput) (Session, error) {
	if sess.CoachID.Valid && in.CoachID == "" && !in.UnassignCoach {
		in.CoachID = sess.CoachID.String
	}
	if in.CoachID != sess.CoachID.String {
		if err := svc.checkCoach(ctx, in.CoachID); err != nil {
			return Session{}, err
		}
	}
	in.apply(&sess, time.Now().UTC())
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSession(ctx, id)
}

func (svc *Service) checkCoach(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	coach, err := svc.users.GetByID(ctx, id)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "finding coach")
	}
	if err != nil || !coach.IsCoach() || !coach.IsActive() {
		return core.NewValidationError(nil, core.FieldError{Field: "coachId", Error: "unknown coach"})
	}
	return nil
}

func (in SessionInput) apply(sess *Session, now time.Time) {
	sess.CoachID = null.NewString(in.CoachID, in.CoachID != "")
	sess.Title = in.Title
	sess.AgeGroup = in.AgeGroup
	sess.Location = null.NewString(in.Location, in.Location != "")
	sess.Notes = null.NewString(in.Notes, in.Notes != "")
	sess.StartsAt = in.startsAt
	sess.EndsAt = in.endsAt
	sess.UpdatedAt = now
}
