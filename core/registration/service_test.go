package registration_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/registration"
	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/services/email"
	"github.com/trezcool/academy/storage/database/inmem"
	"github.com/trezcool/academy/tests"
)

type accountsSpy struct {
	mu          sync.Mutex
	provisioned []user.Provision
	rejected    []string
	err         error
}

func (a *accountsSpy) Provision(_ context.Context, data user.Provision) (user.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.provisioned = append(a.provisioned, data)
	if a.err != nil {
		return user.User{}, a.err
	}
	id := data.UserID
	if id == "" {
		id = uuid.NewString()
	}
	return user.User{ID: id, Email: data.Email}, nil
}

func (a *accountsSpy) Reject(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = append(a.rejected, id)
	return a.err
}

// racyRepo changes the stored status right before the first UpdateStatus, like a concurrent request would.
type racyRepo struct {
	registration.Repository
	raceTo string
	raced  bool
}

func (r *racyRepo) UpdateStatus(ctx context.Context, id, from, to string) (registration.Registration, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.Repository.UpdateStatus(ctx, id, from, r.raceTo); err != nil {
			return registration.Registration{}, err
		}
	}
	return r.Repository.UpdateStatus(ctx, id, from, to)
}

func newService(t *testing.T, repo registration.Repository, accounts registration.Accounts, conf *core.Config) *registration.Service {
	logger := testutil.Logger(t)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), logger)
	return registration.NewService(repo, accounts, mailSvc, conf, logger)
}

func newRegistration(role string) registration.NewRegistration {
	return registration.NewRegistration{ParentName: "A", Email: "a@x.com", Role: role}
}

func TestService_lifecycle(t *testing.T) {
	conf := core.NewTestConfig()
	accounts := new(accountsSpy)
	svc := newService(t, inmemdb.NewRegistrationRepository(inmemdb.Open()), accounts, conf)
	ctx := context.Background()

	reg, err := svc.Create(ctx, newRegistration(registration.RoleParent))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPendingEmail, reg.Status)
	assert.Equal(t, core.DefaultAcademyID, reg.AcademyID)

	_, err = svc.Verify(ctx, "")
	assert.Equal(t, registration.ErrInvalidToken, err)
	_, err = svc.Verify(ctx, reg.AdminToken)
	assert.Equal(t, registration.ErrInvalidToken, err)
	_, err = svc.Approve(ctx, reg.ID, reg.EmailToken)
	assert.Equal(t, registration.ErrInvalidToken, err)

	reg, err = svc.Verify(ctx, reg.EmailToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, reg.Status)
	require.Len(t, accounts.provisioned, 1)
	assert.Equal(t, user.Provision{AcademyID: core.DefaultAcademyID, Name: "A", Email: "a@x.com", Role: registration.RoleParent}, accounts.provisioned[0])
	require.True(t, reg.UserID.Valid)
	userID := reg.UserID.String

	// no-op transitions do not provision again
	reg, err = svc.Verify(ctx, reg.EmailToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, reg.Status)
	assert.Len(t, accounts.provisioned, 1)

	reg, err = svc.Deny(ctx, reg.ID, reg.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRejected, reg.Status)
	assert.Equal(t, []string{userID}, accounts.rejected)

	// re-approving re-activates the same account
	reg, err = svc.Approve(ctx, reg.ID, reg.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, reg.Status)
	require.Len(t, accounts.provisioned, 2)
	assert.Equal(t, userID, accounts.provisioned[1].UserID)
	assert.Equal(t, userID, reg.UserID.String)
}

func TestService_existingAccountsAreLeftAlone(t *testing.T) {
	accounts := &accountsSpy{err: user.ErrEmailExists}
	svc := newService(t, inmemdb.NewRegistrationRepository(inmemdb.Open()), accounts, core.NewTestConfig())
	ctx := context.Background()

	reg, err := svc.Create(ctx, newRegistration(registration.RoleCoach))
	require.NoError(t, err)
	reg, err = svc.Approve(ctx, reg.ID, reg.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, reg.Status)
	assert.False(t, reg.UserID.Valid)

	// nothing was created, so nothing is rejected
	reg, err = svc.Deny(ctx, reg.ID, reg.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRejected, reg.Status)
	assert.Empty(t, accounts.rejected)
}

func TestService_accountErrorsAreNotFatal(t *testing.T) {
	accounts := &accountsSpy{err: errors.New("boom")}
	svc := newService(t, inmemdb.NewRegistrationRepository(inmemdb.Open()), accounts, core.NewTestConfig())
	ctx := context.Background()

	reg, err := svc.Create(ctx, newRegistration(registration.RoleCoach))
	require.NoError(t, err)
	reg, err = svc.Approve(ctx, reg.ID, reg.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, reg.Status)
}

func TestService_lostRaceIsRecomputed(t *testing.T) {
	ctx := context.Background()
	accounts := new(accountsSpy)
	repo := &racyRepo{Repository: inmemdb.NewRegistrationRepository(inmemdb.Open()), raceTo: registration.StatusRejected}
	svc := newService(t, repo, accounts, core.NewTestConfig())

	reg, err := svc.Create(ctx, newRegistration(registration.RoleParent))
	require.NoError(t, err)

	// a deny lands first: verify then has nothing to do
	reg, err = svc.Verify(ctx, reg.EmailToken)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRejected, reg.Status)
	assert.Empty(t, accounts.provisioned)
}

func TestService_concurrentTransitions(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewRegistrationRepository(inmemdb.Open())
	svc := newService(t, repo, new(accountsSpy), core.NewTestConfig())

	reg, err := svc.Create(ctx, newRegistration(registration.RoleCoach))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Verify(ctx, reg.EmailToken)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Approve(ctx, reg.ID, reg.AdminToken)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetRegistration(ctx, registration.GetFilter{ID: reg.ID})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusActive, got.Status)
}
