package payment_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/storage/database/inmem"
	"github.com/trezcool/academy/tests"
)

type fakeGateway struct {
	orders     []payment.Order
	captured   bool
	captureErr error
}

func (g *fakeGateway) CreateOrder(_ context.Context, order payment.Order) (payment.OrderResult, error) {
	g.orders = append(g.orders, order)
	return payment.OrderResult{ID: "ORDER-1", Status: "CREATED", ApproveURL: "https://paypal.test/approve/ORDER-1"}, nil
}

func (g *fakeGateway) CaptureOrder(context.Context, string) (bool, error) {
	return g.captured, g.captureErr
}

type fixture struct {
	db      *inmemdb.DB
	players *player.Service
	parent  user.User
	other   user.User
	kid     player.Player
}

func newFixture(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	users := user.NewService(usrRepo, nil, core.NewTestConfig())
	f := fixture{
		db:      db,
		players: player.NewService(inmemdb.NewPlayerRepository(db), users),
		parent:  testutil.CreateUser(t, usrRepo, "Mom", "mom@x.com", "", user.RoleParent, user.StatusActive),
		other:   testutil.CreateUser(t, usrRepo, "Dad", "dad@x.com", "", user.RoleParent, user.StatusActive),
	}

	kid, err := f.players.Create(context.Background(), player.PlayerInput{Name: "Ann", AgeGroup: "U11"}, f.parent)
	require.NoError(t, err)
	f.kid = kid
	return f
}

func (f fixture) service(t *testing.T, gw payment.Gateway) *payment.Service {
	return payment.NewService(inmemdb.NewPaymentRepository(f.db), gw, f.players, testutil.Logger(t))
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manual := f.service(t, nil)
	p, err := manual.Create(ctx, payment.NewPayment{PlayerID: f.kid.ID, AmountCents: 999, Currency: "USD", Description: "Fees"}, f.parent)
	require.NoError(t, err)
	assert.Equal(t, payment.ProviderManual, p.Provider)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.False(t, p.ProviderRef.Valid)
	assert.Equal(t, f.kid.ID, p.PlayerID.String)

	_, err = manual.Create(ctx, payment.NewPayment{PlayerID: f.kid.ID, AmountCents: 999, Currency: "USD", Description: "Fees"}, f.other)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "playerId", vErr.Fields[0].Field)

	gw := new(fakeGateway)
	p, err = f.service(t, gw).Create(ctx, payment.NewPayment{AmountCents: 1205, Currency: "AUD", Description: "Kit"}, f.parent)
	require.NoError(t, err)
	assert.Equal(t, payment.ProviderPayPal, p.Provider)
	assert.Equal(t, "ORDER-1", p.ProviderRef.String)
	assert.Equal(t, "https://paypal.test/approve/ORDER-1", p.ApproveURL.String)
	require.Len(t, gw.orders, 1)
	assert.Equal(t, payment.Order{ReferenceID: p.ID, Amount: "12.05", Currency: "AUD", Description: "Kit"}, gw.orders[0])
}

func TestService_Capture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		captured   bool
		captureErr error
		want       string
	}{
		{"completed", true, nil, payment.StatusCompleted},
		{"not completed", false, nil, payment.StatusFailed},
		{"gateway error", false, errors.New("boom"), payment.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := f.service(t, &fakeGateway{captured: tt.captured, captureErr: tt.captureErr})
			p, err := svc.Create(ctx, payment.NewPayment{AmountCents: 100, Currency: "USD", Description: "x"}, f.parent)
			require.NoError(t, err)

			p, err = svc.Capture(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Status)

			// only pending payments can be captured
			_, err = svc.Capture(ctx, p)
			assert.Equal(t, payment.ErrNotCapturable, errors.Cause(err).(*core.ValidationError).Err)
		})
	}

	manual, err := f.service(t, nil).Create(ctx, payment.NewPayment{AmountCents: 100, Currency: "USD", Description: "x"}, f.parent)
	require.NoError(t, err)
	_, err = f.service(t, &fakeGateway{captured: true}).Capture(ctx, manual)
	assert.Error(t, err)
}

func TestPayment_Amount(t *testing.T) {
	for cents, want := range map[int64]string{0: "0.00", 5: "0.05", 100: "1.00", 12345: "123.45"} {
		assert.Equal(t, want, payment.Payment{AmountCents: cents}.Amount())
	}
}
