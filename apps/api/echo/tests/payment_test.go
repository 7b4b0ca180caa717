package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/user"
)

func createPayment(t *testing.T, token, body string) payment.Payment {
	rec := serve(http.MethodPost, "/api/payments", token, []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p payment.Payment
	decode(t, rec, &p)
	return p
}

func Test_paymentApi(t *testing.T) {
	reset()

	admin := createUser(t, "Admin", "admin@x.com", user.RoleAdmin)
	mom := createUser(t, "Mom", "mom@x.com", user.RoleParent)
	dad := createUser(t, "Dad", "dad@x.com", user.RoleParent)
	momToken, dadToken, adminToken := getToken(t, mom), getToken(t, dad), getToken(t, admin)

	ann := createPlayer(t, momToken, `{"name": "Ann", "dateOfBirth": "2014-05-01", "ageGroup": "U11"}`)

	// without a gateway, payments are settled manually
	fees := createPayment(t, momToken, `{"playerId": "`+ann.ID+`", "amountCents": 12050, "description": "Term fees"}`)
	assert.Equal(t, payment.ProviderManual, fees.Provider)
	assert.Equal(t, payment.StatusPending, fees.Status)
	assert.Equal(t, "USD", fees.Currency)
	assert.Equal(t, mom.ID, fees.ParentID)
	assert.Equal(t, "120.50", fees.Amount())

	kit := createPayment(t, dadToken, `{"amountCents": 3000, "currency": "aud", "description": "Kit"}`)
	assert.Equal(t, "AUD", kit.Currency)

	post := func(name, token, body string, code int, data interface{}) httpTest {
		tt := httpTest{name: name, method: http.MethodPost, path: "/api/payments", token: token, body: []byte(body), wantCode: code}
		if data != nil {
			tt.wantData = marshalObj(t, data)
		}
		return tt
	}
	runHTTPTests(t, []httpTest{
		post("auth required", "", `{}`, http.StatusUnauthorized, errAuthRequired),
		post("parents only", adminToken, `{}`, http.StatusForbidden, errForbidden),
		post("amount must be positive", momToken, `{"amountCents": -1, "description": "x"}`, http.StatusBadRequest, nil),
		post("bad currency", momToken, `{"amountCents": 100, "currency": "dollars", "description": "x"}`, http.StatusBadRequest, nil),
		post("someone else's player", dadToken, `{"playerId": "`+ann.ID+`", "amountCents": 100, "description": "x"}`,
			http.StatusBadRequest, map[string]string{"playerId": "unknown player"}),
	})

	completed := fees
	completed.Status = payment.StatusCompleted
	runHTTPTests(t, []httpTest{
		{name: "parents see their own", path: "/api/payments", token: momToken, wantData: marshalList(t, fees)},
		{name: "admin sees all, newest first", path: "/api/payments", token: adminToken, wantData: marshalList(t, kit, fees)},
		{name: "others get 404", path: "/api/payments/" + fees.ID, token: dadToken, wantCode: http.StatusNotFound},
		{name: "owner retrieves", path: "/api/payments/" + fees.ID, token: momToken, wantData: marshalObj(t, fees)},
		{
			name: "manual payments cannot be captured", method: http.MethodPost, path: "/api/payments/" + fees.ID + "/capture", token: momToken,
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: payment.ErrNotCapturable.Error()}),
		},
		{
			name: "status: admin only", method: http.MethodPut, path: "/api/payments/" + fees.ID + "/status", token: momToken,
			body: []byte(`{"status": "completed"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "status: invalid", method: http.MethodPut, path: "/api/payments/" + fees.ID + "/status", token: adminToken,
			body: []byte(`{"status": "paid"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "status: admin sets", method: http.MethodPut, path: "/api/payments/" + fees.ID + "/status", token: adminToken,
			body: []byte(`{"status": "Completed"}`),
		},
		{name: "by status", path: "/api/payments?status=completed", token: adminToken, wantCode: http.StatusOK},
	})

	rec := serve(http.MethodGet, "/api/payments?status=completed", adminToken)
	var list []payment.Payment
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, completed.ID, list[0].ID)
	assert.Equal(t, payment.StatusCompleted, list[0].Status)
}
