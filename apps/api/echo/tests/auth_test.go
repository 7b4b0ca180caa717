package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/services/email"
	"github.com/trezcool/academy/tests"
)

const strongPwd = "Sup3r$ecret!"

func Test_authApi_login(t *testing.T) {
	reset()

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@x.com", strongPwd, user.RoleParent, user.StatusActive)
	testutil.CreateUser(t, usrRepo, "Sus", "sus@x.com", strongPwd, user.RoleCoach, user.StatusSuspended)

	invalid := marshalObj(t, httpErr{Error: "invalid credentials"})
	runHTTPTests(t, []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/api/auth/login", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email": "nobody@x.com", "password": "` + strongPwd + `"}`), wantCode: http.StatusBadRequest, wantData: invalid,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email": "jane@x.com", "password": "wrong"}`), wantCode: http.StatusBadRequest, wantData: invalid,
		},
		{
			name: "not active", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email": "sus@x.com", "password": "` + strongPwd + `"}`), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account not active"}),
		},
	})

	rec := serve(http.MethodPost, "/api/auth/login", "", []byte(`{"email": "JANE@x.com ", "password": "`+strongPwd+`"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, usr.ID, res.User.ID)
	assert.True(t, res.User.LastLogin.Valid)

	// the session cookie authenticates
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	sid := cookies[0]
	assert.Equal(t, "sid", sid.Name)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sid.SameSite)

	req, rec := newRequest(http.MethodGet, "/api/auth/me")
	req.AddCookie(sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usr.ID)

	// ...and so does the bearer token
	rec = serve(http.MethodGet, "/api/auth/me", res.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usr.ID)

	// logout destroys the session
	req, rec = newRequest(http.MethodPost, "/api/auth/logout")
	req.AddCookie(sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/api/auth/me")
	req.AddCookie(sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_authApi_me(t *testing.T) {
	reset()

	usr := createUser(t, "Jane", "jane@x.com", user.RoleParent)
	suspended := testutil.CreateUser(t, usrRepo, "Sus", "sus@x.com", "", user.RoleParent, user.StatusSuspended)

	runHTTPTests(t, []httpTest{
		{name: "anonymous", path: "/api/auth/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errAuthRequired)},
		{name: "bad token", path: "/api/auth/me", token: "nope", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errAuthRequired)},
		{name: "inactive user", path: "/api/auth/me", token: getToken(t, suspended), wantCode: http.StatusUnauthorized},
		{name: "ok", path: "/api/auth/me", token: getToken(t, usr), wantData: marshalObj(t, usr)},
	})
}

func Test_authApi_passwordReset(t *testing.T) {
	reset()

	usr := testutil.CreateUser(t, usrRepo, "Jane", "jane@x.com", strongPwd, user.RoleParent, user.StatusActive)

	for _, email := range []string{"jane@x.com", "nobody@x.com"} {
		rec := serve(http.MethodPost, "/api/auth/password-reset", "", []byte(`{"email": "`+email+`"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "If the email address supplied")
	}
	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "password_reset", sent[0].TemplateName)

	uid, token := usrSvc.MakeResetToken(usr)
	confirm := func(body string) *httpTest {
		return &httpTest{method: http.MethodPost, path: "/api/auth/password-reset-confirm", body: []byte(body)}
	}

	tt := confirm(`{"uid": "` + uid + `", "token": "bad", "password": "N3w$ecret!", "passwordConfirm": "N3w$ecret!"}`)
	tt.name, tt.wantCode = "bad token", http.StatusBadRequest
	tt.wantData = marshalObj(t, map[string]string{"token": "invalid value"})
	runHTTPTests(t, []httpTest{*tt})

	tt = confirm(`{"uid": "` + uid + `", "token": "` + token + `", "password": "password", "passwordConfirm": "password"}`)
	tt.name, tt.wantCode = "weak password", http.StatusBadRequest
	runHTTPTests(t, []httpTest{*tt})

	tt = confirm(`{"uid": "` + uid + `", "token": "` + token + `", "password": "N3w$ecret!", "passwordConfirm": "N3w$ecret!"}`)
	tt.name = "ok"
	runHTTPTests(t, []httpTest{*tt})

	rec := serve(http.MethodPost, "/api/auth/login", "", []byte(`{"email": "jane@x.com", "password": "N3w$ecret!"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}
