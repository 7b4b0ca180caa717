package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/user"
)

func createPlayer(t *testing.T, token, body string) player.Player {
	rec := serve(http.MethodPost, "/api/players", token, []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p player.Player
	decode(t, rec, &p)
	return p
}

func Test_playerApi(t *testing.T) {
	reset()

	admin := createUser(t, "Admin", "admin@x.com", user.RoleAdmin)
	coach := createUser(t, "Coach", "coach@x.com", user.RoleCoach)
	mom := createUser(t, "Mom", "mom@x.com", user.RoleParent)
	dad := createUser(t, "Dad", "dad@x.com", user.RoleParent)
	momToken, dadToken := getToken(t, mom), getToken(t, dad)

	// parents always register their own children
	ann := createPlayer(t, momToken, `{"name": "Ann", "dateOfBirth": "2014-05-01", "ageGroup": "U11", "parentId": "`+dad.ID+`"}`)
	assert.Equal(t, mom.ID, ann.ParentID)
	assert.False(t, ann.MedicalNotes.Valid)

	// admins pick the parent
	zoe := createPlayer(t, getToken(t, admin), `{"name": "Zoe", "dateOfBirth": "2012-01-01", "ageGroup": "U13", "parentId": "`+dad.ID+`", "medicalNotes": "asthma"}`)
	assert.Equal(t, dad.ID, zoe.ParentID)
	assert.Equal(t, "asthma", zoe.MedicalNotes.String)

	post := func(name, token, body string, code int, data interface{}) httpTest {
		tt := httpTest{name: name, method: http.MethodPost, path: "/api/players", token: token, body: []byte(body), wantCode: code}
		if data != nil {
			tt.wantData = marshalObj(t, data)
		}
		return tt
	}
	runHTTPTests(t, []httpTest{
		post("auth required", "", `{}`, http.StatusUnauthorized, errAuthRequired),
		post("coaches cannot create", getToken(t, coach), `{}`, http.StatusForbidden, errForbidden),
		post("required fields", momToken, `{}`, http.StatusBadRequest, map[string]string{
			"name": "this field is required", "dateOfBirth": "this field is required", "ageGroup": "this field is required",
		}),
		post("born in the future", momToken, `{"name": "X", "dateOfBirth": "2999-01-01", "ageGroup": "U9"}`,
			http.StatusBadRequest, map[string]string{"dateOfBirth": "cannot be in the future"}),
		post("admin without parent", getToken(t, admin), `{"name": "X", "dateOfBirth": "2015-01-01", "ageGroup": "U9"}`,
			http.StatusBadRequest, map[string]string{"parentId": "this field is required"}),
		post("admin with non-parent", getToken(t, admin), `{"name": "X", "dateOfBirth": "2015-01-01", "ageGroup": "U9", "parentId": "`+coach.ID+`"}`,
			http.StatusBadRequest, map[string]string{"parentId": "unknown parent"}),
	})

	runHTTPTests(t, []httpTest{
		{name: "parents see their own", path: "/api/players", token: momToken, wantData: marshalList(t, ann)},
		{name: "parentId is ignored for parents", path: "/api/players?parentId=" + dad.ID, token: momToken, wantData: marshalList(t, ann)},
		{name: "coaches see all", path: "/api/players", token: getToken(t, coach), wantData: marshalList(t, ann, zoe)},
		{name: "by age group", path: "/api/players?ageGroup=U13", token: getToken(t, admin), wantData: marshalList(t, zoe)},
		{name: "by parent", path: "/api/players?parentId=" + mom.ID, token: getToken(t, admin), wantData: marshalList(t, ann)},
		{name: "owner retrieves", path: "/api/players/" + ann.ID, token: momToken, wantData: marshalObj(t, ann)},
		{name: "admin retrieves", path: "/api/players/" + ann.ID, token: getToken(t, admin), wantData: marshalObj(t, ann)},
		{name: "others get 404", path: "/api/players/" + ann.ID, token: dadToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)},
		{name: "coaches get 404", path: "/api/players/" + ann.ID, token: getToken(t, coach), wantCode: http.StatusNotFound},
		{
			name: "others cannot update", method: http.MethodPut, path: "/api/players/" + ann.ID, token: dadToken, wantCode: http.StatusNotFound,
			body: []byte(`{"name": "Ann", "dateOfBirth": "2014-05-01", "ageGroup": "U11"}`),
		},
	})

	rec := serve(http.MethodPut, "/api/players/"+ann.ID, momToken, []byte(`{"name": "Annie", "dateOfBirth": "2014-05-01", "ageGroup": "U13"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated player.Player
	decode(t, rec, &updated)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "U13", updated.AgeGroup)
	assert.Equal(t, mom.ID, updated.ParentID)
}
