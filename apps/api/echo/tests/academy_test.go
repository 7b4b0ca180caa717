package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/academy"
	"github.com/trezcool/academy/core/user"
)

func Test_academyApi(t *testing.T) {
	reset()

	super := createUser(t, "Super", "super@x.com", user.RoleSuperAdmin)
	admin := createUser(t, "Admin", "admin@x.com", user.RoleAdmin)
	token := getToken(t, super)

	rec := serve(http.MethodPost, "/api/academies", token, []byte(`{"name": "North Shore CC", "slug": "north-shore"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var north academy.Academy
	decode(t, rec, &north)
	assert.Equal(t, "north-shore", north.Slug)

	runHTTPTests(t, []httpTest{
		{name: "superadmin only", path: "/api/academies", token: getToken(t, admin), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{
			name: "slug taken", method: http.MethodPost, path: "/api/academies", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"name": "Other", "slug": "north-shore"}`), wantData: marshalObj(t, map[string]string{"slug": "slug already taken"}),
		},
		{
			name: "bad slug", method: http.MethodPost, path: "/api/academies", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"name": "Other", "slug": "Not A Slug"}`), wantData: marshalObj(t, map[string]string{"slug": "only lowercase letters, digits and dashes are allowed"}),
		},
		{name: "retrieve", path: "/api/academies/" + north.ID, token: token, wantData: marshalObj(t, north)},
		{name: "retrieve unknown", path: "/api/academies/nope", token: token, wantCode: http.StatusNotFound},
	})

	rec = serve(http.MethodGet, "/api/academies", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []academy.Academy
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, core.DefaultAcademyID, list[0].ID) // "Default Academy" < "North Shore CC"
	assert.Equal(t, north.ID, list[1].ID)
}
