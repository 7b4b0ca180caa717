package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/tests"
)

func Test_coachApi(t *testing.T) {
	reset()

	admin := createUser(t, "Admin", "admin@x.com", user.RoleAdmin)
	zack := createUser(t, "Zack", "zack@x.com", user.RoleCoach)
	amy := createUser(t, "Amy", "amy@x.com", user.RoleCoach)
	testutil.CreateUser(t, usrRepo, "Gone", "gone@x.com", "", user.RoleCoach, user.StatusSuspended)
	parent := createUser(t, "Parent", "parent@x.com", user.RoleParent)
	token := getToken(t, parent)

	s1 := createSession(t, getToken(t, amy), `{"title": "A", "ageGroup": "U11", "startUtc": "2024-07-01T08:00:00Z", "endUtc": "2024-07-01T09:00:00Z"}`)
	createSession(t, getToken(t, zack), `{"title": "Z", "ageGroup": "U11", "startUtc": "2024-07-01T08:00:00Z", "endUtc": "2024-07-01T09:00:00Z"}`)
	s2 := createSession(t, getToken(t, admin), `{"title": "B", "ageGroup": "U13", "coachId": "`+amy.ID+`", "startUtc": "2024-07-05T08:00:00Z", "endUtc": "2024-07-05T09:00:00Z"}`)

	runHTTPTests(t, []httpTest{
		{name: "auth required", path: "/api/coaches", wantCode: http.StatusUnauthorized},
		{name: "active coaches", path: "/api/coaches", token: token, wantData: marshalList(t, amy.PublicProfile(), zack.PublicProfile())},
		{name: "retrieve", path: "/api/coaches/" + amy.ID, token: token, wantData: marshalObj(t, amy.PublicProfile())},
		{name: "not a coach", path: "/api/coaches/" + parent.ID, token: token, wantCode: http.StatusNotFound},
		{name: "unknown", path: "/api/coaches/nope", token: token, wantCode: http.StatusNotFound},
		{name: "sessions", path: "/api/coaches/" + amy.ID + "/sessions", token: token, wantData: marshalList(t, s1, s2)},
		{name: "sessions, filtered", path: "/api/coaches/" + amy.ID + "/sessions?ageGroup=U13", token: token, wantData: marshalList(t, s2)},
	})
}
