package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/schedule"
	"github.com/trezcool/academy/core/user"
)

type coachApi struct {
	users    user.ServiceInterface
	sessions schedule.ServiceInterface
}

func registerCoachAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	users user.ServiceInterface,
	sessions schedule.ServiceInterface,
) {
	api := coachApi{users: users, sessions: sessions}

	cg := g.Group("/coaches", auth)
	cg.GET("", api.query)

	dg := cg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.GET("/sessions", api.querySessions)
}

func (api *coachApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		coach, err := api.users.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding coach")
		}
		if !coach.IsCoach() {
			return errHttpNotFound
		}
		if scope := academyScope(mustContextUser(ctx)); scope != "" && coach.AcademyID != scope {
			return errHttpNotFound
		}
		ctx.Set("object", coach)
		return next(ctx)
	}
}

func (api *coachApi) query(ctx echo.Context) error {
	coaches, err := api.users.Query(
		ctx.Request().Context(),
		user.QueryFilter{
			Search:    core.CleanString(ctx.QueryParam("search")),
			Roles:     []string{user.RoleCoach},
			Statuses:  []string{user.StatusActive},
			AcademyID: academyScope(mustContextUser(ctx)),
		},
		core.DBOrdering{Field: "name", Ascending: true},
	)
	if err != nil {
		return errors.Wrap(err, "querying coaches")
	}

	profiles := make([]user.PublicProfile, 0, len(coaches))
	for _, c := range coaches {
		profiles = append(profiles, c.PublicProfile())
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *coachApi) retrieve(ctx echo.Context) error {
	coach, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving coach from context")
	}
	return ctx.JSON(http.StatusOK, coach.PublicProfile())
}

func (api *coachApi) querySessions(ctx echo.Context) error {
	coach, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving coach from context")
	}
	filter, err := bindSessionFilter(ctx)
	if err != nil {
		return err
	}
	filter.CoachID = coach.ID

	sessions, err := api.sessions.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying coach sessions")
	}
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}
