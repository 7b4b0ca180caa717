package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core/schedule"
	"github.com/trezcool/academy/core/user"
)

type scheduleApi struct {
	svc      schedule.ServiceInterface
	validate *validator.Validate
}

func registerScheduleAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc schedule.ServiceInterface,
	validate *validator.Validate,
) {
	api := scheduleApi{svc: svc, validate: validate}

	sg := g.Group("/sessions", auth)
	sg.GET("", api.query)
	sg.POST("", api.create, roleRequired(user.RoleAdmin, user.RoleCoach))

	dg := sg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, api.ownerMiddleware)
	dg.DELETE("", api.destroy, api.ownerMiddleware)

	cg := g.Group("/coach/sessions", auth, roleRequired(user.RoleCoach))
	cg.GET("", api.queryOwn)
	cg.POST("", api.create)
}

func (api *scheduleApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == schedule.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding session")
		}
		if scope := academyScope(mustContextUser(ctx)); scope != "" && sess.AcademyID != scope {
			return errHttpNotFound
		}
		ctx.Set("object", sess)
		return next(ctx)
	}
}

// ownerMiddleware lets admins and the coach running the session through.
func (api *scheduleApi) ownerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr := mustContextUser(ctx)
		sess, _ := ctx.Get("object").(schedule.Session)
		switch {
		case usr.IsAdmin():
		case usr.IsCoach() && (sess.CoachID.String == usr.ID || sess.CreatedBy == usr.ID):
		default:
			return errHttpForbidden
		}
		return next(ctx)
	}
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.SessionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Create(ctx.Request().Context(), data, mustContextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	filter, err := bindSessionFilter(ctx)
	if err != nil {
		return err
	}
	filter.AcademyID = academyScope(mustContextUser(ctx))
	return api.list(ctx, filter)
}

func (api *scheduleApi) queryOwn(ctx echo.Context) error {
	filter, err := bindSessionFilter(ctx)
	if err != nil {
		return err
	}
	filter.CoachID = mustContextUser(ctx).ID
	return api.list(ctx, filter)
}

func (api *scheduleApi) list(ctx echo.Context, filter schedule.QueryFilter) error {
	sessions, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sess, ok := ctx.Get("object").(schedule.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving session from context")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	sess, ok := ctx.Get("object").(schedule.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving session from context")
	}

	var data schedule.SessionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if usr := mustContextUser(ctx); usr.IsCoach() {
		data.CoachID = usr.ID
		data.UnassignCoach = false
	}

	sess, err := api.svc.Update(ctx.Request().Context(), sess, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	sess, ok := ctx.Get("object").(schedule.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving session from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}
