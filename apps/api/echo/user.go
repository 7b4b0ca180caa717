package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core/user"
)

type userApi struct {
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	admin echo.MiddlewareFunc,
	svc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := userApi{svc: svc, validate: validate}

	ug := g.Group("/users", auth, admin)
	ug.GET("", api.query)
	ug.GET("/roles", api.queryRoles)

	dg := ug.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.setStatus)
}

// objectMiddleware puts the :id user in the context. Users of other academies are not found.
func (api *userApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding user")
		}
		if scope := academyScope(mustContextUser(ctx)); scope != "" && usr.AcademyID != scope {
			return errHttpNotFound
		}
		ctx.Set("object", usr)
		return next(ctx)
	}
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	filter.AcademyID = academyScope(mustContextUser(ctx))
	ordering := new(Ordering)
	ordering.Bind(ctx, user.OrderingFields)

	users, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving user from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setStatus(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving user from context")
	}
	if !mustContextUser(ctx).CanManage(usr) {
		return errHttpForbidden
	}

	var data user.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.SetStatus(ctx.Request().Context(), usr.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting user status")
	}
	return ctx.JSON(http.StatusOK, usr)
}
