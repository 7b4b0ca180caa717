package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core/academy"
	"github.com/trezcool/academy/core/user"
)

type academyApi struct {
	svc      academy.ServiceInterface
	validate *validator.Validate
}

func registerAcademyAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc academy.ServiceInterface,
	validate *validator.Validate,
) {
	api := academyApi{svc: svc, validate: validate}

	ag := g.Group("/academies", auth, roleRequired(user.RoleSuperAdmin))
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
}

func (api *academyApi) create(ctx echo.Context) error {
	var data academy.NewAcademy
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAcademy")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating academy")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *academyApi) query(ctx echo.Context) error {
	academies, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying academies")
	}
	if academies == nil {
		academies = []academy.Academy{}
	}
	return ctx.JSON(http.StatusOK, academies)
}

func (api *academyApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academy.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding academy")
	}
	return ctx.JSON(http.StatusOK, a)
}
