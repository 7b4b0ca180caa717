package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/user"
)

type playerApi struct {
	svc      player.ServiceInterface
	validate *validator.Validate
}

func registerPlayerAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc player.ServiceInterface,
	validate *validator.Validate,
) {
	api := playerApi{svc: svc, validate: validate}

	pg := g.Group("/players", auth)
	pg.GET("", api.query)
	pg.POST("", api.create, roleRequired(user.RoleParent, user.RoleAdmin))

	dg := pg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
}

// objectMiddleware puts the :id player in the context.
// Anyone but its parent and the academy admins gets a 404.
func (api *playerApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == player.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding player")
		}

		usr := mustContextUser(ctx)
		switch {
		case usr.IsSuperAdmin():
		case usr.IsAdmin() && p.AcademyID == usr.AcademyID:
		case p.ParentID == usr.ID:
		default:
			return errHttpNotFound
		}
		ctx.Set("object", p)
		return next(ctx)
	}
}

func (api *playerApi) create(ctx echo.Context) error {
	var data player.PlayerInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlayerInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data, mustContextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "creating player")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *playerApi) query(ctx echo.Context) error {
	filter := new(player.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []player.Player{})
	}
	filter.ParentID = core.CleanString(filter.ParentID, true /* lower */)
	filter.AgeGroup = core.CleanString(filter.AgeGroup)

	usr := mustContextUser(ctx)
	if usr.IsParent() {
		filter.ParentID = usr.ID
	}
	filter.AcademyID = academyScope(usr)

	players, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying players")
	}
	if players == nil {
		players = []player.Player{}
	}
	return ctx.JSON(http.StatusOK, players)
}

func (api *playerApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get("object").(player.Player)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving player from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *playerApi) update(ctx echo.Context) error {
	p, ok := ctx.Get("object").(player.Player)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving player from context")
	}

	var data player.PlayerInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlayerInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), p, data, mustContextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "updating player")
	}
	return ctx.JSON(http.StatusOK, p)
}
