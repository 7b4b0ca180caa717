package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academy/core"
)

type healthApi struct {
	db   core.Pinger
	conf *core.Config
}

func registerHealthAPI(g *echo.Group, db core.Pinger, conf *core.Config) {
	api := healthApi{db: db, conf: conf}

	g.GET("/health", api.health)
	g.GET("/flags", api.flags)
}

func (api *healthApi) health(ctx echo.Context) error {
	status, code := "ok", http.StatusOK
	if api.db != nil {
		if err := api.db.PingContext(ctx.Request().Context()); err != nil {
			ctx.Logger().Errorf("health: pinging database: %v", err)
			status, code = "db unavailable", http.StatusServiceUnavailable
		}
	}
	return ctx.JSON(code, HealthResponse{Status: status, Build: api.conf.Build})
}

func (api *healthApi) flags(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, FlagsResponse{
		RequireAdminApprovalForParents: api.conf.Flags.RequireAdminApprovalForParents,
		GoLive:                         api.conf.Flags.GoLive,
	})
}
