package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/registration"
)

var (
	errInvalidVerifyLink   = core.NewPlainTextError("Invalid or expired verification link")
	errInvalidApprovalLink = core.NewPlainTextError("Invalid approval link")

	verifiedTexts = map[string]string{
		registration.StatusActive:       "Your email is verified and your account is active. Check your inbox to set your password.",
		registration.StatusPendingAdmin: "Your email is verified. Your registration is now awaiting approval by the academy.",
		registration.StatusRejected:     "This registration has been declined.",
	}
)

type registrationApi struct {
	svc      registration.ServiceInterface
	validate *validator.Validate
}

func registerRegistrationAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	admin echo.MiddlewareFunc,
	svc registration.ServiceInterface,
	conf *core.Config,
	validate *validator.Validate,
) {
	api := registrationApi{svc: svc, validate: validate}

	rg := g.Group("/registration")
	rg.POST("", api.create, registrationRateLimiter(conf.Server.RegistrationRateLimit))
	rg.GET("/verify", api.verify)
	rg.GET("/:id/approve", api.approve)
	rg.GET("/:id/deny", api.deny)

	g.GET("/registrations", api.query, auth, admin)
}

// registrationRateLimiter allows perMinute registrations per client IP.
func registrationRateLimiter(perMinute float64) echo.MiddlewareFunc {
	burst := int(perMinute)
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perMinute / 60),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		DenyHandler: func(ctx echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many registrations, try again later")
		},
	})
}

func (api *registrationApi) create(ctx echo.Context) error {
	var data registration.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating registration")
	}
	return ctx.JSON(http.StatusCreated, RegistrationResponse{OK: true, ID: reg.ID})
}

func (api *registrationApi) verify(ctx echo.Context) error {
	reg, err := api.svc.Verify(ctx.Request().Context(), ctx.QueryParam("token"))
	if err != nil {
		if errors.Cause(err) == registration.ErrInvalidToken {
			return errInvalidVerifyLink
		}
		return errors.Wrap(err, "verifying registration")
	}
	return ctx.String(http.StatusOK, verifiedTexts[reg.Status])
}

func (api *registrationApi) approve(ctx echo.Context) error {
	reg, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("token"))
	if err != nil {
		return api.decisionError(err, "approving registration")
	}
	return ctx.String(http.StatusOK, "Registration of "+reg.ParentName+" ("+reg.Email+") approved.")
}

func (api *registrationApi) deny(ctx echo.Context) error {
	reg, err := api.svc.Deny(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("token"))
	if err != nil {
		return api.decisionError(err, "denying registration")
	}
	return ctx.String(http.StatusOK, "Registration of "+reg.ParentName+" ("+reg.Email+") denied.")
}

func (api *registrationApi) decisionError(err error, msg string) error {
	if errors.Cause(err) == registration.ErrInvalidToken {
		return errInvalidApprovalLink
	}
	return errors.Wrap(err, msg)
}

func (api *registrationApi) query(ctx echo.Context) error {
	filter := new(registration.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []registration.Registration{})
	}
	for i, s := range filter.Statuses {
		filter.Statuses[i] = core.CleanString(s, true /* lower */)
	}
	filter.AcademyID = academyScope(mustContextUser(ctx))

	regs, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}
