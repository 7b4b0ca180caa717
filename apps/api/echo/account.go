package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/services/session"
)

var passwordResetText = "If the email address supplied is associated with an active account on this system, " +
	"an email will arrive in your inbox shortly with instructions to reset your password."

type authApi struct {
	svc      user.ServiceInterface
	sessions sessionsvc.Store
	conf     *core.Config
	validate *validator.Validate
	logger   core.Logger
}

func registerAuthAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc user.ServiceInterface,
	sessions sessionsvc.Store,
	conf *core.Config,
	validate *validator.Validate,
	logger core.Logger,
) {
	api := authApi{
		svc:      svc,
		sessions: sessions,
		conf:     conf,
		validate: validate,
		logger:   logger,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)
	ag.GET("/me", api.me, auth)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	switch errors.Cause(err) {
	case nil:
	case user.ErrInvalidCredentials:
		return core.NewValidationError(user.ErrInvalidCredentials)
	case user.ErrNotActive:
		return errAccountNotActive
	default:
		return errors.Wrap(err, "authenticating")
	}

	sid, err := api.sessions.Create(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	ctx.SetCookie(newSessionCookie(sid, api.conf, int(api.conf.Server.SessionTTL.Seconds())))

	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *authApi) logout(ctx echo.Context) error {
	if cookie, err := ctx.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := api.sessions.Delete(ctx.Request().Context(), cookie.Value); err != nil {
			return errors.Wrap(err, "deleting session")
		}
	}
	ctx.SetCookie(newSessionCookie("", api.conf, -1))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *authApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, mustContextUser(ctx))
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if cause := errors.Cause(err); err != nil && cause != user.ErrNotFound && cause != user.ErrNotActive {
		// do not leak errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: passwordResetText})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}
