package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountNotActive = echo.NewHTTPError(http.StatusForbidden, "account not active")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errObjNotFoundInCtx = errors.New("object not found in echo.Context")
)

// appHTTPErrorHandler is the echo.HTTPErrorHandler that knows how to handle our errors.
// It signals a graceful shutdown whenever a core.shutdown error is caught.
func (s *Server) appHTTPErrorHandler(err error, ctx echo.Context) {
	var code int
	var message interface{}
	plainText := false

	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		code = origErr.Code
		message = origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(s.deps.Translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = origErr.Error()
		}
		code = http.StatusBadRequest
	case *core.PlainTextError:
		code = http.StatusBadRequest
		message = origErr.Message
		plainText = true
	default: // any other error is a server error
		code = http.StatusInternalServerError
		msg := http.StatusText(http.StatusInternalServerError)
		message = msg

		args := []interface{}{errors.Wrap(err, msg)}
		if usr, ok := contextUser(ctx); ok {
			args = append(args, usr)
		}
		s.deps.Logger.Error(msg, args...)

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// shutting down...
		if core.IsShutdown(err) {
			s.signalShutdown()
		}
	}

	if m, ok := message.(string); ok && !plainText {
		message = echo.Map{"error": m}
	}

	// Send response
	if !ctx.Response().Committed {
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case plainText:
			err = ctx.String(code, message.(string))
		default:
			err = ctx.JSON(code, message)
		}
		if err != nil {
			s.deps.Logger.Error("sending error response", errors.Wrap(err, "sending error response"))
		}
	}
}
