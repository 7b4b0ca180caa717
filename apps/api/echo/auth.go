package echoapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/services/session"
)

const (
	sessionCookie  = "sid"
	contextUserKey = "user"
	jwtAudience    = "academy-api"
)

var localAdmin = user.User{
	ID:        "00000000-0000-0000-0000-00000000a11a",
	AcademyID: core.DefaultAcademyID,
	Name:      "Local Admin",
	Email:     "admin@localhost",
	Role:      user.RoleSuperAdmin,
	Status:    user.StatusActive,
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(*jwt.Token) (interface{}, error) { return []byte(conf.SecretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(jwtAudience),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// sessionMiddleware puts the request user in the context. It looks at, in order:
// the `sid` cookie, the `Authorization: Bearer` JWT, then (debug only) the local admin bypass.
// Requests it cannot authenticate go through anonymously.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := s.requestUserID(ctx)
		if err != nil {
			return err
		}

		if userID != "" {
			usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), userID)
			switch {
			case err == nil:
				if usr.IsActive() {
					ctx.Set(contextUserKey, usr)
				}
			case errors.Cause(err) != user.ErrNotFound:
				return errors.Wrap(err, "finding session user")
			}
		} else if s.localBypass(ctx) {
			ctx.Set(contextUserKey, localAdmin)
		}
		return next(ctx)
	}
}

func (s *Server) requestUserID(ctx echo.Context) (string, error) {
	if cookie, err := ctx.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		data, err := s.deps.Sessions.Get(ctx.Request().Context(), cookie.Value)
		if err == nil {
			return data.UserID, nil
		}
		if errors.Cause(err) != sessionsvc.ErrNotFound {
			return "", errors.Wrap(err, "reading session")
		}
	}

	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if raw := strings.TrimPrefix(auth, "Bearer "); raw != auth && raw != "" {
		if claims, err := parseToken(raw, s.deps.Conf); err == nil {
			return claims.Subject, nil
		}
	}
	return "", nil
}

// localBypass reports whether an anonymous request may act as the local superadmin.
// The peer address is used rather than forwarded headers.
func (s *Server) localBypass(ctx echo.Context) bool {
	conf := s.deps.Conf
	if !conf.Debug || !conf.Flags.LocalAdminBypass {
		return false
	}
	host, _, err := net.SplitHostPort(ctx.Request().RemoteAddr)
	if err != nil {
		host = ctx.Request().RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func authRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := contextUser(ctx); !ok {
			return errUnauthorized
		}
		return next(ctx)
	}
}

// roleRequired only lets through users holding one of roles (superadmins hold them all).
func roleRequired(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := contextUser(ctx)
			if !ok {
				return errUnauthorized
			}
			if !usr.HasAnyRole(roles...) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func contextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

// mustContextUser is for handlers mounted behind authRequired.
func mustContextUser(ctx echo.Context) user.User {
	usr, _ := contextUser(ctx)
	return usr
}

func newSessionCookie(sid string, conf *core.Config, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	}
}

// academyScope is the academy a listing is restricted to. Superadmins see every academy.
func academyScope(usr user.User) string {
	if usr.IsSuperAdmin() {
		return ""
	}
	return usr.AcademyID
}
