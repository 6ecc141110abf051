package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shinyyama/village-market/internal/session"
)

// UserSource resolves the account behind a session token.
type UserSource interface {
	FindByID(ctx context.Context, id uint64) (*model.User, error)
}

type SessionAuth struct {
	issuer     *session.Issuer
	users      UserSource
	cookieName string
}

func NewSessionAuth(issuer *session.Issuer, users UserSource, cookieName string) *SessionAuth {
	return &SessionAuth{issuer: issuer, users: users, cookieName: cookieName}
}

func (m *SessionAuth) rawToken(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(m.cookieName); err == nil {
		return ck.Value
	}
	return ""
}

// Load attaches the principal when a valid session token is present. Requests
// without one continue anonymously; a present but invalid token is rejected.
// Role and profile state come from the users row, not from the token claims,
// so deactivation and role changes apply to sessions already issued.
func (m *SessionAuth) Load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := m.rawToken(c)
		if raw == "" {
			return next(c)
		}
		claims, err := m.issuer.Parse(raw)
		if err != nil {
			return deny(c, http.StatusUnauthorized, "invalid_token", "session is invalid or expired")
		}
		req := c.Request()
		u, err := m.users.FindByID(req.Context(), claims.UserID)
		switch {
		case repository.IsNotFound(err):
			return deny(c, http.StatusUnauthorized, "invalid_token", "session is invalid or expired")
		case err != nil:
			log.Printf("[auth] rid=%s stage=load_user user_id=%d err=%v", reqctx.RID(req.Context()), claims.UserID, err)
			return deny(c, http.StatusInternalServerError, "internal_error", "could not load session user")
		case !u.IsActive:
			return deny(c, http.StatusForbidden, "account_disabled", "this account has been deactivated")
		}
		p := &authz.Principal{UserID: u.ID, Role: u.Role, ProfileComplete: u.ProfileComplete}
		c.SetRequest(req.WithContext(reqctx.WithPrincipal(req.Context(), p)))
		return next(c)
	}
}

// RequireAuth rejects anonymous requests. It must run after Load.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if reqctx.Principal(c.Request().Context()) == nil {
			return deny(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		}
		return next(c)
	}
}

// RequirePermission gates a route group on a permission of the caller's role.
func RequirePermission(perm authz.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch authz.Authorize(reqctx.Principal(c.Request().Context()), perm) {
			case nil:
				return next(c)
			case authz.ErrAuthenticationRequired:
				return deny(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			default:
				return deny(c, http.StatusForbidden, "forbidden", "your role cannot do this")
			}
		}
	}
}

// RequestContext copies echo's request id into the request context for logs.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if rid != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(reqctx.WithRID(req.Context(), rid)))
		}
		return next(c)
	}
}

func deny(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"error": echo.Map{"code": code, "message": message},
	})
}
