package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/service"
	"github.com/shinyyama/village-market/internal/session"
)

const lineStateCookie = "vm_line_state"

type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (identity.External, error)
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (identity.External, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	svc      service.AuthService
	cookie   CookieConfig
	firebase TokenVerifier
	line     OAuthProvider
	appURL   string
}

// NewAuthHandler builds the auth endpoints. firebase and line may be nil when
// the provider is not configured.
func NewAuthHandler(svc service.AuthService, cookie CookieConfig, firebase TokenVerifier, line OAuthProvider, appURL string) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie, firebase: firebase, line: line, appURL: strings.TrimRight(appURL, "/")}
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	res, err := h.svc.Register(c.Request().Context(), req.Username, req.Password, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondSession(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	res, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondSession(c, http.StatusOK, res)
}

func (h *AuthHandler) Firebase(c echo.Context) error {
	if h.firebase == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("provider_disabled", "firebase sign-in is not configured"))
	}
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return badRequest(c, "idToken is required")
	}
	ctx := c.Request().Context()
	ext, err := h.firebase.Verify(ctx, req.IDToken)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.LoginExternal(ctx, ext)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondSession(c, http.StatusOK, res)
}

func (h *AuthHandler) LineStart(c echo.Context) error {
	if h.line == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("provider_disabled", "line sign-in is not configured"))
	}
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     lineStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.line.AuthCodeURL(state))
}

func (h *AuthHandler) LineCallback(c echo.Context) error {
	if h.line == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("provider_disabled", "line sign-in is not configured"))
	}
	ctx := c.Request().Context()
	state, err := c.Cookie(lineStateCookie)
	if err != nil || state.Value == "" || state.Value != c.QueryParam("state") {
		return badRequest(c, "invalid oauth state")
	}
	h.clearCookie(c, lineStateCookie)
	code := c.QueryParam("code")
	if code == "" {
		return badRequest(c, "missing authorization code")
	}
	ext, err := h.line.Exchange(ctx, code)
	if err != nil {
		log.Printf("[auth] rid=%s stage=line_exchange err=%v", reqctx.RID(ctx), err)
		return writeError(c, err)
	}
	res, err := h.svc.LoginExternal(ctx, ext)
	if err != nil {
		return writeError(c, err)
	}
	h.setSessionCookie(c, res.Token)
	next := h.appURL + "/"
	if !res.User.ProfileComplete {
		next = h.appURL + "/profile"
	}
	return c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearCookie(c, h.cookie.Name)
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

type profileRequest struct {
	Name        string `json:"name"`
	HouseNumber string `json:"houseNumber"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	res, err := h.svc.CompleteProfile(c.Request().Context(), principal(c), service.ProfileInput{
		Name:        req.Name,
		HouseNumber: req.HouseNumber,
		Address:     req.Address,
		Phone:       req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return h.respondSession(c, http.StatusOK, res)
}

func (h *AuthHandler) respondSession(c echo.Context, status int, res *service.AuthResult) error {
	h.setSessionCookie(c, res.Token)
	return c.JSON(status, SessionResponse{
		Token:     res.Token.Value,
		ExpiresAt: res.Token.ExpiresAt.Format(time.RFC3339),
		User:      toUserResponse(res.User),
	})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, tok session.Token) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
