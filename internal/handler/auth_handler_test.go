package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/dbtest"
	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shinyyama/village-market/internal/service"
	"github.com/shinyyama/village-market/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeLine struct {
	ext identity.External
	err error
}

func (f *fakeLine) AuthCodeURL(state string) string {
	return "https://access.line.me/oauth2/v2.1/authorize?state=" + state
}

func (f *fakeLine) Exchange(ctx context.Context, code string) (identity.External, error) {
	return f.ext, f.err
}

type fakeVerifier struct {
	ext identity.External
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (identity.External, error) {
	return f.ext, f.err
}

func newAuthHandler(t *testing.T, fb TokenVerifier, line OAuthProvider) *AuthHandler {
	conn := dbtest.Open(t)
	svc := service.NewAuthService(repository.NewUserRepository(conn), session.NewIssuer("handler-secret", time.Hour), bcrypt.MinCost)
	return NewAuthHandler(svc, CookieConfig{Name: "vm_session"}, fb, line, "https://market.example.org/")
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLineLogin(t *testing.T) {
	line := &fakeLine{ext: identity.External{Provider: identity.ProviderLine, Subject: "U123", Name: "Somchai"}}
	h := newAuthHandler(t, nil, line)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.LineStart(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/line", nil), rec)))
	assert.Equal(t, http.StatusFound, rec.Code)
	state := cookieNamed(rec, lineStateCookie)
	require.NotNil(t, state)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "state="+state.Value))

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/line/callback?state=other&code=abc", nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		require.NoError(t, h.LineCallback(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("new user lands on profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/line/callback?state="+state.Value+"&code=abc", nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		require.NoError(t, h.LineCallback(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://market.example.org/profile", rec.Header().Get("Location"))
		sess := cookieNamed(rec, "vm_session")
		require.NotNil(t, sess)
		assert.NotEmpty(t, sess.Value)
		assert.True(t, sess.HttpOnly)
	})
}

func TestFirebaseLogin(t *testing.T) {
	e := echo.New()
	newReq := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/firebase", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return req
	}

	t.Run("verified", func(t *testing.T) {
		h := newAuthHandler(t, &fakeVerifier{ext: identity.External{Provider: identity.ProviderFirebase, Subject: "uid-1", Name: "Nok"}}, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Firebase(e.NewContext(newReq(`{"idToken":"tok"}`), rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Nok"`)
		assert.Contains(t, rec.Body.String(), `"profileComplete":false`)
	})

	t.Run("rejected token", func(t *testing.T) {
		h := newAuthHandler(t, &fakeVerifier{err: identity.ErrInvalidIdentity}, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Firebase(e.NewContext(newReq(`{"idToken":"tok"}`), rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		h := newAuthHandler(t, &fakeVerifier{}, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Firebase(e.NewContext(newReq(`{}`), rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newAuthHandler(t, nil, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Logout(echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)))
	c := cookieNamed(rec, "vm_session")
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}
