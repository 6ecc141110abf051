package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestLine(t *testing.T, profileStatus int) *LineProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		if profileStatus != http.StatusOK {
			w.WriteHeader(profileStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(lineProfile{UserID: "U123", DisplayName: "Noi"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewLineProvider("cid", "secret", "http://localhost/cb")
	p.conf.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/authorize",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.profileURL = srv.URL + "/profile"
	return p
}

func TestLineExchange(t *testing.T) {
	p := newTestLine(t, http.StatusOK)

	ext, err := p.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "line:U123", ext.ID())
	assert.Equal(t, "Noi", ext.DisplayName())
}

func TestLineExchangeProfileFailure(t *testing.T) {
	p := newTestLine(t, http.StatusUnauthorized)

	_, err := p.Exchange(context.Background(), "the-code")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestLineAuthCodeURL(t *testing.T) {
	p := NewLineProvider("cid", "secret", "http://localhost/cb")
	u, err := url.Parse(p.AuthCodeURL("st8"))
	require.NoError(t, err)
	assert.Equal(t, "access.line.me", u.Host)
	assert.Equal(t, "st8", u.Query().Get("state"))
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestDisplayNameFallback(t *testing.T) {
	assert.Equal(t, "line user", External{Provider: "line", Subject: "x", Name: "  "}.DisplayName())
}
