package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(&model.User{ID: 42, Role: model.RoleVendor, ProfileComplete: true})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)

	p, err := iss.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), p.UserID)
	assert.Equal(t, model.RoleVendor, p.Role)
	assert.True(t, p.ProfileComplete)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewIssuer("one", time.Hour).Issue(&model.User{ID: 1, Role: model.RoleCustomer})
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issued }
	tok, err := iss.Issue(&model.User{ID: 1, Role: model.RoleCustomer})
	require.NoError(t, err)

	iss.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = iss.Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{Role: model.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(&model.User{ID: 5, Role: model.Role("ROOT")})
	require.NoError(t, err)

	_, err = iss.Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
