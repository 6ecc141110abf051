package service

import (
	"testing"
	"time"

	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(e *env) (AuthService, *session.Issuer) {
	iss := session.NewIssuer("test-secret", time.Hour)
	return NewAuthService(e.users, iss, bcrypt.MinCost), iss
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc, iss := newAuth(e)

	res, err := svc.Register(e.ctx, " Noi ", "longenough", "Auntie Noi")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.False(t, res.User.ProfileComplete)
	require.NotNil(t, res.User.Username)
	assert.Equal(t, "noi", *res.User.Username)

	p, err := iss.Parse(res.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.UserID)
	assert.False(t, p.ProfileComplete)

	_, err = svc.Register(e.ctx, "noi", "longenough", "Other")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Register(e.ctx, "x", "longenough", "Short")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(e.ctx, "somchai", "short", "Somchai")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(e.ctx, "noi", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(e.ctx, "nobody", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := svc.Login(e.ctx, "NOI", "longenough")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, logged.User.ID)

	require.NoError(t, e.users.UpdateFields(e.ctx, res.User.ID, map[string]interface{}{"is_active": false}))
	_, err = svc.Login(e.ctx, "noi", "longenough")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLoginExternalCreatesOnce(t *testing.T) {
	e := newEnv(t)
	svc, _ := newAuth(e)
	ext := identity.External{Provider: identity.ProviderLine, Subject: "U1", Name: "Mali"}

	first, err := svc.LoginExternal(e.ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, "Mali", first.User.Name)
	assert.False(t, first.User.ProfileComplete)

	second, err := svc.LoginExternal(e.ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, int64(1), e.count(&model.User{}))

	_, err = svc.LoginExternal(e.ctx, identity.External{Provider: identity.ProviderLine})
	assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
}

func TestCompleteProfile(t *testing.T) {
	e := newEnv(t)
	svc, iss := newAuth(e)
	res, err := svc.Register(e.ctx, "mali", "longenough", "Mali")
	require.NoError(t, err)
	p := principalOf(res.User)

	_, err = svc.CompleteProfile(e.ctx, p, ProfileInput{Name: "Mali"})
	assert.ErrorIs(t, err, ErrValidation)

	done, err := svc.CompleteProfile(e.ctx, p, ProfileInput{HouseNumber: " 42 ", Address: "Moo 3", Phone: "0812345678"})
	require.NoError(t, err)
	assert.True(t, done.User.ProfileComplete)
	assert.True(t, done.User.CanOrder())
	assert.Equal(t, "Mali", done.User.Name)

	claims, err := iss.Parse(done.Token.Value)
	require.NoError(t, err)
	assert.True(t, claims.ProfileComplete)

	me, err := svc.Me(e.ctx, claims)
	require.NoError(t, err)
	require.NotNil(t, me.HouseNumber)
	assert.Equal(t, "42", *me.HouseNumber)

	_, err = svc.Me(e.ctx, nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}
