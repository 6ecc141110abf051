package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shinyyama/village-market/internal/session"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type ProfileInput struct {
	Name        string
	HouseNumber string
	Address     string
	Phone       string
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *model.User
	Token session.Token
}

type AuthService interface {
	Register(ctx context.Context, username, password, name string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	LoginExternal(ctx context.Context, ext identity.External) (*AuthResult, error)
	CompleteProfile(ctx context.Context, p *authz.Principal, in ProfileInput) (*AuthResult, error)
	Me(ctx context.Context, p *authz.Principal) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	issuer     *session.Issuer
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, issuer *session.Issuer, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, issuer: issuer, bcryptCost: bcryptCost}
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	tok, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: tok}, nil
}

func (s *authService) Register(ctx context.Context, username, password, name string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	name = strings.TrimSpace(name)
	switch {
	case len(username) < 3 || len(username) > 64:
		return nil, invalid("username", "must be 3-64 characters")
	case len(password) < minPasswordLen:
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	case name == "":
		return nil, invalid("name", "is required")
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username taken", ErrConflict)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)
	u := &model.User{
		Name:         name,
		Username:     &username,
		PasswordHash: &hashStr,
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[auth] rid=%s stage=register user=%d", reqctx.RID(ctx), u.ID)
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
	}
	return s.issue(u)
}

// LoginExternal finds the user bound to the external identity or creates a new
// customer with an incomplete profile.
func (s *authService) LoginExternal(ctx context.Context, ext identity.External) (*AuthResult, error) {
	if ext.Provider == "" || ext.Subject == "" {
		return nil, identity.ErrInvalidIdentity
	}
	extID := ext.ID()
	u, err := s.users.FindByExternalID(ctx, extID)
	switch {
	case err == nil:
		if !u.IsActive {
			return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
		}
	case repository.IsNotFound(err):
		u = &model.User{
			Name:       ext.DisplayName(),
			ExternalID: &extID,
			Role:       model.RoleCustomer,
			IsActive:   true,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		log.Printf("[auth] rid=%s stage=external_signup provider=%s user=%d", reqctx.RID(ctx), ext.Provider, u.ID)
	default:
		return nil, err
	}
	return s.issue(u)
}

func (s *authService) CompleteProfile(ctx context.Context, p *authz.Principal, in ProfileInput) (*AuthResult, error) {
	u, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	house := strings.TrimSpace(in.HouseNumber)
	if house == "" {
		return nil, invalid("houseNumber", "is required")
	}
	if name != "" {
		u.Name = name
	}
	u.HouseNumber = &house
	u.Address = strings.TrimSpace(in.Address)
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	} else {
		u.Phone = nil
	}
	u.ProfileComplete = true
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *authService) Me(ctx context.Context, p *authz.Principal) (*model.User, error) {
	if p == nil {
		return nil, ErrAuthenticationRequired
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAuthenticationRequired
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
	}
	return u, nil
}
