package service

import (
	"context"
	"fmt"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/repository"
)

type UserPatch struct {
	IsActive *bool
	Role     *model.Role
}

type UserService interface {
	List(ctx context.Context, p *authz.Principal, role model.Role) ([]model.User, error)
	Update(ctx context.Context, p *authz.Principal, userID uint64, patch UserPatch) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, p *authz.Principal, role model.Role) ([]model.User, error) {
	if err := authz.Authorize(p, authz.ManageUsers); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	return s.users.List(ctx, role)
}

// Update soft-activates/deactivates a user or changes their role. Users are
// never hard-deleted here.
func (s *userService) Update(ctx context.Context, p *authz.Principal, userID uint64, patch UserPatch) (*model.User, error) {
	if err := authz.Authorize(p, authz.ManageUsers); err != nil {
		return nil, err
	}
	if patch.IsActive == nil && patch.Role == nil {
		return nil, invalid("body", "nothing to update")
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	if userID == p.UserID {
		if patch.IsActive != nil && !*patch.IsActive {
			return nil, fmt.Errorf("%w: cannot deactivate yourself", ErrConflict)
		}
		if patch.Role != nil && *patch.Role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot demote yourself", ErrConflict)
		}
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fields := map[string]interface{}{}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if patch.Role != nil {
		fields["role"] = *patch.Role
	}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}
