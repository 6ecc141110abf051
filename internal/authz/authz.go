// Package authz maps roles to permission sets so every route and service asks
// the same question through Authorize.
package authz

import (
	"errors"

	"github.com/shinyyama/village-market/internal/model"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
)

type Permission uint32

const (
	PlaceOrder Permission = 1 << iota
	ViewOwnOrders
	UploadPaymentSlip
	ManageShops
	ManageProducts
	FulfillOrders
	UploadImages
	ViewAllOrders
	VerifyPayments
	ManageUsers
)

const (
	customerPerms = PlaceOrder | ViewOwnOrders | UploadPaymentSlip | UploadImages
	vendorPerms   = ManageShops | ManageProducts | FulfillOrders | UploadImages
	// admins act on every order but never place one themselves
	adminPerms    = (customerPerms &^ PlaceOrder) | vendorPerms | ViewAllOrders | VerifyPayments | ManageUsers
)

var rolePermissions = map[model.Role]Permission{
	model.RoleCustomer: customerPerms,
	model.RoleVendor:   vendorPerms,
	model.RoleAdmin:    adminPerms,
}

// Permissions returns the permission set granted to role. Unknown roles get none.
func Permissions(role model.Role) Permission {
	return rolePermissions[role]
}

func (p Permission) Has(want Permission) bool {
	return want != 0 && p&want == want
}

// Principal is the authenticated caller as carried by the session token.
type Principal struct {
	UserID          uint64
	Role            model.Role
	ProfileComplete bool
}

func (p *Principal) Can(perm Permission) bool {
	return p != nil && Permissions(p.Role).Has(perm)
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// CanActOn reports whether the caller owns the resource or is an admin.
func (p *Principal) CanActOn(ownerID uint64) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin() || p.UserID == ownerID
}

// Authorize is the single authorization check: nil principal means the caller is
// anonymous, otherwise the role must grant perm.
func Authorize(p *Principal, perm Permission) error {
	if p == nil || p.UserID == 0 {
		return ErrAuthenticationRequired
	}
	if !p.Can(perm) {
		return ErrForbidden
	}
	return nil
}
