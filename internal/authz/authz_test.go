package authz

import (
	"testing"

	"github.com/shinyyama/village-market/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	customer := &Principal{UserID: 1, Role: model.RoleCustomer}
	vendor := &Principal{UserID: 2, Role: model.RoleVendor}
	admin := &Principal{UserID: 3, Role: model.RoleAdmin}
	unknown := &Principal{UserID: 4, Role: model.Role("GUEST")}

	tests := []struct {
		name string
		p    *Principal
		perm Permission
		want error
	}{
		{"anonymous", nil, PlaceOrder, ErrAuthenticationRequired},
		{"zero user", &Principal{Role: model.RoleAdmin}, PlaceOrder, ErrAuthenticationRequired},
		{"customer orders", customer, PlaceOrder, nil},
		{"vendor cannot order", vendor, PlaceOrder, ErrForbidden},
		{"admin cannot order", admin, PlaceOrder, ErrForbidden},
		{"admin uploads slips", admin, UploadPaymentSlip, nil},
		{"customer cannot fulfill", customer, FulfillOrders, ErrForbidden},
		{"vendor fulfills", vendor, FulfillOrders, nil},
		{"vendor cannot verify", vendor, VerifyPayments, ErrForbidden},
		{"admin verifies", admin, VerifyPayments, nil},
		{"unknown role", unknown, ViewOwnOrders, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.perm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCanActOn(t *testing.T) {
	vendor := &Principal{UserID: 2, Role: model.RoleVendor}
	admin := &Principal{UserID: 3, Role: model.RoleAdmin}
	var anon *Principal

	assert.True(t, vendor.CanActOn(2))
	assert.False(t, vendor.CanActOn(9))
	assert.True(t, admin.CanActOn(9))
	assert.False(t, anon.CanActOn(2))
}

func TestPermissionHas(t *testing.T) {
	assert.True(t, Permissions(model.RoleAdmin).Has(ManageUsers|VerifyPayments))
	assert.False(t, Permissions(model.RoleVendor).Has(ManageProducts|ManageUsers))
	assert.False(t, Permissions(model.RoleCustomer).Has(0))
}
