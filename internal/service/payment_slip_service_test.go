package service

import (
	"testing"

	"github.com/shinyyama/village-market/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPaymentSlip(t *testing.T) {
	e := newEnv(t)
	customer := e.user(model.RoleCustomer, "1")
	stranger := e.user(model.RoleCustomer, "2")
	vendor := e.user(model.RoleVendor, "")
	o := e.placeOrder(customer, e.product(e.shop(vendor), 3, "4.00"))
	svc := e.slipService(nil)

	_, err := svc.Upload(e.ctx, principalOf(stranger), o.ID, "https://x/slip.jpg", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Upload(e.ctx, principalOf(vendor), o.ID, "https://x/slip.jpg", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Upload(e.ctx, principalOf(customer), 999, "https://x/slip.jpg", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Upload(e.ctx, principalOf(customer), o.ID, " ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	slip, err := svc.Upload(e.ctx, principalOf(customer), o.ID, "https://x/slip.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, model.SlipStatusPending, slip.Status)

	_, err = svc.Upload(e.ctx, principalOf(customer), o.ID, "https://x/other.jpg", nil)
	assert.ErrorIs(t, err, ErrDuplicatePaymentSlip)

	got, err := svc.GetByOrder(e.ctx, principalOf(customer), o.ID)
	require.NoError(t, err)
	assert.Equal(t, slip.ID, got.ID)
	assert.Equal(t, "https://x/slip.jpg", got.ImageURL)
	assert.Equal(t, int64(1), e.count(&model.PaymentSlip{}))
}

func TestVerifyPaymentSlipForcesConfirmed(t *testing.T) {
	e := newEnv(t)
	customer := e.user(model.RoleCustomer, "1")
	vendor := e.user(model.RoleVendor, "")
	admin := e.user(model.RoleAdmin, "")
	o := e.placeOrder(customer, e.product(e.shop(vendor), 3, "4.00"))
	require.NoError(t, e.orders.UpdateStatus(e.ctx, o.ID, model.OrderStatusPreparing))
	svc := e.slipService(nil)

	slip, err := svc.Upload(e.ctx, principalOf(customer), o.ID, "https://x/slip.jpg", nil)
	require.NoError(t, err)

	_, err = svc.Verify(e.ctx, principalOf(vendor), slip.ID, model.SlipStatusVerified, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Verify(e.ctx, principalOf(admin), slip.ID, model.SlipStatusPending, nil)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Verify(e.ctx, principalOf(admin), slip.ID, model.SlipStatusVerified, nil)
	require.NoError(t, err)
	assert.Equal(t, model.SlipStatusVerified, got.Status)
	require.NotNil(t, got.VerifiedBy)
	assert.Equal(t, admin.ID, *got.VerifiedBy)
	require.NotNil(t, got.VerifiedAt)

	order, err := e.orders.FindByID(e.ctx, o.ID)
	require.NoError(t, err)
	// regresses PREPARING to CONFIRMED; kept as observed
	assert.Equal(t, model.OrderStatusConfirmed, order.Status)

	notes, err := e.notes.ListByUser(e.ctx, customer.ID, false, 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, model.NotificationPaymentVerified, notes[0].Type)
}

func TestVerifyNonPendingSlipChangesNothing(t *testing.T) {
	e := newEnv(t)
	customer := e.user(model.RoleCustomer, "1")
	admin := e.user(model.RoleAdmin, "")
	o := e.placeOrder(customer, e.product(e.shop(e.user(model.RoleVendor, "")), 3, "4.00"))
	svc := e.slipService(nil)

	slip, err := svc.Upload(e.ctx, principalOf(customer), o.ID, "https://x/slip.jpg", nil)
	require.NoError(t, err)
	_, err = svc.Verify(e.ctx, principalOf(admin), slip.ID, model.SlipStatusRejected, nil)
	require.NoError(t, err)

	_, err = svc.Verify(e.ctx, principalOf(admin), slip.ID, model.SlipStatusVerified, nil)
	assert.ErrorIs(t, err, ErrSlipNotPending)

	got, err := e.slips.FindByID(e.ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlipStatusRejected, got.Status)
	order, err := e.orders.FindByID(e.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	_, err = svc.Verify(e.ctx, principalOf(admin), 999, model.SlipStatusVerified, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadPaymentSlipImage(t *testing.T) {
	e := newEnv(t)
	customer := e.user(model.RoleCustomer, "1")
	admin := e.user(model.RoleAdmin, "")
	o := e.placeOrder(customer, e.product(e.shop(e.user(model.RoleVendor, "")), 3, "4.00"))
	store := &fakeUploader{}
	svc := e.slipService(NewUploadService(store, 1<<20, 100))

	img := pngFixture(t, 20, 20)

	slip, err := svc.UploadImage(e.ctx, principalOf(customer), o.ID, img, nil)
	require.NoError(t, err)
	require.Len(t, store.paths, 1)
	assert.Equal(t, "https://cdn.test/"+store.paths[0], slip.ImageURL)
	assert.Contains(t, store.paths[0], "slips/")

	_, err = svc.UploadImage(e.ctx, principalOf(customer), o.ID, img, nil)
	assert.ErrorIs(t, err, ErrDuplicatePaymentSlip)
	assert.Len(t, store.paths, 1, "duplicate must be rejected before storing")

	pending, err := svc.List(e.ctx, principalOf(admin), model.SlipStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	_, err = svc.List(e.ctx, principalOf(customer), "")
	assert.ErrorIs(t, err, ErrForbidden)
}
