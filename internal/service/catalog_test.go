package service

import (
	"testing"

	"github.com/shinyyama/village-market/internal/db"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopAndProductManagement(t *testing.T) {
	e := newEnv(t)
	vendor := e.user(model.RoleVendor, "")
	other := e.user(model.RoleVendor, "")
	admin := e.user(model.RoleAdmin, "")
	customer := e.user(model.RoleCustomer, "1")
	shops := NewShopService(e.shops, e.products)
	products := NewProductService(e.shops, e.products)

	_, err := shops.Create(e.ctx, principalOf(customer), ShopInput{Name: "Noi", HouseNumber: "5"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = shops.Create(e.ctx, principalOf(vendor), ShopInput{Name: "Noi"})
	assert.ErrorIs(t, err, ErrValidation)

	s1, err := shops.Create(e.ctx, principalOf(vendor), ShopInput{Name: "Noi Kitchen", HouseNumber: "5"})
	require.NoError(t, err)
	assert.Equal(t, "noi-kitchen-house-5", s1.Slug)
	s2, err := shops.Create(e.ctx, principalOf(other), ShopInput{Name: "Noi Kitchen", HouseNumber: "5"})
	require.NoError(t, err)
	assert.Equal(t, "noi-kitchen-house-5-1", s2.Slug)

	name := "Hijack"
	_, err = shops.Update(e.ctx, principalOf(other), s1.ID, ShopPatch{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	renamed, err := shops.Update(e.ctx, principalOf(admin), s1.ID, ShopPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "hijack-house-5", renamed.Slug)

	p1, err := products.Create(e.ctx, principalOf(vendor), ProductInput{
		ShopID: s1.ID, Name: "Rice", Category: "Grains", Price: decimal.RequireFromString("40"), Stock: 3,
		Images: []string{"https://x/a.jpg", "https://x/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "grains-rice", p1.Slug)
	assert.True(t, p1.IsAvailable)
	p2, err := products.Create(e.ctx, principalOf(vendor), ProductInput{
		ShopID: s1.ID, Name: "Rice", Category: "Grains", Price: decimal.RequireFromString("45"), Stock: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "grains-rice-1", p2.Slug)

	_, err = products.Create(e.ctx, principalOf(other), ProductInput{ShopID: s1.ID, Name: "X", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = products.Create(e.ctx, principalOf(vendor), ProductInput{ShopID: s1.ID, Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = products.Create(e.ctx, principalOf(vendor), ProductInput{ShopID: s1.ID, Name: "X", Price: decimal.RequireFromString("1.005")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = products.Create(e.ctx, principalOf(vendor), ProductInput{ShopID: s1.ID, Name: "X", Stock: -1})
	assert.ErrorIs(t, err, ErrValidation)

	stock := 9
	updated, err := products.Update(e.ctx, principalOf(vendor), p1.ID, ProductPatch{Stock: &stock, Images: []string{"https://x/c.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "grains-rice", updated.Slug)
	assert.Equal(t, []string{"https://x/c.jpg"}, updated.ImageURLs())

	mine, err := shops.ListMine(e.ctx, principalOf(vendor))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Products, 2)

	e.placeOrder(customer, p1)
	assert.ErrorIs(t, products.Delete(e.ctx, principalOf(vendor), p1.ID), ErrConflict)
	assert.ErrorIs(t, shops.Delete(e.ctx, principalOf(vendor), s1.ID), ErrConflict)
	require.NoError(t, products.Delete(e.ctx, principalOf(vendor), p2.ID))
	require.NoError(t, shops.Delete(e.ctx, principalOf(other), s2.ID))
	assert.ErrorIs(t, shops.Delete(e.ctx, principalOf(other), s2.ID), ErrNotFound)
}

func TestCatalogVisibility(t *testing.T) {
	e := newEnv(t)
	vendor := e.user(model.RoleVendor, "")
	gone := e.user(model.RoleVendor, "")
	open := e.shop(vendor)
	empty := e.shop(vendor)
	orphan := e.shop(gone)
	visible := e.product(open, 2, "10")
	e.product(empty, 0, "10")
	hiddenByOwner := e.product(orphan, 2, "10")
	require.NoError(t, e.users.UpdateFields(e.ctx, gone.ID, map[string]interface{}{"is_active": false}))

	svc := NewCatalogService(e.shops, e.products, db.RetryPolicy{Attempts: 1})

	featured, err := svc.FeaturedShops(e.ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, open.ID, featured[0].ID)

	all, err := svc.ListShops(e.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := svc.ShopBySlug(e.ctx, open.Slug)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, visible.ID, page.Products[0].ID)

	_, err = svc.ShopBySlug(e.ctx, orphan.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ProductBySlug(e.ctx, hiddenByOwner.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.ProductBySlug(e.ctx, visible.Slug)
	require.NoError(t, err)
	assert.Equal(t, visible.ID, got.ID)

	latest, err := svc.LatestProducts(e.ctx, 50)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestUploadImageRules(t *testing.T) {
	e := newEnv(t)
	vendor := e.user(model.RoleVendor, "")
	customer := e.user(model.RoleCustomer, "1")
	img := pngFixture(t, 300, 150)

	_, err := NewUploadService(nil, 0, 0).UploadImage(e.ctx, principalOf(vendor), UploadKindProduct, img)
	assert.ErrorIs(t, err, ErrStorageDisabled)

	store := &fakeUploader{}
	svc := NewUploadService(store, 1<<20, 100)

	_, err = svc.UploadImage(e.ctx, nil, UploadKindProduct, img)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	_, err = svc.UploadImage(e.ctx, principalOf(customer), UploadKindProduct, img)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UploadImage(e.ctx, principalOf(vendor), "avatars", img)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UploadImage(e.ctx, principalOf(vendor), UploadKindProduct, []byte("nope"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewUploadService(store, 10, 100).UploadImage(e.ctx, principalOf(vendor), UploadKindProduct, img)
	assert.ErrorIs(t, err, ErrValidation)

	url, err := svc.UploadImage(e.ctx, principalOf(vendor), UploadKindProduct, img)
	require.NoError(t, err)
	require.Len(t, store.paths, 1)
	assert.Regexp(t, `^products/[0-9a-f-]{36}\.jpg$`, store.paths[0])
	assert.Equal(t, "https://cdn.test/"+store.paths[0], url)
}
