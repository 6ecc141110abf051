package repository

import (
	"testing"

	"github.com/shinyyama/village-market/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVisibleShops(t *testing.T) {
	f := newFixture(t)
	vendor := f.user(t, model.RoleVendor, true)
	stocked := f.shop(t, vendor, "stocked", true)
	empty := f.shop(t, vendor, "empty", true)
	f.shop(t, vendor, "closed", false)
	f.product(t, stocked, "p1", 2, true)
	f.product(t, empty, "p2", 0, true)

	repo := NewShopRepository(f.db)

	featured, err := repo.ListVisible(f.ctx, true, 6)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "stocked", featured[0].Slug)

	all, err := repo.ListVisible(f.ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestShopDeleteCascadesProducts(t *testing.T) {
	f := newFixture(t)
	shop := f.shop(t, f.user(t, model.RoleVendor, true), "s", true)
	p := f.product(t, shop, "p", 1, true)
	require.NoError(t, f.db.Create(&model.ProductImage{ProductID: p.ID, ImageURL: "x"}).Error)

	repo := NewShopRepository(f.db)
	require.NoError(t, repo.Delete(f.ctx, shop.ID))

	var n int64
	f.db.Model(&model.Product{}).Count(&n)
	assert.Zero(t, n)
	f.db.Model(&model.ProductImage{}).Count(&n)
	assert.Zero(t, n)

	assert.True(t, IsNotFound(repo.Delete(f.ctx, shop.ID)))
}
