package repository

import (
	"context"
	"testing"

	"github.com/shinyyama/village-market/internal/dbtest"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	return &fixture{db: dbtest.Open(t), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, role model.Role, active bool) *model.User {
	t.Helper()
	u := &model.User{Name: string(role), Role: role, IsActive: active}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) shop(t *testing.T, owner *model.User, slug string, active bool) *model.Shop {
	t.Helper()
	s := &model.Shop{OwnerID: owner.ID, Name: slug, HouseNumber: "1", Slug: slug, IsActive: active}
	require.NoError(t, f.db.Create(s).Error)
	return s
}

func (f *fixture) product(t *testing.T, shop *model.Shop, slug string, stock int, available bool) *model.Product {
	t.Helper()
	p := &model.Product{
		ShopID:      shop.ID,
		Name:        slug,
		Price:       decimal.RequireFromString("25.00"),
		Stock:       stock,
		IsAvailable: available,
		Slug:        slug,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}
