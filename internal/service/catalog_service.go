package service

import (
	"context"

	"github.com/shinyyama/village-market/internal/db"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/repository"
)

const (
	featuredShopLimit    = 6
	latestProductDefault = 8
	latestProductMax     = 10
)

// ShopPage is a visible shop with its visible products.
type ShopPage struct {
	Shop     *model.Shop
	Products []model.Product
}

type CatalogService interface {
	FeaturedShops(ctx context.Context) ([]model.Shop, error)
	ListShops(ctx context.Context) ([]model.Shop, error)
	ShopBySlug(ctx context.Context, slug string) (*ShopPage, error)
	LatestProducts(ctx context.Context, limit int) ([]model.Product, error)
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*model.Product, error)
}

type catalogService struct {
	shops    repository.ShopRepository
	products repository.ProductRepository
	retry    db.RetryPolicy
}

func NewCatalogService(shops repository.ShopRepository, products repository.ProductRepository, retry db.RetryPolicy) CatalogService {
	return &catalogService{shops: shops, products: products, retry: retry}
}

func (s *catalogService) FeaturedShops(ctx context.Context) ([]model.Shop, error) {
	var list []model.Shop
	err := db.Retry(ctx, s.retry, func(ctx context.Context) (err error) {
		list, err = s.shops.ListVisible(ctx, true, featuredShopLimit)
		return err
	})
	return list, err
}

func (s *catalogService) ListShops(ctx context.Context) ([]model.Shop, error) {
	var list []model.Shop
	err := db.Retry(ctx, s.retry, func(ctx context.Context) (err error) {
		list, err = s.shops.ListVisible(ctx, false, 0)
		return err
	})
	return list, err
}

func (s *catalogService) ShopBySlug(ctx context.Context, slug string) (*ShopPage, error) {
	var page ShopPage
	err := db.Retry(ctx, s.retry, func(ctx context.Context) error {
		shop, err := s.shops.FindVisibleBySlug(ctx, slug)
		if err != nil {
			return err
		}
		products, err := s.products.ListVisible(ctx, repository.ProductFilter{ShopID: shop.ID})
		if err != nil {
			return err
		}
		page = ShopPage{Shop: shop, Products: products}
		return nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (s *catalogService) LatestProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = latestProductDefault
	}
	if limit > latestProductMax {
		limit = latestProductMax
	}
	var list []model.Product
	err := db.Retry(ctx, s.retry, func(ctx context.Context) (err error) {
		list, err = s.products.ListVisible(ctx, repository.ProductFilter{Limit: limit})
		return err
	})
	return list, err
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	var list []model.Product
	err := db.Retry(ctx, s.retry, func(ctx context.Context) (err error) {
		list, err = s.products.ListVisible(ctx, repository.ProductFilter{Category: category})
		return err
	})
	return list, err
}

func (s *catalogService) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p *model.Product
	err := db.Retry(ctx, s.retry, func(ctx context.Context) (err error) {
		p, err = s.products.FindVisibleBySlug(ctx, slug)
		return err
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
