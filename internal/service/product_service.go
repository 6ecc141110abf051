package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shinyyama/village-market/internal/slug"
	"github.com/shopspring/decimal"
)

const maxProductImages = 8

type ProductInput struct {
	ShopID      uint64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Images      []string
	Available   *bool
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Images      []string
	Available   *bool
}

type ProductService interface {
	Create(ctx context.Context, p *authz.Principal, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, p *authz.Principal, id uint64, patch ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, p *authz.Principal, id uint64) error
}

type productService struct {
	shops    repository.ShopRepository
	products repository.ProductRepository
}

func NewProductService(shops repository.ShopRepository, products repository.ProductRepository) ProductService {
	return &productService{shops: shops, products: products}
}

func (s *productService) uniqueSlug(ctx context.Context, name, category, current string) (string, error) {
	base := slug.ProductSlug(name, category)
	existing, err := s.products.SlugsWithPrefix(ctx, base)
	if err != nil {
		return "", err
	}
	taken := existing[:0]
	for _, e := range existing {
		if e != current {
			taken = append(taken, e)
		}
	}
	return slug.Unique(base, taken), nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return invalid("price", "at most 2 decimal places")
	}
	return nil
}

func validateImages(images []string) error {
	if len(images) > maxProductImages {
		return invalid("images", fmt.Sprintf("at most %d images", maxProductImages))
	}
	for _, u := range images {
		if strings.TrimSpace(u) == "" || strings.HasPrefix(u, "data:") {
			return invalid("images", "must be URLs")
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, p *authz.Principal, in ProductInput) (*model.Product, error) {
	if err := authz.Authorize(p, authz.ManageProducts); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	switch {
	case in.ShopID == 0:
		return nil, invalid("shopId", "is required")
	case name == "":
		return nil, invalid("name", "is required")
	case in.Stock < 0:
		return nil, invalid("stock", "must not be negative")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := validateImages(in.Images); err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, in.ShopID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.CanActOn(shop.OwnerID) {
		return nil, ErrForbidden
	}
	category := strings.TrimSpace(in.Category)
	sl, err := s.uniqueSlug(ctx, name, category, "")
	if err != nil {
		return nil, err
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	prod := &model.Product{
		ShopID:      shop.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		Category:    optional(category),
		IsAvailable: available,
		Slug:        sl,
	}
	for i, u := range in.Images {
		prod.Images = append(prod.Images, model.ProductImage{ImageURL: u, Position: i})
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, err
	}
	log.Printf("[product] rid=%s stage=create product=%d shop=%d slug=%s", reqctx.RID(ctx), prod.ID, shop.ID, prod.Slug)
	return prod, nil
}

func (s *productService) owned(ctx context.Context, p *authz.Principal, id uint64) (*model.Product, error) {
	if err := authz.Authorize(p, authz.ManageProducts); err != nil {
		return nil, err
	}
	prod, err := s.products.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if prod.Shop == nil || !p.CanActOn(prod.Shop.OwnerID) {
		return nil, ErrForbidden
	}
	return prod, nil
}

// Update sets fields directly. Stock edits are absolute and not coordinated
// with concurrent order placement.
func (s *productService) Update(ctx context.Context, p *authz.Principal, id uint64, patch ProductPatch) (*model.Product, error) {
	prod, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	reslug := false
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		reslug = reslug || name != prod.Name
		prod.Name = name
	}
	if patch.Category != nil {
		c := optional(*patch.Category)
		reslug = reslug || deref(c) != deref(prod.Category)
		prod.Category = c
	}
	if patch.Description != nil {
		prod.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		prod.Price = patch.Price.Round(2)
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, invalid("stock", "must not be negative")
		}
		prod.Stock = *patch.Stock
	}
	if patch.Available != nil {
		prod.IsAvailable = *patch.Available
	}
	if patch.Images != nil {
		if err := validateImages(patch.Images); err != nil {
			return nil, err
		}
	}
	if reslug {
		if prod.Slug, err = s.uniqueSlug(ctx, prod.Name, deref(prod.Category), prod.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.products.Update(ctx, prod, patch.Images); err != nil {
		return nil, err
	}
	return prod, nil
}

func (s *productService) Delete(ctx context.Context, p *authz.Principal, id uint64) error {
	prod, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	n, err := s.products.CountOrderItems(ctx, prod.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: product has been ordered, mark it unavailable instead", ErrConflict)
	}
	if err := s.products.Delete(ctx, prod.ID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
