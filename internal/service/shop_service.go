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
)

type ShopInput struct {
	Name        string
	Description string
	HouseNumber string
	LogoURL     string
}

type ShopPatch struct {
	Name        *string
	Description *string
	HouseNumber *string
	LogoURL     *string
	IsActive    *bool
}

type ShopService interface {
	Create(ctx context.Context, p *authz.Principal, in ShopInput) (*model.Shop, error)
	Update(ctx context.Context, p *authz.Principal, id uint64, patch ShopPatch) (*model.Shop, error)
	Delete(ctx context.Context, p *authz.Principal, id uint64) error
	ListMine(ctx context.Context, p *authz.Principal) ([]model.Shop, error)
}

type shopService struct {
	shops    repository.ShopRepository
	products repository.ProductRepository
}

func NewShopService(shops repository.ShopRepository, products repository.ProductRepository) ShopService {
	return &shopService{shops: shops, products: products}
}

func (s *shopService) uniqueSlug(ctx context.Context, name, house, current string) (string, error) {
	base := slug.ShopSlug(name, house)
	existing, err := s.shops.SlugsWithPrefix(ctx, base)
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

func (s *shopService) Create(ctx context.Context, p *authz.Principal, in ShopInput) (*model.Shop, error) {
	if err := authz.Authorize(p, authz.ManageShops); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	house := strings.TrimSpace(in.HouseNumber)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if house == "" {
		return nil, invalid("houseNumber", "is required")
	}
	sl, err := s.uniqueSlug(ctx, name, house, "")
	if err != nil {
		return nil, err
	}
	shop := &model.Shop{
		OwnerID:     p.UserID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		HouseNumber: house,
		LogoURL:     optional(in.LogoURL),
		IsActive:    true,
		Slug:        sl,
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, err
	}
	log.Printf("[shop] rid=%s stage=create shop=%d owner=%d slug=%s", reqctx.RID(ctx), shop.ID, shop.OwnerID, shop.Slug)
	return shop, nil
}

// owned loads the shop and checks the caller may mutate it.
func (s *shopService) owned(ctx context.Context, p *authz.Principal, id uint64) (*model.Shop, error) {
	if err := authz.Authorize(p, authz.ManageShops); err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.CanActOn(shop.OwnerID) {
		return nil, ErrForbidden
	}
	return shop, nil
}

func (s *shopService) Update(ctx context.Context, p *authz.Principal, id uint64, patch ShopPatch) (*model.Shop, error) {
	shop, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	renamed := false
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		renamed = renamed || name != shop.Name
		shop.Name = name
	}
	if patch.HouseNumber != nil {
		house := strings.TrimSpace(*patch.HouseNumber)
		if house == "" {
			return nil, invalid("houseNumber", "is required")
		}
		renamed = renamed || house != shop.HouseNumber
		shop.HouseNumber = house
	}
	if patch.Description != nil {
		shop.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.LogoURL != nil {
		shop.LogoURL = optional(*patch.LogoURL)
	}
	if patch.IsActive != nil {
		shop.IsActive = *patch.IsActive
	}
	if renamed {
		if shop.Slug, err = s.uniqueSlug(ctx, shop.Name, shop.HouseNumber, shop.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// Delete refuses while any order item references the shop.
func (s *shopService) Delete(ctx context.Context, p *authz.Principal, id uint64) error {
	shop, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	n, err := s.shops.CountOrderItems(ctx, shop.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: shop has %d ordered items, deactivate it instead", ErrConflict, n)
	}
	if err := s.shops.Delete(ctx, shop.ID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	log.Printf("[shop] rid=%s stage=delete shop=%d by=%d", reqctx.RID(ctx), shop.ID, p.UserID)
	return nil
}

// ListMine returns the caller's shops with every product, including hidden ones.
func (s *shopService) ListMine(ctx context.Context, p *authz.Principal) ([]model.Shop, error) {
	if err := authz.Authorize(p, authz.ManageShops); err != nil {
		return nil, err
	}
	shops, err := s.shops.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	for i := range shops {
		products, err := s.products.ListByShop(ctx, shops[i].ID)
		if err != nil {
			return nil, err
		}
		shops[i].Products = products
	}
	return shops, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
