package repository

import (
	"context"

	"github.com/shinyyama/village-market/internal/model"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	FindByID(ctx context.Context, id uint64) (*model.Shop, error)
	FindVisibleBySlug(ctx context.Context, slug string) (*model.Shop, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Shop, error)
	ListVisible(ctx context.Context, withStockOnly bool, limit int) ([]model.Shop, error)
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	Update(ctx context.Context, s *model.Shop) error
	Delete(ctx context.Context, id uint64) error
	CountOrderItems(ctx context.Context, shopID uint64) (int64, error)
	WithTx(tx *gorm.DB) ShopRepository
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// visibleShops restricts to active shops whose owner is active.
func visibleShops(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN users AS owners ON owners.id = shops.owner_id").
		Where("shops.is_active = ? AND owners.is_active = ?", true, true)
}

func (r *shopRepository) Create(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Omit("Owner", "Products").Create(s).Error
}

func (r *shopRepository) FindByID(ctx context.Context, id uint64) (*model.Shop, error) {
	var s model.Shop
	if err := r.db.WithContext(ctx).Preload("Owner").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopRepository) FindVisibleBySlug(ctx context.Context, slug string) (*model.Shop, error) {
	var s model.Shop
	if err := r.db.WithContext(ctx).
		Scopes(visibleShops).
		Preload("Owner").
		Where("shops.slug = ?", slug).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Shop, error) {
	var list []model.Shop
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListVisible returns storefront-visible shops, newest first. withStockOnly
// additionally requires at least one available product in stock. limit <= 0
// means no limit.
func (r *shopRepository) ListVisible(ctx context.Context, withStockOnly bool, limit int) ([]model.Shop, error) {
	var list []model.Shop
	q := r.db.WithContext(ctx).Scopes(visibleShops).Preload("Owner")
	if withStockOnly {
		q = q.Where("EXISTS (SELECT 1 FROM products p WHERE p.shop_id = shops.id AND p.is_available = ? AND p.stock > 0)", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("shops.created_at DESC, shops.id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *shopRepository) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

func (r *shopRepository) Update(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Omit("Owner", "Products").Save(s).Error
}

// Delete removes the shop with its products and their images.
func (r *shopRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []uint64
		if err := tx.Model(&model.Product{}).Where("shop_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&model.ProductImage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("shop_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Shop{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *shopRepository) CountOrderItems(ctx context.Context, shopID uint64) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("shop_id = ?", shopID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *shopRepository) WithTx(tx *gorm.DB) ShopRepository {
	return &shopRepository{db: tx}
}
