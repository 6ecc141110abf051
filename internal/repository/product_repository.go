package repository

import (
	"context"

	"github.com/shinyyama/village-market/internal/model"
	"gorm.io/gorm"
)

type ProductFilter struct {
	ShopID   uint64
	Category string
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.Product, error)
	FindVisibleBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListVisible(ctx context.Context, f ProductFilter) ([]model.Product, error)
	ListByShop(ctx context.Context, shopID uint64) ([]model.Product, error)
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	Update(ctx context.Context, p *model.Product, images []string) error
	Delete(ctx context.Context, id uint64) error
	DecrementStock(ctx context.Context, id uint64, qty int) (int64, error)
	CountOrderItems(ctx context.Context, productID uint64) (int64, error)
	WithTx(tx *gorm.DB) ProductRepository
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// visibleProducts restricts to available, in-stock products of active shops
// with active owners.
func visibleProducts(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN shops ON shops.id = products.shop_id").
		Joins("JOIN users AS owners ON owners.id = shops.owner_id").
		Where("products.is_available = ? AND products.stock > 0", true).
		Where("shops.is_active = ? AND owners.is_active = ?", true, true)
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Shop").Create(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Shop.Owner").
		Preload("Images", orderedImages).
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.Product, error) {
	out := make(map[uint64]*model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Shop").
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (r *productRepository) FindVisibleBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).
		Scopes(visibleProducts).
		Preload("Shop").
		Preload("Images", orderedImages).
		Where("products.slug = ?", slug).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListVisible(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	var list []model.Product
	q := r.db.WithContext(ctx).
		Scopes(visibleProducts).
		Preload("Shop").
		Preload("Images", orderedImages)
	if f.ShopID != 0 {
		q = q.Where("products.shop_id = ?", f.ShopID)
	}
	if f.Category != "" {
		q = q.Where("products.category = ?", f.Category)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Order("products.created_at DESC, products.id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListByShop returns every product of the shop regardless of visibility.
func (r *productRepository) ListByShop(ctx context.Context, shopID uint64) ([]model.Product, error) {
	var list []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("shop_id = ?", shopID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepository) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

// Update saves the product row. A non-nil images slice replaces the image list.
func (r *productRepository) Update(ctx context.Context, p *model.Product, images []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Shop", "Images").Save(p).Error; err != nil {
			return err
		}
		if images == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		p.Images = make([]model.ProductImage, 0, len(images))
		for i, u := range images {
			p.Images = append(p.Images, model.ProductImage{ProductID: p.ID, ImageURL: u, Position: i})
		}
		if len(p.Images) == 0 {
			return nil
		}
		return tx.Create(&p.Images).Error
	})
}

func (r *productRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DecrementStock subtracts qty relative to the current row value, guarded so
// stock never goes negative. Zero rows affected means not enough stock.
func (r *productRepository) DecrementStock(ctx context.Context, id uint64, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *productRepository) CountOrderItems(ctx context.Context, productID uint64) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}
