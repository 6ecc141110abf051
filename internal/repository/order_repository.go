package repository

import (
	"context"

	"github.com/shinyyama/village-market/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	CustomerID  uint64
	HouseNumber string
	Limit       int
}

type VendorItemFilter struct {
	// OwnerID zero means every shop.
	OwnerID uint64
	Status  model.ItemStatus
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, error)
	FindItem(ctx context.Context, orderID, itemID uint64) (*model.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID uint64, from, to model.ItemStatus, notes *string) error
	UpdateStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error
	ListVendorItems(ctx context.Context, f VendorItemFilter) ([]model.OrderItem, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func withOrderDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Shop").
		Preload("PaymentSlip")
}

// Create inserts the order row only. Items are inserted one by one with CreateItem.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *orderRepository) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Scopes(withOrderDetail).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	var list []model.Order
	q := r.db.WithContext(ctx).Scopes(withOrderDetail)
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.HouseNumber != "" {
		q = q.Where("house_number = ?", f.HouseNumber)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) FindItem(ctx context.Context, orderID, itemID uint64) (*model.OrderItem, error) {
	var item model.OrderItem
	if err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Product").
		Where("id = ? AND order_id = ?", itemID, orderID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemStatus moves an item from one status to another. It fails with
// ErrStaleState if the item is no longer in from.
func (r *orderRepository) UpdateItemStatus(ctx context.Context, itemID uint64, from, to model.ItemStatus, notes *string) error {
	fields := map[string]interface{}{"status": to}
	if notes != nil {
		fields["notes"] = *notes
	}
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ? AND status = ?", itemID, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *orderRepository) ListVendorItems(ctx context.Context, f VendorItemFilter) ([]model.OrderItem, error) {
	var list []model.OrderItem
	q := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Joins("JOIN shops ON shops.id = order_items.shop_id").
		Preload("Order").
		Preload("Order.Customer").
		Preload("Product").
		Preload("Shop")
	if f.OwnerID != 0 {
		q = q.Where("shops.owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("order_items.status = ?", f.Status)
	}
	if err := q.Order("order_items.created_at DESC, order_items.id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}
