package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusConfirmed ItemStatus = "CONFIRMED"
	ItemStatusPreparing ItemStatus = "PREPARING"
	ItemStatusReady     ItemStatus = "READY"
	ItemStatusDelivered ItemStatus = "DELIVERED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusConfirmed, ItemStatusPreparing, ItemStatusReady, ItemStatusDelivered, ItemStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves this status.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusDelivered || s == ItemStatusCancelled
}

type OrderItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `gorm:"column:order_id;not null;index"`
	Order     *Order          `gorm:"foreignKey:OrderID"`
	ProductID uint64          `gorm:"column:product_id;not null;index"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	ShopID    uint64          `gorm:"column:shop_id;not null;index"`
	Shop      *Shop           `gorm:"foreignKey:ShopID"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status    ItemStatus      `gorm:"size:32;not null;index"`
	Notes     *string         `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
