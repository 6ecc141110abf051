package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusConfirmed        OrderStatus = "CONFIRMED"
	OrderStatusPreparing        OrderStatus = "PREPARING"
	OrderStatusReadyForDelivery OrderStatus = "READY_FOR_DELIVERY"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

type Order struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	CustomerID   uint64          `gorm:"column:customer_id;not null;index"`
	Customer     *User           `gorm:"foreignKey:CustomerID"`
	HouseNumber  string          `gorm:"column:house_number;size:32;not null;index"`
	DeliveryTime *time.Time      `gorm:"column:delivery_time"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null"`
	Notes        *string         `gorm:"type:text"`
	Status       OrderStatus     `gorm:"size:32;not null;index"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID"`
	PaymentSlip  *PaymentSlip    `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
