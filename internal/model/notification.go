package model

import "time"

const (
	NotificationOrderPlaced     = "order_placed"
	NotificationItemStatus      = "item_status"
	NotificationPaymentVerified = "payment_verified"
	NotificationPaymentRejected = "payment_rejected"
)

type Notification struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	UserID      uint64     `gorm:"column:user_id;index;not null"`
	Type        string     `gorm:"column:type;size:64;not null"`
	Title       string     `gorm:"column:title;size:255"`
	Body        string     `gorm:"column:body;type:text"`
	OrderID     *uint64    `gorm:"column:order_id;index"`
	OrderItemID *uint64    `gorm:"column:order_item_id"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
