package model

import "time"

type SlipStatus string

const (
	SlipStatusPending  SlipStatus = "PENDING"
	SlipStatusVerified SlipStatus = "VERIFIED"
	SlipStatusRejected SlipStatus = "REJECTED"
)

// PaymentSlip is at most one per order. That is enforced by the service, the
// order_id index is not unique.
type PaymentSlip struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	OrderID    uint64     `gorm:"column:order_id;not null;index"`
	Order      *Order     `gorm:"foreignKey:OrderID"`
	ImageURL   string     `gorm:"column:image_url;size:512;not null"`
	Status     SlipStatus `gorm:"size:16;not null;index"`
	Notes      *string    `gorm:"type:text"`
	VerifiedBy *uint64    `gorm:"column:verified_by"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (PaymentSlip) TableName() string {
	return "payment_slips"
}
