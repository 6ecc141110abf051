package model

import "time"

type Shop struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerID     uint64    `gorm:"column:owner_id;not null;index"`
	Owner       *User     `gorm:"foreignKey:OwnerID"`
	Name        string    `gorm:"size:120;not null"`
	Description string    `gorm:"type:text"`
	HouseNumber string    `gorm:"column:house_number;size:32;not null"`
	LogoURL     *string   `gorm:"column:logo_url;size:512"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	Slug        string    `gorm:"size:191;not null;uniqueIndex:uk_shops_slug"`
	Products    []Product `gorm:"foreignKey:ShopID"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Shop) TableName() string {
	return "shops"
}
