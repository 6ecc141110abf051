package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	ShopID      uint64          `gorm:"column:shop_id;not null;index"`
	Shop        *Shop           `gorm:"foreignKey:ShopID"`
	Name        string          `gorm:"size:120;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"`
	Category    *string         `gorm:"size:64;index"`
	IsAvailable bool            `gorm:"column:is_available;not null"`
	Slug        string          `gorm:"size:191;not null;uniqueIndex:uk_products_slug"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}
