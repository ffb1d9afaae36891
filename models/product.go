package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a sellable article. Prices are net amounts in cents, the VAT
// rate is a percentage (19, 7, 0).
type Product struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	SKU         string     `gorm:"size:64;not null;uniqueIndex"`
	Name        string     `gorm:"size:255;not null"`
	Description string     `gorm:"size:2048"`
	PriceCents  int64      `gorm:"not null"`
	VatRate     int        `gorm:"not null;default:19"`
	Stock       int        `gorm:"not null;default:0"`
	CategoryID  *uint      `gorm:"index"`
	Category    *Category  `gorm:"foreignKey:CategoryID"`
	ImagePath   string     `gorm:"size:512"`
	ThumbPath   string     `gorm:"size:512"`
}
