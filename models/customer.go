package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a business customer (company or private person).
type Customer struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CompanyName string     `gorm:"size:255"`
	FirstName   string     `gorm:"size:128"`
	LastName    string     `gorm:"size:128;not null"`
	Email       string     `gorm:"size:255"`
	Phone       string     `gorm:"size:64"`
	Street      string     `gorm:"size:255"`
	ZipCode     string     `gorm:"size:16"`
	City        string     `gorm:"size:128"`
	Country     string     `gorm:"size:128;default:Deutschland"`
	VatID       string     `gorm:"size:32"` // USt-IdNr.
	Notes       string     `gorm:"size:2048"`
}
