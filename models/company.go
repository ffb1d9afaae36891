package models

import "time"

// Company holds the owning company's master data. There is exactly one row,
// created by seeding; handlers only read and update it.
type Company struct {
	ID                uint `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Name              string `gorm:"size:255;not null"`
	Street            string `gorm:"size:255"`
	ZipCode           string `gorm:"size:16"`
	City              string `gorm:"size:128"`
	Country           string `gorm:"size:128;default:Deutschland"`
	Email             string `gorm:"size:255"`
	Phone             string `gorm:"size:64"`
	TaxNumber         string `gorm:"size:32"` // Steuernummer
	VatID             string `gorm:"size:32"` // USt-IdNr.
	BankName          string `gorm:"size:128"`
	IBAN              string `gorm:"size:34"`
	BIC               string `gorm:"size:11"`
	LogoPath          string `gorm:"size:512"`
	LogoThumbPath     string `gorm:"size:512"`
	DefaultVatRate    int    `gorm:"not null;default:19"`
	OfferValidityDays int    `gorm:"not null;default:30"`
}
