package models

import (
	"time"

	"gorm.io/gorm"
)

// Document kinds. An Offer row represents any of the three business document
// types; Kind decides numbering prefix and PDF layout.
const (
	DocKindOffer        = "offer"
	DocKindInvoice      = "invoice"
	DocKindDeliveryNote = "delivery_note"
)

// Offer states.
const (
	OfferStatusDraft    = "draft"
	OfferStatusSent     = "sent"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
	OfferStatusPaid     = "paid"
)

// Offer is a business document (Angebot, Rechnung, Lieferschein) with line
// items. Item rows snapshot product data so later product edits do not change
// issued documents.
type Offer struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	Number     string     `gorm:"size:32;not null;uniqueIndex"`
	Kind       string     `gorm:"size:16;not null;default:offer;index"`
	Status     string     `gorm:"size:16;not null;default:draft"`
	CustomerID uint       `gorm:"index;not null"`
	Customer   Customer   `gorm:"foreignKey:CustomerID"`
	IssuedAt   time.Time  `gorm:"not null"`
	ValidUntil *time.Time
	Items      []OfferItem `gorm:"foreignKey:OfferID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	// Converted-from link, set when an invoice or delivery note is derived
	// from an offer.
	SourceID *uint `gorm:"index"`
	Notes    string `gorm:"size:2048"`
}

// OfferItem is one line of an Offer. Unit price and VAT rate are copied from
// the product at creation time.
type OfferItem struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OfferID        uint   `gorm:"index;not null"`
	ProductID      *uint  `gorm:"index"`
	SKU            string `gorm:"size:64"`
	Name           string `gorm:"size:255;not null"`
	Quantity       int    `gorm:"not null"`
	UnitPriceCents int64  `gorm:"not null"`
	VatRate        int    `gorm:"not null"`
}

// NetCents returns the net line total.
func (i OfferItem) NetCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// VatCents returns the VAT share of the line, rounded half up.
func (i OfferItem) VatCents() int64 {
	return (i.NetCents()*int64(i.VatRate) + 50) / 100
}

// Totals sums net, VAT and gross over all items.
func (o Offer) Totals() (net, vat, gross int64) {
	for _, it := range o.Items {
		net += it.NetCents()
		vat += it.VatCents()
	}
	return net, vat, net + vat
}
