package models

import "time"

// Known system setting keys. PATCH /api/settings rejects anything else.
const (
	SettingInvoiceFooter   = "invoice_footer"
	SettingOfferNumberNext = "offer_number_next"
	SettingCurrency        = "currency"
	SettingDateFormat      = "date_format"
	SettingPaymentTermDays = "payment_term_days"
)

// SystemSetting is a single key/value configuration row.
type SystemSetting struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Key       string `gorm:"size:64;uniqueIndex;not null"`
	Value     string `gorm:"size:1024"`
}
