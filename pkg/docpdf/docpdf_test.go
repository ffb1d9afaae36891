package docpdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmube/models"
)

func sampleOffer(kind string) *models.Offer {
	valid := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	return &models.Offer{
		Number:     "AN-2026-0001",
		Kind:       kind,
		IssuedAt:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		ValidUntil: &valid,
		Customer: models.Customer{
			CompanyName: "Beispiel AG",
			Street:      "Hauptstraße 1",
			ZipCode:     "10115",
			City:        "Berlin",
		},
		Items: []models.OfferItem{
			{SKU: "P-100", Name: "Bürostuhl", Quantity: 2, UnitPriceCents: 14999, VatRate: 19},
			{SKU: "P-200", Name: "Schreibtisch", Quantity: 1, UnitPriceCents: 39900, VatRate: 19},
		},
	}
}

func sampleCompany() *models.Company {
	return &models.Company{
		Name: "Muster GmbH", Street: "Musterweg 2", ZipCode: "80331", City: "München",
		TaxNumber: "123/456/78901", VatID: "DE123456789",
		BankName: "Musterbank", IBAN: "DE89370400440532013000", BIC: "COBADEFFXXX",
	}
}

func TestRenderKinds(t *testing.T) {
	for _, kind := range []string{models.DocKindOffer, models.DocKindInvoice, models.DocKindDeliveryNote} {
		out, err := Render(sampleOffer(kind), sampleCompany(), "Zahlbar innerhalb von 14 Tagen.")
		require.NoError(t, err, kind)
		require.NotEmpty(t, out, kind)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "missing PDF header for %s", kind)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(sampleOffer("memo"), sampleCompany(), "")
	assert.Error(t, err)
}

func TestFormatEUR(t *testing.T) {
	assert.Equal(t, "0,00 €", formatEUR(0))
	assert.Equal(t, "1,00 €", formatEUR(100))
	assert.Equal(t, "1.234,56 €", formatEUR(123456))
	assert.Equal(t, "1.234.567,89 €", formatEUR(123456789))
	assert.Equal(t, "-12,34 €", formatEUR(-1234))
}
