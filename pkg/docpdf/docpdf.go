// Package docpdf renders offers, invoices and delivery notes as A4 PDF
// documents with a German layout.
package docpdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"kmube/models"
)

var kindTitles = map[string]string{
	models.DocKindOffer:        "Angebot",
	models.DocKindInvoice:      "Rechnung",
	models.DocKindDeliveryNote: "Lieferschein",
}

// Render produces the PDF bytes for the given document. Delivery notes omit
// prices and totals. footer is an optional free-text block printed below the
// totals (payment terms etc.).
func Render(offer *models.Offer, company *models.Company, footer string) ([]byte, error) {
	title, ok := kindTitles[offer.Kind]
	if !ok {
		return nil, fmt.Errorf("docpdf: unknown document kind %q", offer.Kind)
	}
	withPrices := offer.Kind != models.DocKindDeliveryNote

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252, covers German umlauts
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// sender line + recipient block
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 4, tr(fmt.Sprintf("%s · %s · %s %s", company.Name, company.Street, company.ZipCode, company.City)), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	recipient := offer.Customer.CompanyName
	if recipient == "" {
		recipient = fmt.Sprintf("%s %s", offer.Customer.FirstName, offer.Customer.LastName)
	}
	for _, line := range []string{recipient, offer.Customer.Street, fmt.Sprintf("%s %s", offer.Customer.ZipCode, offer.Customer.City)} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}

	// title and meta
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s %s", title, offer.Number)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr("Datum: "+formatDate(offer.IssuedAt)), "", 1, "L", false, 0, "")
	if offer.Kind == models.DocKindOffer && offer.ValidUntil != nil {
		pdf.CellFormat(0, 5, tr("Gültig bis: "+formatDate(*offer.ValidUntil)), "", 1, "L", false, 0, "")
	}
	if offer.Customer.VatID != "" {
		pdf.CellFormat(0, 5, tr("USt-IdNr. Kunde: "+offer.Customer.VatID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	renderItems(pdf, tr, offer, withPrices)

	if withPrices {
		renderTotals(pdf, tr, offer)
	}

	if footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4.5, tr(footer), "", "L", false)
	}

	renderCompanyFooter(pdf, tr, company)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("docpdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

func renderItems(pdf *fpdf.Fpdf, tr func(string) string, offer *models.Offer, withPrices bool) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	if withPrices {
		pdf.CellFormat(12, 6, tr("Pos."), "B", 0, "L", true, 0, "")
		pdf.CellFormat(25, 6, tr("Art.-Nr."), "B", 0, "L", true, 0, "")
		pdf.CellFormat(63, 6, tr("Bezeichnung"), "B", 0, "L", true, 0, "")
		pdf.CellFormat(15, 6, tr("Menge"), "B", 0, "R", true, 0, "")
		pdf.CellFormat(25, 6, tr("Einzelpreis"), "B", 0, "R", true, 0, "")
		pdf.CellFormat(12, 6, tr("USt."), "B", 0, "R", true, 0, "")
		pdf.CellFormat(18, 6, tr("Gesamt"), "B", 1, "R", true, 0, "")
	} else {
		pdf.CellFormat(12, 6, tr("Pos."), "B", 0, "L", true, 0, "")
		pdf.CellFormat(30, 6, tr("Art.-Nr."), "B", 0, "L", true, 0, "")
		pdf.CellFormat(108, 6, tr("Bezeichnung"), "B", 0, "L", true, 0, "")
		pdf.CellFormat(20, 6, tr("Menge"), "B", 1, "R", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	for idx, it := range offer.Items {
		if withPrices {
			pdf.CellFormat(12, 6, fmt.Sprintf("%d", idx+1), "", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, tr(it.SKU), "", 0, "L", false, 0, "")
			pdf.CellFormat(63, 6, tr(it.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, tr(formatEUR(it.UnitPriceCents)), "", 0, "R", false, 0, "")
			pdf.CellFormat(12, 6, fmt.Sprintf("%d%%", it.VatRate), "", 0, "R", false, 0, "")
			pdf.CellFormat(18, 6, tr(formatEUR(it.NetCents())), "", 1, "R", false, 0, "")
		} else {
			pdf.CellFormat(12, 6, fmt.Sprintf("%d", idx+1), "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, tr(it.SKU), "", 0, "L", false, 0, "")
			pdf.CellFormat(108, 6, tr(it.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 1, "R", false, 0, "")
		}
	}
}

func renderTotals(pdf *fpdf.Fpdf, tr func(string) string, offer *models.Offer) {
	net, vat, gross := offer.Totals()
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(22, 6, tr("Netto"), "", 0, "R", false, 0, "")
	pdf.CellFormat(18, 6, tr(formatEUR(net)), "", 1, "R", false, 0, "")
	pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(22, 6, tr("USt."), "", 0, "R", false, 0, "")
	pdf.CellFormat(18, 6, tr(formatEUR(vat)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(22, 7, tr("Gesamt"), "T", 0, "R", false, 0, "")
	pdf.CellFormat(18, 7, tr(formatEUR(gross)), "T", 1, "R", false, 0, "")
}

func renderCompanyFooter(pdf *fpdf.Fpdf, tr func(string) string, company *models.Company) {
	pdf.SetY(-32)
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	left := fmt.Sprintf("%s · %s · %s %s", company.Name, company.Street, company.ZipCode, company.City)
	mid := fmt.Sprintf("Steuernummer: %s · USt-IdNr.: %s", company.TaxNumber, company.VatID)
	right := fmt.Sprintf("%s · IBAN %s · BIC %s", company.BankName, company.IBAN, company.BIC)
	pdf.CellFormat(0, 4, tr(left), "T", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, tr(mid), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, tr(right), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// formatEUR renders cents as a German currency string (1.234,56 €).
func formatEUR(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	euros := cents / 100
	rest := cents % 100
	s := fmt.Sprintf("%d", euros)
	// thousands separator
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	out := fmt.Sprintf("%s,%02d €", s, rest)
	if neg {
		return "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
