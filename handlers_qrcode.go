package main

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"kmube/models"
	"kmube/pkg/epc"
)

// qrcodeHandler returns an EPC payment QR code for an invoice as a PNG data
// URL. The payload carries the company bank account and the document's gross
// total.
func qrcodeHandler(c *gin.Context) {
	offerID, err := atoiID(c.Query("offerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offerId fehlt"})
		return
	}
	var offer models.Offer
	if err := db.Preload("Items").First(&offer, offerID).Error; err != nil {
		respondNotFound(c)
		return
	}
	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	if company.IBAN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keine IBAN in den Firmendaten hinterlegt"})
		return
	}
	_, _, gross := offer.Totals()
	payload, err := epc.Payment{
		Name:        company.Name,
		IBAN:        company.IBAN,
		BIC:         company.BIC,
		AmountCents: gross,
		Remittance:  offer.Number,
	}.Encode()
	if err != nil {
		respondValidation(c, err)
		return
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		respondServerError(c, err, "qr encoding failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataUrl": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}
