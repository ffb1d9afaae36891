package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kmube/models"
	"kmube/pkg/docpdf"
)

// pdfHandler renders an offer/invoice/delivery-note PDF. docType overrides
// the stored kind so an offer can be previewed as an invoice before
// conversion.
func pdfHandler(c *gin.Context) {
	var req struct {
		OfferID uint   `json:"offerId" binding:"required"`
		DocType string `json:"docType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	var offer models.Offer
	if err := db.Preload("Customer").Preload("Items").First(&offer, req.OfferID).Error; err != nil {
		respondNotFound(c)
		return
	}
	if req.DocType != "" {
		offer.Kind = req.DocType
	}
	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	footer := ""
	if offer.Kind == models.DocKindInvoice {
		footer = settingValue(models.SettingInvoiceFooter, "")
	}
	data, err := docpdf.Render(&offer, &company, footer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültiger Dokumenttyp"})
		return
	}
	fileName := fmt.Sprintf("%s.pdf", offer.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}
