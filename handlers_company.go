package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

func getCompanyHandler(c *gin.Context) {
	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	c.JSON(http.StatusOK, company)
}

func updateCompanyHandler(c *gin.Context) {
	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	var req struct {
		Name              string `json:"name"`
		Street            string `json:"street"`
		ZipCode           string `json:"zipCode"`
		City              string `json:"city"`
		Country           string `json:"country"`
		Email             string `json:"email"`
		Phone             string `json:"phone"`
		TaxNumber         string `json:"taxNumber"`
		VatID             string `json:"vatId"`
		BankName          string `json:"bankName"`
		IBAN              string `json:"iban"`
		BIC               string `json:"bic"`
		DefaultVatRate    *int   `json:"defaultVatRate"`
		OfferValidityDays *int   `json:"offerValidityDays"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Name != "" {
		company.Name = strings.TrimSpace(req.Name)
	}
	company.Street = req.Street
	company.ZipCode = req.ZipCode
	company.City = req.City
	if req.Country != "" {
		company.Country = req.Country
	}
	company.Email = strings.TrimSpace(req.Email)
	company.Phone = strings.TrimSpace(req.Phone)
	company.TaxNumber = strings.TrimSpace(req.TaxNumber)
	company.VatID = strings.TrimSpace(req.VatID)
	company.BankName = strings.TrimSpace(req.BankName)
	company.IBAN = strings.ToUpper(strings.ReplaceAll(req.IBAN, " ", ""))
	company.BIC = strings.ToUpper(strings.TrimSpace(req.BIC))
	if req.DefaultVatRate != nil {
		if *req.DefaultVatRate < 0 || *req.DefaultVatRate > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültiger Steuersatz"})
			return
		}
		company.DefaultVatRate = *req.DefaultVatRate
	}
	if req.OfferValidityDays != nil && *req.OfferValidityDays > 0 {
		company.OfferValidityDays = *req.OfferValidityDays
	}
	if err := db.Save(&company).Error; err != nil {
		respondServerError(c, err, "company update failed")
		return
	}
	c.JSON(http.StatusOK, company)
}

func uploadCompanyLogoHandler(c *gin.Context) {
	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datei fehlt"})
		return
	}
	logoPath, thumbPath, err := saveImageWithThumb(c, file, "company")
	if err != nil {
		respondValidation(c, err)
		return
	}
	company.LogoPath = logoPath
	company.LogoThumbPath = thumbPath
	if err := db.Save(&company).Error; err != nil {
		respondServerError(c, err, "company logo save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logoPath": logoPath, "thumbPath": thumbPath})
}
