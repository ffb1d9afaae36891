package main

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

type productRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	VatRate     *int   `json:"vatRate"`
	Stock       *int   `json:"stock"`
	CategoryID  *uint  `json:"categoryId"`
}

func (r productRequest) apply(p *models.Product) {
	p.SKU = strings.TrimSpace(r.SKU)
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.PriceCents = r.PriceCents
	if r.VatRate != nil {
		p.VatRate = *r.VatRate
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	p.CategoryID = r.CategoryID
}

func (r productRequest) validate() (string, bool) {
	if r.PriceCents < 0 {
		return "Preis darf nicht negativ sein", false
	}
	if r.VatRate != nil && (*r.VatRate < 0 || *r.VatRate > 100) {
		return "Ungültiger Steuersatz", false
	}
	return "", true
}

func listProductsHandler(c *gin.Context) {
	p := parsePagination(c)
	q := db.Model(&models.Product{})
	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}
	if catParam := c.Query("category"); catParam != "" {
		catID, err := atoiID(catParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Kategorie"})
			return
		}
		// subtree filter: a category matches its own and all nested products
		ids, err := collectDescendants(catID)
		if err != nil {
			respondServerError(c, err, "category traversal failed")
			return
		}
		q = q.Where("category_id IN ?", ids)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServerError(c, err, "product count failed")
		return
	}
	var items []models.Product
	if err := q.Order("name").Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		respondServerError(c, err, "product query failed")
		return
	}
	respondList(c, items, total, p)
}

func getProductHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var prod models.Product
	if err := db.Preload("Category").First(&prod, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, prod)
}

func createProductHandler(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if msg, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	prod := models.Product{VatRate: 19}
	req.apply(&prod)
	if err := db.Create(&prod).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Artikelnummer bereits vergeben"})
			return
		}
		respondServerError(c, err, "product create failed")
		return
	}
	c.JSON(http.StatusOK, prod)
}

func updateProductHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var prod models.Product
	if err := db.First(&prod, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if msg, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	req.apply(&prod)
	if err := db.Save(&prod).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Artikelnummer bereits vergeben"})
			return
		}
		respondServerError(c, err, "product update failed")
		return
	}
	c.JSON(http.StatusOK, prod)
}

func deleteProductHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var prod models.Product
	if err := db.First(&prod, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	if err := db.Delete(&prod).Error; err != nil {
		respondServerError(c, err, "product delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produkt gelöscht"})
}

// uploadProductImageHandler stores the original and a bounded thumbnail.
func uploadProductImageHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var prod models.Product
	if err := db.First(&prod, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datei fehlt"})
		return
	}
	imagePath, thumbPath, err := saveImageWithThumb(c, file, filepath.Join("products", itoa(prod.ID)))
	if err != nil {
		respondValidation(c, err)
		return
	}
	prod.ImagePath = imagePath
	prod.ThumbPath = thumbPath
	if err := db.Save(&prod).Error; err != nil {
		respondServerError(c, err, "product image save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imagePath": imagePath, "thumbPath": thumbPath})
}
