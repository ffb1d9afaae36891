package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

type customerRequest struct {
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	ZipCode     string `json:"zipCode"`
	City        string `json:"city"`
	Country     string `json:"country"`
	VatID       string `json:"vatId"`
	Notes       string `json:"notes"`
}

func (r customerRequest) apply(cust *models.Customer) {
	cust.CompanyName = strings.TrimSpace(r.CompanyName)
	cust.FirstName = strings.TrimSpace(r.FirstName)
	cust.LastName = strings.TrimSpace(r.LastName)
	cust.Email = strings.TrimSpace(r.Email)
	cust.Phone = strings.TrimSpace(r.Phone)
	cust.Street = r.Street
	cust.ZipCode = r.ZipCode
	cust.City = r.City
	if r.Country != "" {
		cust.Country = r.Country
	}
	cust.VatID = strings.TrimSpace(r.VatID)
	cust.Notes = r.Notes
}

func listCustomersHandler(c *gin.Context) {
	p := parsePagination(c)
	q := db.Model(&models.Customer{})
	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("company_name ILIKE ? OR last_name ILIKE ? OR city ILIKE ? OR email ILIKE ?", like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServerError(c, err, "customer count failed")
		return
	}
	var items []models.Customer
	if err := q.Order("last_name, company_name").Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		respondServerError(c, err, "customer query failed")
		return
	}
	respondList(c, items, total, p)
}

func getCustomerHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var cust models.Customer
	if err := db.First(&cust, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func createCustomerHandler(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	var cust models.Customer
	req.apply(&cust)
	if err := db.Create(&cust).Error; err != nil {
		respondServerError(c, err, "customer create failed")
		return
	}
	c.JSON(http.StatusOK, cust)
}

func updateCustomerHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var cust models.Customer
	if err := db.First(&cust, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	req.apply(&cust)
	if err := db.Save(&cust).Error; err != nil {
		respondServerError(c, err, "customer update failed")
		return
	}
	c.JSON(http.StatusOK, cust)
}

func deleteCustomerHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var cust models.Customer
	if err := db.First(&cust, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	// refuse when documents reference the customer; soft delete otherwise
	var refs int64
	db.Model(&models.Offer{}).Where("customer_id = ?", id).Count(&refs)
	if refs > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Kunde hat zugeordnete Dokumente"})
		return
	}
	if err := db.Delete(&cust).Error; err != nil {
		respondServerError(c, err, "customer delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kunde gelöscht"})
}
