package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

var numberPrefixes = map[string]string{
	models.DocKindOffer:        "AN",
	models.DocKindInvoice:      "RE",
	models.DocKindDeliveryNote: "LS",
}

var validStatuses = map[string]bool{
	models.OfferStatusDraft:    true,
	models.OfferStatusSent:     true,
	models.OfferStatusAccepted: true,
	models.OfferStatusRejected: true,
	models.OfferStatusPaid:     true,
}

// nextDocumentNumber builds PREFIX-YEAR-SEQ from the per-kind count in the
// current year. The unique index on number catches the (rare) race; callers
// retry once via isUniqueConstraintError.
func nextDocumentNumber(kind string) (string, error) {
	prefix, ok := numberPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	year := clock().Year()
	var count int64
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
	if err := db.Model(&models.Offer{}).Unscoped().
		Where("kind = ? AND created_at >= ?", kind, yearStart).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, count+1), nil
}

type offerItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type offerRequest struct {
	CustomerID uint               `json:"customerId" binding:"required"`
	Kind       string             `json:"kind"`
	Notes      string             `json:"notes"`
	Items      []offerItemRequest `json:"items" binding:"required,min=1"`
}

func listOffersHandler(c *gin.Context) {
	p := parsePagination(c)
	q := db.Model(&models.Offer{})
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if p.Search != "" {
		q = q.Where("number ILIKE ?", "%"+p.Search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServerError(c, err, "offer count failed")
		return
	}
	var items []models.Offer
	if err := q.Preload("Customer").Order("id desc").Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		respondServerError(c, err, "offer query failed")
		return
	}
	respondList(c, items, total, p)
}

func getOfferHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	offer, ok := loadOffer(c, id)
	if !ok {
		return
	}
	net, vat, gross := offer.Totals()
	c.JSON(http.StatusOK, gin.H{
		"offer":      offer,
		"netCents":   net,
		"vatCents":   vat,
		"grossCents": gross,
	})
}

func loadOffer(c *gin.Context, id uint) (*models.Offer, bool) {
	var offer models.Offer
	if err := db.Preload("Customer").Preload("Items").First(&offer, id).Error; err != nil {
		respondNotFound(c)
		return nil, false
	}
	return &offer, true
}

// buildItems snapshots product data into line items so later product edits
// leave issued documents untouched.
func buildItems(reqs []offerItemRequest) ([]models.OfferItem, string) {
	items := make([]models.OfferItem, 0, len(reqs))
	for _, ir := range reqs {
		if ir.Quantity <= 0 {
			return nil, "Menge muss größer als 0 sein"
		}
		var prod models.Product
		if err := db.First(&prod, ir.ProductID).Error; err != nil {
			return nil, fmt.Sprintf("Produkt %d existiert nicht", ir.ProductID)
		}
		pid := prod.ID
		items = append(items, models.OfferItem{
			ProductID:      &pid,
			SKU:            prod.SKU,
			Name:           prod.Name,
			Quantity:       ir.Quantity,
			UnitPriceCents: prod.PriceCents,
			VatRate:        prod.VatRate,
		})
	}
	return items, ""
}

func createOfferHandler(c *gin.Context) {
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = models.DocKindOffer
	}
	if _, ok := numberPrefixes[kind]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültiger Dokumenttyp"})
		return
	}
	var customer models.Customer
	if err := db.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kunde existiert nicht"})
		return
	}
	items, msg := buildItems(req.Items)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var company models.Company
	if err := db.First(&company).Error; err != nil {
		respondServerError(c, err, "company lookup failed")
		return
	}
	offer := models.Offer{
		Kind:       kind,
		Status:     models.OfferStatusDraft,
		CustomerID: customer.ID,
		IssuedAt:   clock(),
		Items:      items,
		Notes:      req.Notes,
	}
	if kind == models.DocKindOffer {
		valid := offer.IssuedAt.AddDate(0, 0, company.OfferValidityDays)
		offer.ValidUntil = &valid
	}
	// one retry on a number collision
	for attempt := 0; attempt < 2; attempt++ {
		number, err := nextDocumentNumber(kind)
		if err != nil {
			respondServerError(c, err, "document numbering failed")
			return
		}
		offer.Number = number
		err = db.Create(&offer).Error
		if err == nil {
			break
		}
		if isUniqueConstraintError(err) && attempt == 0 {
			continue
		}
		respondServerError(c, err, "offer create failed")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func updateOfferHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	offer, ok := loadOffer(c, id)
	if !ok {
		return
	}
	if offer.Status != models.OfferStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Nur Entwürfe können bearbeitet werden"})
		return
	}
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	var customer models.Customer
	if err := db.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kunde existiert nicht"})
		return
	}
	items, msg := buildItems(req.Items)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	// replace items wholesale
	if err := db.Where("offer_id = ?", offer.ID).Delete(&models.OfferItem{}).Error; err != nil {
		respondServerError(c, err, "offer item replace failed")
		return
	}
	offer.CustomerID = customer.ID
	offer.Notes = req.Notes
	offer.Items = items
	if err := db.Save(offer).Error; err != nil {
		respondServerError(c, err, "offer update failed")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func updateOfferStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	offer, ok := loadOffer(c, id)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !validStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültiger Status"})
		return
	}
	// paid only applies to invoices
	if req.Status == models.OfferStatusPaid && offer.Kind != models.DocKindInvoice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nur Rechnungen können als bezahlt markiert werden"})
		return
	}
	if err := db.Model(offer).Update("status", req.Status).Error; err != nil {
		respondServerError(c, err, "offer status update failed")
		return
	}
	offer.Status = req.Status
	c.JSON(http.StatusOK, offer)
}

// convertOfferHandler derives an invoice or delivery note from an offer,
// copying the item snapshot and linking back via SourceID.
func convertOfferHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	offer, ok := loadOffer(c, id)
	if !ok {
		return
	}
	var req struct {
		Target string `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Target != models.DocKindInvoice && req.Target != models.DocKindDeliveryNote {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültiger Zieltyp"})
		return
	}
	if offer.Kind != models.DocKindOffer {
		c.JSON(http.StatusConflict, gin.H{"error": "Nur Angebote können umgewandelt werden"})
		return
	}

	items := make([]models.OfferItem, 0, len(offer.Items))
	for _, it := range offer.Items {
		items = append(items, models.OfferItem{
			ProductID:      it.ProductID,
			SKU:            it.SKU,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			VatRate:        it.VatRate,
		})
	}
	sourceID := offer.ID
	derived := models.Offer{
		Kind:       req.Target,
		Status:     models.OfferStatusDraft,
		CustomerID: offer.CustomerID,
		IssuedAt:   clock(),
		Items:      items,
		SourceID:   &sourceID,
		Notes:      offer.Notes,
	}
	for attempt := 0; attempt < 2; attempt++ {
		number, err := nextDocumentNumber(req.Target)
		if err != nil {
			respondServerError(c, err, "document numbering failed")
			return
		}
		derived.Number = number
		err = db.Create(&derived).Error
		if err == nil {
			break
		}
		if isUniqueConstraintError(err) && attempt == 0 {
			continue
		}
		respondServerError(c, err, "offer conversion failed")
		return
	}
	c.JSON(http.StatusOK, derived)
}

func deleteOfferHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	offer, ok := loadOffer(c, id)
	if !ok {
		return
	}
	if offer.Status != models.OfferStatusDraft && offer.Status != models.OfferStatusRejected {
		c.JSON(http.StatusConflict, gin.H{"error": "Nur Entwürfe und abgelehnte Dokumente können gelöscht werden"})
		return
	}
	if err := db.Delete(offer).Error; err != nil {
		respondServerError(c, err, "offer delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dokument gelöscht"})
}
