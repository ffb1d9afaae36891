package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

var knownSettingKeys = map[string]bool{
	models.SettingInvoiceFooter:   true,
	models.SettingOfferNumberNext: true,
	models.SettingCurrency:        true,
	models.SettingDateFormat:      true,
	models.SettingPaymentTermDays: true,
}

func listSettingsHandler(c *gin.Context) {
	var rows []models.SystemSetting
	if err := db.Order("key").Find(&rows).Error; err != nil {
		respondServerError(c, err, "settings query failed")
		return
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	c.JSON(http.StatusOK, out)
}

// updateSettingsHandler upserts the posted keys; unknown keys are rejected
// wholesale before anything is written.
func updateSettingsHandler(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keine Einstellungen übergeben"})
		return
	}
	for key := range req {
		if !knownSettingKeys[key] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannter Schlüssel: " + key})
			return
		}
	}
	for key, value := range req {
		var row models.SystemSetting
		if err := db.Where("key = ?", key).First(&row).Error; err != nil {
			row = models.SystemSetting{Key: key, Value: value}
			if err := db.Create(&row).Error; err != nil {
				respondServerError(c, err, "setting create failed")
				return
			}
			continue
		}
		if err := db.Model(&row).Update("value", value).Error; err != nil {
			respondServerError(c, err, "setting update failed")
			return
		}
	}
	listSettingsHandler(c)
}

// settingValue reads one setting with a fallback.
func settingValue(key, fallback string) string {
	var row models.SystemSetting
	if err := db.Where("key = ?", key).First(&row).Error; err != nil {
		return fallback
	}
	if row.Value == "" {
		return fallback
	}
	return row.Value
}
