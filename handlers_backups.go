package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kmube/models"
)

// backupPayload is the serialized snapshot of all business tables.
type backupPayload struct {
	CreatedAt  string                 `json:"createdAt"`
	Customers  []models.Customer      `json:"customers"`
	Categories []models.Category      `json:"categories"`
	Products   []models.Product       `json:"products"`
	Offers     []models.Offer         `json:"offers"`
	Employees  []models.Employee      `json:"employees"`
	Company    models.Company         `json:"company"`
	Settings   []models.SystemSetting `json:"settings"`
}

func listBackupsHandler(c *gin.Context) {
	var items []models.Backup
	if err := db.Order("created_at desc").Find(&items).Error; err != nil {
		respondServerError(c, err, "backup query failed")
		return
	}
	c.JSON(http.StatusOK, items)
}

func createBackupHandler(c *gin.Context) {
	payload := backupPayload{CreatedAt: clock().Format("2006-01-02T15:04:05Z07:00")}
	if err := db.Unscoped().Find(&payload.Customers).Error; err != nil {
		respondServerError(c, err, "backup export failed")
		return
	}
	db.Find(&payload.Categories)
	db.Unscoped().Find(&payload.Products)
	db.Unscoped().Preload("Items").Find(&payload.Offers)
	db.Unscoped().Find(&payload.Employees)
	db.First(&payload.Company)
	db.Find(&payload.Settings)

	id := uuid.NewString()
	fileName := fmt.Sprintf("backup-%s-%s.json", clock().Format("20060102-150405"), id[:8])
	fullPath := filepath.Join(cfg.BackupDir, fileName)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		respondServerError(c, err, "backup marshal failed")
		return
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		respondServerError(c, err, "backup write failed")
		return
	}
	backup := models.Backup{
		ID:        id,
		FileName:  fileName,
		SizeBytes: int64(len(data)),
		Origin:    models.BackupOriginAPI,
	}
	if err := db.Create(&backup).Error; err != nil {
		respondServerError(c, err, "backup record failed")
		return
	}
	c.JSON(http.StatusOK, backup)
}

func downloadBackupHandler(c *gin.Context) {
	var backup models.Backup
	if err := db.First(&backup, "id = ?", c.Param("id")).Error; err != nil {
		respondNotFound(c)
		return
	}
	fullPath := filepath.Join(cfg.BackupDir, filepath.Base(backup.FileName))
	if _, err := os.Stat(fullPath); err != nil {
		respondNotFound(c)
		return
	}
	c.FileAttachment(fullPath, backup.FileName)
}

func deleteBackupHandler(c *gin.Context) {
	var backup models.Backup
	if err := db.First(&backup, "id = ?", c.Param("id")).Error; err != nil {
		respondNotFound(c)
		return
	}
	fullPath := filepath.Join(cfg.BackupDir, filepath.Base(backup.FileName))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		respondServerError(c, err, "backup file delete failed")
		return
	}
	if err := db.Delete(&backup).Error; err != nil {
		respondServerError(c, err, "backup record delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup gelöscht"})
}

// registerExternalBackup records a file dropped into the backup directory by
// an operator (pg_dump output, copied snapshots). Already-known file names
// are ignored.
func registerExternalBackup(fileName string) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".json" && ext != ".sql" && ext != ".dump" {
		return
	}
	var cnt int64
	db.Model(&models.Backup{}).Where("file_name = ?", fileName).Count(&cnt)
	if cnt > 0 {
		return
	}
	info, err := os.Stat(filepath.Join(cfg.BackupDir, fileName))
	if err != nil {
		return
	}
	backup := models.Backup{
		ID:        uuid.NewString(),
		FileName:  fileName,
		SizeBytes: info.Size(),
		Origin:    models.BackupOriginWatcher,
	}
	if err := db.Create(&backup).Error; err != nil && !isUniqueConstraintError(err) {
		return
	}
}
