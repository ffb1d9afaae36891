package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kmube/models"
	"kmube/pkg/permissions"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := cfg.DBDSN
	if dsn == "" {
		log.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres database")
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		for _, m := range []any{
			&models.Permission{}, &models.Role{}, &models.User{},
			&models.Employee{}, &models.Customer{},
			&models.Category{}, &models.Product{},
			&models.Offer{}, &models.OfferItem{},
			&models.Company{}, &models.SystemSetting{}, &models.Backup{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Warn().Err(err).Msgf("migration warning (%T)", m)
			}
		}
	}
	seedDB()
}

func seedDB() {
	seedPermissions()
	seedRoles()
	seedAdmin()
	seedCompany()
	seedSettings()
	ensureDir(cfg.UploadBase)
	ensureDir(cfg.BackupDir)
}

// seedPermissions syncs the permissions table against the closed key set.
// Unknown rows are kept (never deleted automatically) but logged.
func seedPermissions() {
	for _, key := range permissions.All() {
		var cnt int64
		db.Model(&models.Permission{}).Where("key = ?", key).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.Permission{Key: key, Description: permissions.Descriptions[key]})
		}
	}
	var stale []models.Permission
	if err := db.Where("key NOT IN ?", permissions.All()).Find(&stale).Error; err == nil {
		for _, p := range stale {
			log.Warn().Str("key", p.Key).Msg("permission row not in closed key set")
		}
	}
}

func seedRoles() {
	seedRole("admin", "Administrator", "Vollzugriff", permissions.All())
	seedRole("user", "Benutzer", "Lesezugriff", permissions.ViewOnly())
}

func seedRole(key, name, description string, perms []string) {
	var role models.Role
	if err := db.Where("key = ?", key).First(&role).Error; err != nil {
		role = models.Role{Key: key, Name: name, Description: description}
		if err := db.Create(&role).Error; err != nil {
			log.Warn().Err(err).Str("role", key).Msg("failed to seed role")
			return
		}
	}
	var rows []models.Permission
	if err := db.Where("key IN ?", perms).Find(&rows).Error; err != nil {
		log.Warn().Err(err).Str("role", key).Msg("failed to load permissions for role")
		return
	}
	if err := db.Model(&role).Association("Permissions").Replace(rows); err != nil {
		log.Warn().Err(err).Str("role", key).Msg("failed to assign permissions")
	}
}

func seedAdmin() {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return
	}
	var role models.Role
	if err := db.Where("key = ?", "admin").First(&role).Error; err != nil {
		log.Warn().Err(err).Msg("failed to find admin role")
		return
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte("Test123!"), bcrypt.DefaultCost)
	admin := models.User{
		Username:          "admin",
		Email:             "admin@example.com",
		PasswordHash:      hashed,
		PasswordExpiresAt: time.Now().AddDate(1, 0, 0),
		RoleID:            role.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Warn().Err(err).Msg("failed to seed admin user")
		return
	}
	log.Info().Msg("seeded admin user (username=admin)")
}

func seedCompany() {
	var count int64
	db.Model(&models.Company{}).Count(&count)
	if count == 0 {
		db.Create(&models.Company{Name: "Meine Firma", DefaultVatRate: 19, OfferValidityDays: 30})
	}
}

func seedSettings() {
	defaults := map[string]string{
		models.SettingInvoiceFooter:   "Zahlbar innerhalb von 14 Tagen ohne Abzug.",
		models.SettingCurrency:        "EUR",
		models.SettingDateFormat:      "02.01.2006",
		models.SettingPaymentTermDays: "14",
	}
	for key, value := range defaults {
		var cnt int64
		db.Model(&models.SystemSetting{}).Where("key = ?", key).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.SystemSetting{Key: key, Value: value})
		}
	}
}

func ensureDir(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("failed to create directory")
	}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
