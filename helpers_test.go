package main

import (
	"time"

	"github.com/gin-gonic/gin"
)

// testConfig installs a self-contained configuration; tests never read the
// environment.
func testConfig() *Config {
	return &Config{
		ListenAddr:    ":0",
		AppEnv:        "test",
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		CSRFSecret:    []byte("test-csrf-secret"),
		CSRFTTL:       60 * time.Second,
		ResetTTL:      5 * time.Minute,
		SMTPFrom:      "test@example.com",
		PublicBaseURL: "http://localhost:3000",
		RateLimit:     10,
		RateBurst:     20,
		UploadBase:    "uploads",
		BackupDir:     "backups",
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg = testConfig()
	r := gin.New()
	setupRoutes(r)
	return r
}
