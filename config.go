package main

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings.
//
// Fields:
//   - DBDSN: PostgreSQL DSN, required outside of tests.
//   - AccessSecret / RefreshSecret: separate HMAC secrets for the two token
//     kinds. Do not run production on the development fallbacks.
//   - AccessTTL / RefreshTTL: token lifetimes (15 min / 24 h defaults).
//   - CSRFSecret / CSRFTTL: anti-forgery token signing key and lifetime.
//   - SMTP*: outgoing mail account used for password-reset mails.
//   - PublicBaseURL: external URL reset links are built against.
//   - RateLimit / RateBurst: per-IP requests per second and burst for
//     sensitive endpoints; only enforced when AppEnv is "production".
type Config struct {
	ListenAddr    string
	AppEnv        string
	DBDSN         string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CSRFSecret    []byte
	CSRFTTL       time.Duration
	ResetTTL      time.Duration
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	PublicBaseURL string
	RateLimit     int
	RateBurst     int
	UploadBase    string
	BackupDir     string
	LogLevel      string
}

func loadConfig() *Config {
	cfg := &Config{
		ListenAddr:    envOr("LISTEN_ADDR", ":8081"),
		AppEnv:        envOr("APP_ENV", "development"),
		DBDSN:         os.Getenv("DB_DSN"),
		AccessSecret:  []byte(envOr("JWT_ACCESS_SECRET", "dev-access-secret-change")),
		RefreshSecret: []byte(envOr("JWT_REFRESH_SECRET", "dev-refresh-secret-change")),
		AccessTTL:     envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    envDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		CSRFSecret:    []byte(envOr("CSRF_SECRET", "dev-csrf-secret-change")),
		CSRFTTL:       envDuration("CSRF_TTL", 60*time.Second),
		ResetTTL:      envDuration("RESET_TOKEN_TTL", 5*time.Minute),
		SMTPHost:      envOr("SMTP_HOST", "localhost"),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      envOr("SMTP_FROM", "noreply@example.com"),
		PublicBaseURL: envOr("PUBLIC_BASE_URL", "http://localhost:3000"),
		RateLimit:     envInt("RATE_LIMIT", 10),
		RateBurst:     envInt("RATE_BURST", 20),
		UploadBase:    envOr("UPLOAD_BASE", "uploads"),
		BackupDir:     envOr("BACKUP_DIR", "backups"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
	}
	return cfg
}

// isProduction gates the rate limiter; everything else behaves identically
// across environments.
func (c *Config) isProduction() bool {
	return c.AppEnv == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
