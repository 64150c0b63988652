package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string
	// Storage: postgres | mysql | memory
	DBDriver string
	DBUrl    string
	MySQLDSN string
	// Site identity used in emails and admin pages
	SiteName    string
	SiteURL     string
	SitePhone   string
	SiteAddress string
	// Origins allowed to post the contact form from the browser
	AllowedOrigins []string
	// SMTP Configuration
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFromEmail  string
	ContactEmailTo string
	// Notification queue
	NotifyWorkers   int
	NotifyQueueSize int
	NotifyTimeout   time.Duration
	// Admin session
	AdminUsername     string
	AdminPasswordHash string // bcrypt, see scripts/genhash.go
	SessionSecret     string
	SessionLifetime   time.Duration
	AdminPageSize     int
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	RateLimitLoginThreshold   int
	RateLimitGlobalThreshold  int
	FailedLoginBlockMinutes   int
	FailedLoginMaxAttempts    int
	// Audit log: production | development
	AuditLogEnv string
}

func LoadConfig() (*Config, error) {
	// Load .env when present; ignored in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBUrl:    getEnv("DATABASE_URL", ""),
		MySQLDSN: getEnv("MYSQL_DSN", ""),
		// Site
		SiteName:       getEnv("SITE_NAME", "Linire Mulima & Company"),
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		SitePhone:      getEnv("SITE_PHONE", "+260 977 450621"),
		SiteAddress:    getEnv("SITE_ADDRESS", "Lot 3052/M/E Zambezi Road Extension, Foxdale, Lusaka, Zambia"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		// SMTP Configuration
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:  getEnv("SMTP_FROM_EMAIL", "linire@liniremulima.com"),
		ContactEmailTo: getEnv("CONTACT_EMAIL_TO", "linire@liniremulima.com"),
		// Notifications
		NotifyWorkers:   getEnvInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 100),
		NotifyTimeout:   getEnvDuration("NOTIFY_TIMEOUT_SECONDS", 15*time.Second),
		// Admin
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionLifetime:   getEnvDuration("SESSION_LIFETIME_SECONDS", 2*time.Hour),
		AdminPageSize:     getEnvInt("ADMIN_PAGE_SIZE", 20),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
		RateLimitLoginThreshold:   getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		FailedLoginBlockMinutes:   getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:    getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
		AuditLogEnv:               getEnv("AUDIT_LOG_ENV", "production"),
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBUrl == "" {
			log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
		}
	case "mysql":
		if cfg.MySQLDSN == "" {
			log.Println("WARNING: MYSQL_DSN is missing. Application may fail to connect.")
		}
	case "memory":
		log.Println("WARNING: DB_DRIVER=memory. Submissions are lost on restart.")
	default:
		log.Printf("WARNING: unknown DB_DRIVER %q, falling back to postgres", cfg.DBDriver)
		cfg.DBDriver = "postgres"
	}

	if cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET not configured. Admin login is disabled.")
	}
	if cfg.AdminPasswordHash == "" {
		log.Println("WARNING: ADMIN_PASSWORD_HASH not configured. Admin login is disabled.")
	}

	// Log Redis configuration status (helpful for debugging)
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if secs := getEnvInt(key, -1); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimRight(strings.TrimSpace(item), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}
