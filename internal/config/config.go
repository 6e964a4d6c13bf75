// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

type Config struct {
	// Server
	Addr               string
	DatabasePath       string
	CORSAllowedOrigins []string // empty = same-origin only
	CookieSecure       bool
	MaxUploadMB        int64
	LogLevel           string // debug, info, warn, error
	LogFormat          string // text, json

	// Admin
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string // bcrypt, preferred over AdminPassword when set
	JWTSecret         string

	// Media storage
	StorageBackend string
	UploadDir      string
	PublicBaseURL  string
	S3Bucket       string
	AWSRegion      string
	S3Endpoint     string

	// Mail (optional)
	SendGridAPIKey string
	MailFrom       string
	ContactTo      string
	MaintenanceTo  string
}

// MailConfigured returns true if outbound mail can be sent.
func (c *Config) MailConfigured() bool {
	return c.SendGridAPIKey != "" && c.MailFrom != ""
}

// AdminConfigured returns true if admin login can succeed.
func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && (c.AdminPassword != "" || c.AdminPasswordHash != "") && c.JWTSecret != ""
}

// Load reads configuration from the environment. If envFile is non-empty it
// is loaded first; variables already set in the environment win. A missing
// default .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Addr:               getEnv("ADDR", ":8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "uphsite.sqlite3"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),
		MaxUploadMB:        int64(getEnvInt("MAX_UPLOAD_MB", 50)),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),

		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("ADMIN_JWT_SECRET"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageDisk)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		S3Bucket:       getEnv("S3_BUCKET_NAME", os.Getenv("AWS_S3_BUCKET")),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		ContactTo:      os.Getenv("CONTACT_TO"),
		MaintenanceTo:  getEnv("MAINTENANCE_TO", os.Getenv("CONTACT_TO")),
	}

	switch cfg.StorageBackend {
	case StorageDisk:
	case StorageS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME is required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageDisk, StorageS3, cfg.StorageBackend)
	}

	if cfg.MaxUploadMB < 1 || cfg.MaxUploadMB > 1024 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be between 1 and 1024, got %d", cfg.MaxUploadMB)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
