package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	SMTP          SMTPConfig
	Storage       StorageConfig
	Auth          AuthConfig
	Notifications NotificationConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
	FromName  string
	// AdminEmail receives new-registration notifications.
	AdminEmail string
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

type AuthConfig struct {
	JWTSecret string
}

type NotificationConfig struct {
	// NotifyOnReject controls whether team members are mailed when their
	// registration is rejected. Approval mail is always sent.
	NotifyOnReject bool
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", "localhost"),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			User:       getEnv("SMTP_USER", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			FromEmail:  getEnv("FROM_EMAIL", "noreply@taakra.com"),
			FromName:   getEnv("FROM_NAME", "Taakra Events"),
			AdminEmail: getEnv("ADMIN_EMAIL", "contact@taakra2026.com"),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "event-receipts"),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		},
		Notifications: NotificationConfig{
			NotifyOnReject: getEnvAsBool("NOTIFY_ON_REJECT", true),
		},
	}

	return config, nil
}

// parseDatabaseConfig handles both DATABASE_URL and individual components
func parseDatabaseConfig() DatabaseConfig {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "event_registration"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// If DATABASE_URL is provided, use it and also parse components for compatibility
	if databaseURL := getEnv("DATABASE_URL", ""); databaseURL != "" {
		dbConfig.URL = databaseURL

		if parsed, err := url.Parse(databaseURL); err == nil {
			dbConfig.Host = parsed.Hostname()
			if port := parsed.Port(); port != "" {
				if portInt, err := strconv.Atoi(port); err == nil {
					dbConfig.Port = portInt
				}
			}
			if parsed.User != nil {
				dbConfig.User = parsed.User.Username()
				if password, ok := parsed.User.Password(); ok {
					dbConfig.Password = password
				}
			}
			dbConfig.DBName = strings.TrimPrefix(parsed.Path, "/")
			if sslMode := parsed.Query().Get("sslmode"); sslMode != "" {
				dbConfig.SSLMode = sslMode
			}
		}
	}

	return dbConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
