package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// CORS
	AllowedOrigins []string

	// Bill reminder scheduler
	ReminderEnabled  bool
	ReminderSchedule string        // Cron expression (e.g., "0 9 * * *" for 9am daily)
	ReminderTimeout  time.Duration // Timeout for a complete reminder scan

	// Web Push Notifications
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string // mailto:email or URL
}

func Load() *Config {
	env := getEnv("ENV", "development")

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  env,

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pocketpilot?sslmode=disable"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 7*24*time.Hour),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		ReminderEnabled:  getBoolEnv("REMINDER_ENABLED", true),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * *"), // Default: daily at 9am
		ReminderTimeout:  getDurationEnv("REMINDER_TIMEOUT", 2*time.Minute),

		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:reminders@pocketpilot.app"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
