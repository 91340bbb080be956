package config

import (
	"os"
	"time"
)

type Config struct {
	DatabasePath       string
	LocalStorePath     string
	Port               string
	Environment        string
	LogLevel           string
	AllowedOrigins     string
	SessionDuration    time.Duration
	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string
}

func Load() *Config {
	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "rigtally.db"),
		LocalStorePath:     getEnv("LOCAL_STORE_PATH", "rigtally-local.json"),
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "production"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*"),
		SessionDuration:    7 * 24 * time.Hour,
		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@rigtally.app"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Rigtally"),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
