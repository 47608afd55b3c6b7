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
	Port        string
	Environment string
	LogLevel    string
	FrontendURL string
	// Optional infrastructure
	DBUrl    string // Security event persistence
	RedisURL string // Shared rate-limit ledger for multi-instance deployments
	// SMTP Configuration
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	MailFrom          string
	MailFromName      string
	MailTo            string
	ContactReplyEmail string // Address advertised in the auto-reply
	// Telegram Bot Configuration
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	TelegramPerMin   int
	// Rate Limiting Configuration
	RateLimitWindowSeconds int
	RateLimitMaxEntries    int
	RateLimitPurgeInterval int
	APIRateLimitPerMinute  int
	// Delivery policy
	StrictDelivery bool
	// Security Configuration
	SecurityLogToDB bool
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects real environment variables
	_ = godotenv.Load()

	smtpUser := getEnv("SMTP_USER", "")
	mailTo := getEnv("MAIL_TO", smtpUser)

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: environmentName(getEnv("GIN_MODE", "")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		// SMTP Configuration
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      smtpUser,
		SMTPPassword:      getEnv("SMTP_PASS", ""),
		MailFrom:          getEnv("MAIL_FROM", smtpUser),
		MailFromName:      getEnv("MAIL_FROM_NAME", "Essential Hustle"),
		MailTo:            mailTo,
		ContactReplyEmail: getEnv("CONTACT_REPLY_EMAIL", mailTo),
		// Telegram Bot Configuration
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIURL:   strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		TelegramPerMin:   getEnvInt("TELEGRAM_RATE_PER_MINUTE", 20), // Bot API group limit
		// Rate Limiting Configuration
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxEntries:    getEnvInt("RATE_LIMIT_MAX_ENTRIES", 10000),
		RateLimitPurgeInterval: getEnvInt("RATE_LIMIT_PURGE_INTERVAL", 100),
		APIRateLimitPerMinute:  getEnvInt("API_RATE_LIMIT_PER_MINUTE", 100),
		// Delivery policy
		StrictDelivery: getEnvBool("CONTACT_STRICT_DELIVERY", false),
		// Security Configuration
		SecurityLogToDB: getEnvBool("SECURITY_LOG_TO_DB", true),
	}

	if !cfg.SMTPConfigured() {
		log.Println("WARNING: SMTP_HOST/SMTP_USER/SMTP_PASS incomplete. Email delivery is disabled.")
	}
	if !cfg.TelegramConfigured() {
		log.Println("WARNING: TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID incomplete. Telegram notifications are disabled.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use the in-memory ledger.")
	}

	return cfg, nil
}

// SMTPConfigured reports whether the email channel has the credentials it needs.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// TelegramConfigured reports whether the chat channel has a token and a destination.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// RateLimitWindow returns the cooldown window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
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

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func environmentName(ginMode string) string {
	if ginMode == "release" {
		return "production"
	}
	return "development"
}
