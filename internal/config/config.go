package config

import (
	"log"
	"os"
	"strconv"
)

// Config is built once in main and injected; nothing reads the environment
// after startup.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	GraceMinutes   int
	ConfirmMinutes int

	NotifyQueueSize int
	NotifyWorkers   int

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads the configuration from the environment. Missing required values
// are fatal; notification credentials are optional (delivery is skipped and
// logged when absent).
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		GraceMinutes:   getEnvInt("GRACE_PERIOD_MINUTES", 15),
		ConfirmMinutes: getEnvInt("WAITLIST_CONFIRM_MINUTES", 10),

		NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		NotifyWorkers:   getEnvInt("NOTIFY_WORKERS", 4),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "K-Park"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
