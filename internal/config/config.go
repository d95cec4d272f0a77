package config

import (
	"os"
	"strconv"
	"time"
)

// Config is everything the process reads from the environment, loaded once
// in main after godotenv.
type Config struct {
	Port        string
	DatabaseURL string

	RabbitUser string
	RabbitPass string
	RabbitHost string
	RabbitPort string

	PipedriveAPIKey        string
	PipedriveCompanyDomain string

	StripeKey           string
	StripeWebhookSecret string

	WebhookSecretToken string

	// BackendURL is this service's public base URL, used when registering
	// Pipedrive webhook subscriptions.
	BackendURL string

	MondayAPIKey  string
	MondayBoardID string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	// DefaultOwnerID is assigned to records born from inbound webhooks.
	DefaultOwnerID string

	LeaseTTL       time.Duration
	ReaperInterval time.Duration
	SettleDelay    time.Duration
}

func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RabbitUser: getenv("RABBITMQ_USER", "guest"),
		RabbitPass: getenv("RABBITMQ_PASS", "guest"),
		RabbitHost: getenv("RABBITMQ_HOST", "localhost"),
		RabbitPort: getenv("RABBITMQ_PORT", "5672"),

		PipedriveAPIKey:        os.Getenv("PIPEDRIVE_API_KEY"),
		PipedriveCompanyDomain: os.Getenv("PIPEDRIVE_COMPANY_DOMAIN"),

		StripeKey:           os.Getenv("STRIPE_PRIVATE"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		WebhookSecretToken: os.Getenv("WEBHOOK_SECRET_TOKEN"),

		BackendURL: os.Getenv("BACKEND_URL"),

		MondayAPIKey:  os.Getenv("MONDAY_API_KEY"),
		MondayBoardID: os.Getenv("MONDAY_BOARD_ID"),

		MailHost: os.Getenv("MAIL_HOST"),
		MailPort: getint("MAIL_PORT", 587),
		MailUser: os.Getenv("MAIL_USER"),
		MailPass: os.Getenv("MAIL_PASS"),
		MailFrom: getenv("MAIL_FROM", "no-reply@roseware.io"),

		DefaultOwnerID: os.Getenv("DEFAULT_OWNER_ID"),

		LeaseTTL:       getduration("SYNC_LEASE_TTL", 30*time.Second),
		ReaperInterval: getduration("REAPER_INTERVAL", 15*time.Second),
		SettleDelay:    getduration("WEBHOOK_SETTLE_DELAY", 2*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
