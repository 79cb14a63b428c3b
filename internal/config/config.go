package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string

	// Scoring pipeline
	OpenAIKey      string
	OpenAIModel    string
	FetchTimeout   time.Duration
	FetchRetries   int
	MaxScorePages  int
	CacheMaxAge    time.Duration
	BatchWorkers   int
	MaxFetches     int // cap on concurrent network fetches across all workers
	BatchCapacity  int // status-store capacity before FIFO eviction
	DripInterval   time.Duration

	// Providers
	GoogleMapsKey       string
	StripeSecretKey     string
	StripeWebhookSecret string
	SendgridKey         string
	SendgridFrom        string
	TwilioSID           string
	TwilioToken         string
	TwilioFrom          string
	HunterKey           string
}

func Load() (Config, error) {
	cfg := Config{
		Env:         getenv("APP_ENV", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o"),
		FetchTimeout:  getenvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchRetries:  getenvInt("FETCH_RETRIES", 3),
		MaxScorePages: getenvInt("MAX_SCORE_PAGES", 3),
		CacheMaxAge:   getenvDuration("SCORE_CACHE_MAX_AGE", 24*time.Hour),
		BatchWorkers:  getenvInt("BATCH_WORKERS", 10),
		MaxFetches:    getenvInt("MAX_CONCURRENT_FETCHES", 10),
		BatchCapacity: getenvInt("BATCH_STATUS_CAPACITY", 200),
		DripInterval:  getenvDuration("DRIP_INTERVAL", time.Hour),

		GoogleMapsKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SendgridKey:         os.Getenv("SENDGRID_API_KEY"),
		SendgridFrom:        getenv("SENDGRID_FROM_EMAIL", "noreply@leadblitz.co"),
		TwilioSID:           os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:         os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:          os.Getenv("TWILIO_PHONE_NUMBER"),
		HunterKey:           os.Getenv("HUNTER_API_KEY"),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
