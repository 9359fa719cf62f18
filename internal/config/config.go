package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DBDriver string
	DBUrl    string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool

	FrontendOrigin string
	FrontendURL    string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	BcryptCost      int
	VerificationTTL time.Duration
	ResetTTL        time.Duration

	MailtrapToken string
	MailtrapURL   string
	MailFrom      string
	MailFromName  string

	KafkaBrokers []string
	KafkaTopic   string

	RedisURL       string
	RevokeOnLogout bool

	AdminEmail    string
	AdminPassword string
}

func LoadConfig() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBUrl:    os.Getenv("DB_URL"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   getDuration("SESSION_TTL", 7*24*time.Hour),
		CookieName:   getEnv("COOKIE_NAME", "token"),
		CookieSecure: getBool("COOKIE_SECURE", false),

		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		BcryptCost:      getInt("BCRYPT_COST", 12),
		VerificationTTL: getDuration("VERIFICATION_TTL", 24*time.Hour),
		ResetTTL:        getDuration("RESET_TTL", time.Hour),

		MailtrapToken: os.Getenv("MAILTRAP_TOKEN"),
		MailtrapURL:   getEnv("MAILTRAP_URL", "https://send.api.mailtrap.io/api/send"),
		MailFrom:      getEnv("MAIL_FROM", "no-reply@mall.local"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Mall"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "mall-events"),

		RedisURL:       os.Getenv("REDIS_URL"),
		RevokeOnLogout: getBool("REVOKE_ON_LOGOUT", false),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		log.Println("JWT_SECRET not set, using default key")
		cfg.JWTSecret = defaultJWTSecret
	}

	if cfg.DBDriver == "sqlite" && cfg.DBUrl == "" {
		cfg.DBUrl = "file:mall.db"
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
