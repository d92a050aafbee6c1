package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	Mail MailConfig

	Redis RedisConfig

	RateLimit RateLimitConfig

	// RabbitMQURL enables publishing of booking field changes. Empty disables it.
	RabbitMQURL string

	// DigestSchedule is a cron spec for the pending-approval digest. Empty disables it.
	DigestSchedule string

	// AllowedOrigins is a comma-separated allowlist of origins allowed to call
	// the /api/wl endpoints from the browser. Example:
	//   https://whitelotus.is,http://localhost:3000
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// JWTSecret verifies HS256 session tokens issued by the identity provider.
	JWTSecret string
	// Audience is checked when non-empty (Supabase uses "authenticated").
	Audience string
	// AdminEmails are treated as admins regardless of the role claim.
	AdminEmails []string
}

type MailConfig struct {
	Provider       string // sendgrid | resend | log
	SendGridAPIKey string
	ResendAPIKey   string
	From           string
	AdminInbox     string
	PublicSiteURL  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		redisAddr = host + ":" + port
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "whitelotus"),
			User:     env("DB_USER", "whitelotus"),
			Password: env("DB_PASSWORD", "whitelotus"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
			Audience:    os.Getenv("AUTH_JWT_AUDIENCE"),
			AdminEmails: envList("ADMIN_EMAILS", ""),
		},
		Mail: MailConfig{
			Provider:       env("MAIL_PROVIDER", "log"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
			From:           env("MAIL_FROM", "White Lotus <bookings@whitelotus.is>"),
			AdminInbox:     env("ADMIN_INBOX", "whitelotus@whitelotus.is"),
			PublicSiteURL:  env("PUBLIC_SITE_URL", "http://localhost:3000"),
		},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
			RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
			TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         env("RATE_LIMIT_PREFIX", "rl"),
		},
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		DigestSchedule: os.Getenv("DIGEST_SCHEDULE"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}
