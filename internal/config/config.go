package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port               string
	AppEnv             string
	PublicURL          string
	DatabaseURL        string
	MagicLinkSecret    string
	MagicLinkTTL       time.Duration
	APIKeySecret       string
	StripeSecretKey    string
	StripeWebhookKey   string
	ResendAPIKey       string
	EmailFrom          string
	RedisAddr          string
	RedisPassword      string
	LoginLinkLimit     int
	LoginLinkWindow    time.Duration
	WeeklySyncInterval time.Duration
	ProviderTimeout    time.Duration
	CatalogPath        string
	CorsOrigins        []string
	AdminJWTSecret     string
	AdminJWTIssuer     string
	LogDir             string
	LogRetentionDays   int
	MetricsDiskPath    string
}

func Load() Config {
	stripeKey := envOr("STRIPE_SECRET_KEY", "")
	magicSecret := magicLinkSecret(stripeKey)
	return Config{
		Port:               envOr("PORT", "8080"),
		AppEnv:             envOr("APP_ENV", "development"),
		PublicURL:          strings.TrimRight(envOr("PUBLIC_URL", "http://localhost:3000"), "/"),
		DatabaseURL:        mustEnv("DATABASE_URL"),
		MagicLinkSecret:    magicSecret,
		MagicLinkTTL:       envOrDuration("MAGIC_LINK_TTL", 15*time.Minute),
		APIKeySecret:       envOr("API_KEY_SECRET", magicSecret),
		StripeSecretKey:    stripeKey,
		StripeWebhookKey:   envOr("STRIPE_WEBHOOK_SECRET", ""),
		ResendAPIKey:       envOr("RESEND_API_KEY", ""),
		EmailFrom:          envOr("EMAIL_FROM", "ASA Portal <noreply@yourdomain.com>"),
		RedisAddr:          envOr("REDIS_ADDR", ""),
		RedisPassword:      envOr("REDIS_PASSWORD", ""),
		LoginLinkLimit:     envOrInt("LOGIN_LINK_LIMIT", 5),
		LoginLinkWindow:    envOrDuration("LOGIN_LINK_WINDOW", 15*time.Minute),
		WeeklySyncInterval: envOrDuration("WEEKLY_SYNC_INTERVAL", 7*24*time.Hour),
		ProviderTimeout:    envOrDuration("PROVIDER_TIMEOUT", 30*time.Second),
		CatalogPath:        envOr("CATALOG_PATH", ""),
		CorsOrigins:        parseCSV(envOr("CORS_ORIGINS", "")),
		AdminJWTSecret:     envOr("ADMIN_JWT_SECRET", ""),
		AdminJWTIssuer:     envOr("ADMIN_JWT_ISSUER", "asa-portal"),
		LogDir:             envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:   envOrInt("LOG_RETENTION_DAYS", 7),
		MetricsDiskPath:    envOr("METRICS_DISK_PATH", "/"),
	}
}

// LoadAdminAuth reads only the admin token settings, for tools that mint
// tokens without touching the database. ADMIN_JWT_SECRET has no fallback;
// an empty secret disables the admin API.
func LoadAdminAuth() Config {
	return Config{
		AppEnv:         envOr("APP_ENV", "development"),
		AdminJWTSecret: envOr("ADMIN_JWT_SECRET", ""),
		AdminJWTIssuer: envOr("ADMIN_JWT_ISSUER", "asa-portal"),
	}
}

func magicLinkSecret(stripeKey string) string {
	secret := envOr("MAGIC_LINK_SECRET", stripeKey)
	if secret == "" {
		secret = "dev-secret"
	}
	return secret
}

// AdminEnabled reports whether the admin API can verify bearer tokens.
func (c Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}

// Production reports whether cookies should carry the Secure flag.
func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
