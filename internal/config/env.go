package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	DBDSN string

	JWTSecret string
	JWTTTL    time.Duration

	RedisURL    string
	CORSOrigins []string
	SiteURL     string
	Timezone    string

	SendGridAPIKey   string
	SendGridFrom     string
	SendGridFromName string
	AdminNotifyEmail string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	StripeSecretKey     string
	StripeWebhookSecret string

	UploadCloudName string
	UploadAPIKey    string
	UploadAPISecret string

	DraftTTL    time.Duration
	CatalogPath string

	RateLimitRPS   float64
	RateLimitBurst int
	// CIDRs or IPs of load balancers whose X-Forwarded-For is believed.
	TrustedProxies []string
}

// LoadEnv reads an optional .env file then the process environment.
// Variables already set in the environment win over the file.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:  getEnv("APP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDSN: dsnFromEnv(),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getDuration("JWT_TTL", 12*time.Hour),

		RedisURL:    getEnv("REDIS_URL", ""),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		SiteURL:     strings.TrimRight(getEnv("PUBLIC_SITE_URL", "http://localhost:3000"), "/"),
		Timezone:    getEnv("TIMEZONE", "Asia/Riyadh"),

		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SendGridFrom:     getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName: getEnv("SENDGRID_FROM_NAME", "Umrah Transfer"),
		AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:       getEnv("TWILIO_FROM_NUMBER", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		UploadCloudName: getEnv("UPLOAD_CLOUD_NAME", ""),
		UploadAPIKey:    getEnv("UPLOAD_API_KEY", ""),
		UploadAPISecret: getEnv("UPLOAD_API_SECRET", ""),

		DraftTTL:    getDuration("DRAFT_TTL", 7*24*time.Hour),
		CatalogPath: getEnv("CATALOG_PATH", "catalog.yaml"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
	}
}

// Validate reports settings the server cannot start without.
func (e Env) Validate() error {
	if e.DBDSN == "" {
		return fmt.Errorf("DB_DSN (or DB_USER/DB_HOST/DB_NAME) is required")
	}
	if len(e.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

func dsnFromEnv() string {
	if dsn := getEnv("DB_DSN", ""); dsn != "" {
		return dsn
	}
	user := getEnv("DB_USER", "")
	host := getEnv("DB_HOST", "127.0.0.1:3306")
	name := getEnv("DB_NAME", "")
	if user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		user, getEnv("DB_PASSWORD", ""), host, name)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

// getDuration accepts Go durations ("36h") or a plain number of hours.
func getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if h, err := strconv.Atoi(raw); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
