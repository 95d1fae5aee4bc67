package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	DatabaseURL      string
	RedisAddr        string
	QueueBackend     string
	QueueKey         string
	RateLimitBackend string
	RateLimitPerMin  int
	JWTIssuer        string
	JWTSigningKey    string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	WebhookTimeout   time.Duration
	PublicOrigin     string
	CORSOrigins      []string
	TrustProxy       bool
	ShutdownTimeout  time.Duration
}

// Load reads an optional .env file and returns the config populated from
// environment variables with defaults.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() App {
	cfg := App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8081"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		QueueBackend:     getEnv("QUEUE_BACKEND", "memory"),
		QueueKey:         getEnv("QUEUE_KEY", "rollcall:sync-events"),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		JWTIssuer:        getEnv("JWT_ISSUER", "rollcall"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:        durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       durationEnv("REFRESH_TTL", 24*time.Hour),
		WebhookTimeout:   durationEnv("WEBHOOK_TIMEOUT", 10*time.Second),
		PublicOrigin:     getEnv("PUBLIC_ORIGIN", "http://localhost:8081"),
		CORSOrigins:      listEnv("CORS_ORIGINS", []string{"*"}),
		TrustProxy:       boolEnv("TRUST_PROXY", false),
		ShutdownTimeout:  durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if cfg.RedisAddr == "" {
		if cfg.QueueBackend == "redis" || cfg.RateLimitBackend == "redis" {
			log.Printf("config: REDIS_ADDR not set, falling back to memory backends")
		}
		cfg.QueueBackend = "memory"
		cfg.RateLimitBackend = "memory"
	}
	return cfg
}

// Production reports whether the app runs in a production environment.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
