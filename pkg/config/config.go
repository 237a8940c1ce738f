package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once from the environment (and .env when present).
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DatabaseURL string
	DBTimeout   time.Duration

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
	SupabaseJWTSecret  string

	RedisAddr string
	CacheTTL  time.Duration

	ResendAPIKey     string
	ReportFrom       string
	WeeklyReportCron string
}

// Load reads the process environment. Missing .env files are not an error.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		Port:     getenv("PORT", "3000"),
		AppEnv:   getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBTimeout:   duration("DB_TIMEOUT", 15*time.Second),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getenv("SUPABASE_BUCKET", "reports"),
		SupabaseJWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  duration("CACHE_TTL", 5*time.Minute),

		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		ReportFrom:       getenv("REPORT_FROM", "LexPro <onboarding@resend.dev>"),
		WeeklyReportCron: getenv("WEEKLY_REPORT_CRON", "0 8 * * 1"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// duration accepts Go durations ("15s") or plain seconds ("15").
func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
