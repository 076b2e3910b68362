package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Addr           string   // API bind address, e.g. ":8080"
	LogDir         string   // logs directory
	AllowedOrigins []string // CORS; empty means allow all (dev)

	// storage selection: postgres when DatabaseURL is set, else sqlite when
	// SQLitePath is set, else in-memory
	DatabaseURL string
	SQLitePath  string

	// per-call budgets; never inherited from a global default
	CheckTimeout time.Duration // on-demand probe
	TrackTimeout time.Duration // tracked-cycle probe
	AlertTimeout time.Duration // one alert dispatch

	SweepInterval    time.Duration // 0 disables the background sweeper
	SweepConcurrency int
	LiveInterval     time.Duration

	// alert transports
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	SMTPFrom        string
	AlertWebhookURL string

	// API protection
	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int
	AdminRPM      int
	AdminBurst    int
}

// FromEnv loads .env when present and builds the config with defaults for
// everything unset.
func FromEnv() Config {
	_ = godotenv.Load(".env")

	return Config{
		Addr:           cast.ToString(coalesce("ADDR", "127.0.0.1:8080")),
		LogDir:         cast.ToString(coalesce("LOG_DIR", "logs")),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),

		CheckTimeout: msDuration("CHECK_TIMEOUT_MS", 10_000),
		TrackTimeout: msDuration("TRACK_TIMEOUT_MS", 3_000),
		AlertTimeout: msDuration("ALERT_TIMEOUT_MS", 2_000),

		SweepInterval:    msDuration("SWEEP_INTERVAL_MS", 60_000),
		SweepConcurrency: cast.ToInt(coalesce("MAX_CONCURRENT_SWEEPS", 8)),
		LiveInterval:     msDuration("LIVE_INTERVAL_MS", 5_000),

		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        cast.ToInt(coalesce("SMTP_PORT", 587)),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		AlertWebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),

		PublicAPIKeys: splitList(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitList(os.Getenv("ADMIN_API_KEYS")),
		PublicRPM:     cast.ToInt(coalesce("PUBLIC_RPM", 120)),
		PublicBurst:   cast.ToInt(coalesce("PUBLIC_BURST", 60)),
		AdminRPM:      cast.ToInt(coalesce("ADMIN_RPM", 60)),
		AdminBurst:    cast.ToInt(coalesce("ADMIN_BURST", 30)),
	}
}

func coalesce(key string, value interface{}) interface{} {
	val, exist := os.LookupEnv(key)
	if exist {
		return val
	}
	return value
}

func msDuration(key string, defMS int) time.Duration {
	ms := cast.ToInt(coalesce(key, defMS))
	if ms < 0 {
		ms = defMS
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
