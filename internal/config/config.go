package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mrlokans/circulation/internal/fees"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Librarian accounts with sessions and API tokens
)

type (
	Config struct {
		HTTP
		Audit
		Global
		Database
		Tasks
		OverdueScan
		Payment
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		SeedData bool // Insert the sample catalog into an empty database
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	OverdueScan struct {
		Enabled  bool
		Schedule string // Cron format: "0 6 * * *" = daily at 06:00
	}
	Payment struct {
		GatewayLatency   time.Duration
		GatewayMaxAmount fees.Money
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

// LoadDotEnv reads variables from the given .env files (".env" when none are
// given) into the process environment. Variables that are already set win.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("seed_sample_data", true)
	v.SetDefault("audit_retention_days", 90)

	// Overdue scan defaults
	v.SetDefault("overdue_scan_enabled", true)
	v.SetDefault("overdue_scan_schedule", DefaultOverdueScanSchedule)

	// Payment gateway defaults
	v.SetDefault("payment_gateway_latency", "0s")
	v.SetDefault("payment_gateway_max_amount", DefaultGatewayMaxAmount)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			SeedData: v.GetBool("SEED_SAMPLE_DATA"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		OverdueScan: OverdueScan{
			Enabled:  v.GetBool("OVERDUE_SCAN_ENABLED"),
			Schedule: v.GetString("OVERDUE_SCAN_SCHEDULE"),
		},
		Payment: Payment{
			GatewayLatency:   v.GetDuration("PAYMENT_GATEWAY_LATENCY"),
			GatewayMaxAmount: getMoney(v, "PAYMENT_GATEWAY_MAX_AMOUNT", DefaultGatewayMaxAmount),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}

// getMoney reads a decimal amount, falling back to def when the value does not parse.
func getMoney(v *viper.Viper, key, def string) fees.Money {
	amount, err := fees.ParseMoney(v.GetString(key))
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, v.GetString(key), def)
		amount, _ = fees.ParseMoney(def)
	}
	return amount
}
