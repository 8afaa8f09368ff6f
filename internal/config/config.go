package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Payment
		Settlement
		Audit
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	// Payment configures the external payment-link provider.
	Payment struct {
		Endpoint        string // Payment-link creation endpoint
		CheckoutBaseURL string // Hosted checkout page; payment link is appended base64-encoded
		MerchantEmail   string
		AppToken        string
		AppSecret       string
		Description     string        // Product description sent with every payment link
		PublicBaseURL   string        // Base URL for success/failure callbacks back to us
		Timeout         time.Duration // HTTP timeout for provider calls
	}

	// Settlement configures purchase reconciliation.
	Settlement struct {
		PlatformFeeBps int           // Platform share in basis points (3000 = 30%). 0 (the default) disables the split.
		SweepEnabled   bool          // Periodically settle stale pending sales (default off)
		SweepSchedule  string        // Cron format: "*/10 * * * *" = every 10 minutes
		SweepGrace     time.Duration // Only sweep pending sales older than this
	}

	Audit struct {
		Dir           string
		RetentionDays int // Days to keep settlement audit events (default: 30)
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)

	// Payment provider defaults
	v.SetDefault("payment_endpoint", "https://paiement.seeds.cm/api/payment_link")
	v.SetDefault("payment_checkout_base_url", "https://flashsdk.seeds.cm/flash_checkout.html")
	v.SetDefault("payment_merchant_email", "")
	v.SetDefault("payment_app_token", "")
	v.SetDefault("payment_app_secret", "")
	v.SetDefault("payment_description", "Papers digital book purchase")
	v.SetDefault("payment_public_base_url", "http://localhost:8188")
	v.SetDefault("payment_timeout", "30s")

	// Settlement defaults. The fee split is off until product decides on a
	// platform share, so a settled sale credits the author the full price.
	// The sweep is also off: it settles pending sales with no payment
	// evidence, so it stays an operator opt-in (or `settle-pending` CLI).
	v.SetDefault("settlement_platform_fee_bps", 0)
	v.SetDefault("settlement_sweep_enabled", false)
	v.SetDefault("settlement_sweep_schedule", "*/10 * * * *")
	v.SetDefault("settlement_sweep_grace", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Payment: Payment{
			Endpoint:        v.GetString("PAYMENT_ENDPOINT"),
			CheckoutBaseURL: v.GetString("PAYMENT_CHECKOUT_BASE_URL"),
			MerchantEmail:   v.GetString("PAYMENT_MERCHANT_EMAIL"),
			AppToken:        v.GetString("PAYMENT_APP_TOKEN"),
			AppSecret:       v.GetString("PAYMENT_APP_SECRET"),
			Description:     v.GetString("PAYMENT_DESCRIPTION"),
			PublicBaseURL:   v.GetString("PAYMENT_PUBLIC_BASE_URL"),
			Timeout:         v.GetDuration("PAYMENT_TIMEOUT"),
		},
		Settlement: Settlement{
			PlatformFeeBps: v.GetInt("SETTLEMENT_PLATFORM_FEE_BPS"),
			SweepEnabled:   v.GetBool("SETTLEMENT_SWEEP_ENABLED"),
			SweepSchedule:  v.GetString("SETTLEMENT_SWEEP_SCHEDULE"),
			SweepGrace:     v.GetDuration("SETTLEMENT_SWEEP_GRACE"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
