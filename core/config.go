package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug                     bool
		TestMode                  bool
		Env                       string
		Build                     string
		AppName                   string
		SecretKey                 string
		PublicBaseURL             string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Email    EmailConfig
		PayPal   PayPalConfig
		Flags    Flags
	}

	ServerConfig struct {
		Host                  string
		DebugHost             string
		ShutdownTimeout       time.Duration
		SessionTTL            time.Duration
		JWTExpirationDelta    time.Duration
		RegistrationRateLimit float64 // requests per minute per IP
	}

	DatabaseConfig struct {
		URL    string
		Driver string // postgres | pgx
	}

	RedisConfig struct {
		URL string
	}

	EmailConfig struct {
		SendgridAPIKey string
		Notifications  bool
		From           string
		Admin          string
		Coaches        []string
	}

	PayPalConfig struct {
		ClientID     string
		ClientSecret string
	}
)

// NewConfig reads the configuration from the environment.
// A `config/.env.<env>` file is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(envOr("CONFIG_DIR", "config"), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("app_name", "Cricket Academy")
	v.SetDefault("secret_key", "7q#n1-x4uf%k2m)b9^s0cz=@hv+e8w&r!t3dj6(ya5lgp_o")
	v.SetDefault("public_base_url", "http://localhost:8000")
	v.SetDefault("password_reset_timeout_delta", 3*24*time.Hour)
	v.SetDefault("host", ":8000")
	v.SetDefault("debug_host", ":4000")
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("jwt_expiration_delta", 24*time.Hour)
	v.SetDefault("registration_rate_limit", 5.0)
	v.SetDefault("database_url", "")
	v.SetDefault("database_driver", "postgres")
	v.SetDefault("redis_url", "")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("email_notifications", true)
	v.SetDefault("from_email", "noreply@localhost")
	v.SetDefault("admin_email", "")
	v.SetDefault("coach_emails", "")
	v.SetDefault("paypal_client_id", "")
	v.SetDefault("paypal_client_secret", "")
	v.SetDefault("require_admin_approval_for_parents", false)
	v.SetDefault("feature_go_live", false)
	v.SetDefault("local_admin_bypass", false)
	v.SetDefault("rollbar_token", "")
	v.AutomaticEnv()

	conf := &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  env == "TEST",
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("app_name"),
		SecretKey:                 v.GetString("secret_key"),
		PublicBaseURL:             strings.TrimRight(v.GetString("public_base_url"), "/"),
		RollbarToken:              v.GetString("rollbar_token"),
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		Server: ServerConfig{
			Host:                  v.GetString("host"),
			DebugHost:             v.GetString("debug_host"),
			ShutdownTimeout:       v.GetDuration("shutdown_timeout"),
			SessionTTL:            v.GetDuration("session_ttl"),
			JWTExpirationDelta:    v.GetDuration("jwt_expiration_delta"),
			RegistrationRateLimit: v.GetFloat64("registration_rate_limit"),
		},
		Database: DatabaseConfig{
			URL:    v.GetString("database_url"),
			Driver: v.GetString("database_driver"),
		},
		Redis: RedisConfig{URL: v.GetString("redis_url")},
		Email: EmailConfig{
			SendgridAPIKey: v.GetString("sendgrid_api_key"),
			Notifications:  v.GetBool("email_notifications"),
			From:           v.GetString("from_email"),
			Admin:          CleanString(v.GetString("admin_email"), true /* lower */),
			Coaches:        SplitCSV(v.GetString("coach_emails")),
		},
		PayPal: PayPalConfig{
			ClientID:     v.GetString("paypal_client_id"),
			ClientSecret: v.GetString("paypal_client_secret"),
		},
	}
	conf.Flags = Flags{
		EmailNotifications:             conf.Email.Notifications,
		RequireAdminApprovalForParents: v.GetBool("require_admin_approval_for_parents"),
		GoLive:                         v.GetBool("feature_go_live"),
		LocalAdminBypass:               v.GetBool("local_admin_bypass"),
	}
	return conf
}

// NewTestConfig returns a Config suitable for tests: no external services, in-memory storage.
func NewTestConfig() *Config {
	return &Config{
		Debug:                     false,
		TestMode:                  true,
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "Cricket Academy",
		SecretKey:                 "test-secret-key",
		PublicBaseURL:             "http://academy.test",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			ShutdownTimeout:       time.Second,
			SessionTTL:            time.Hour,
			JWTExpirationDelta:    time.Hour,
			RegistrationRateLimit: 1000,
		},
		Email: EmailConfig{
			Notifications: true,
			From:          "noreply@academy.test",
			Admin:         "admin@academy.test",
			Coaches:       []string{"coach1@academy.test", "coach2@academy.test"},
		},
		Flags: Flags{EmailNotifications: true},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.Email.From}
}

// StaffEmails returns the admin and coach notification addresses, without duplicates.
func (c *Config) StaffEmails() []mail.Address {
	seen := make(map[string]bool)
	addrs := make([]mail.Address, 0, len(c.Email.Coaches)+1)
	for _, a := range append([]string{c.Email.Admin}, c.Email.Coaches...) {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		addrs = append(addrs, mail.Address{Address: a})
	}
	return addrs
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
