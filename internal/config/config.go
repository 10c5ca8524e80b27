// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"commit-lens/internal/model"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr            string        `mapstructure:"HTTP_ADDR"`
	DBURL               string        `mapstructure:"DB_URL"`
	MigrationsPath      string        `mapstructure:"MIGRATIONS_PATH"`
	GithubAppID         int64         `mapstructure:"GITHUB_APP_ID"`
	GithubAppPrivateKey string        `mapstructure:"GITHUB_APP_PRIVATE_KEY"`
	GithubAppSlug       string        `mapstructure:"GITHUB_APP_SLUG"`
	GithubWebhookSecret string        `mapstructure:"GITHUB_WEBHOOK_SECRET"`
	GithubAPIURL        string        `mapstructure:"GITHUB_API_URL"`
	GithubWebURL        string        `mapstructure:"GITHUB_WEB_URL"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	FrontendURL         string        `mapstructure:"FRONTEND_URL"`
	UpstreamTimeout     time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	SyncInterval        time.Duration `mapstructure:"SYNC_INTERVAL"`
	TokenCacheEnabled   bool          `mapstructure:"TOKEN_CACHE_ENABLED"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com/")
	v.SetDefault("GITHUB_WEB_URL", "https://github.com")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")
	v.SetDefault("SYNC_INTERVAL", "1h")
	v.SetDefault("TOKEN_CACHE_ENABLED", true)

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"DB_URL", "GITHUB_APP_ID", "GITHUB_APP_PRIVATE_KEY", "GITHUB_APP_SLUG", "GITHUB_WEBHOOK_SECRET", "JWT_SECRET"} {
		// Unmarshal only sees keys viper already knows about.
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Private keys pasted into env files usually carry escaped newlines.
	cfg.GithubAppPrivateKey = strings.ReplaceAll(cfg.GithubAppPrivateKey, `\n`, "\n")
	if !strings.HasSuffix(cfg.GithubAPIURL, "/") {
		cfg.GithubAPIURL += "/"
	}
	cfg.GithubWebURL = strings.TrimSuffix(cfg.GithubWebURL, "/")
	cfg.FrontendURL = strings.TrimSuffix(cfg.FrontendURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.GithubAppID <= 0 {
		return errors.New("GITHUB_APP_ID is a required configuration field")
	}
	if c.GithubAppPrivateKey == "" {
		return errors.New("GITHUB_APP_PRIVATE_KEY is a required configuration field")
	}
	if c.GithubAppSlug == "" {
		return errors.New("GITHUB_APP_SLUG is a required configuration field")
	}
	if c.GithubWebhookSecret == "" {
		return errors.New("GITHUB_WEBHOOK_SECRET is a required configuration field")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is a required configuration field")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be a positive duration")
	}
	if c.SyncInterval < 0 {
		return errors.New("SYNC_INTERVAL must not be negative")
	}
	return nil
}

// AppCredential returns the GitHub App identity described by the configuration.
func (c *Config) AppCredential() model.AppCredential {
	return model.AppCredential{
		AppID:         c.GithubAppID,
		PrivateKeyPEM: c.GithubAppPrivateKey,
	}
}
