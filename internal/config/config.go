package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded from the environment with
// an optional .env file for local development.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	CookieSecure bool
	BaseURL      string

	GitHubAppID          int64
	GitHubPrivateKeyPath string
	GitHubOrganization   string
	OAuthClientID        string
	OAuthClientSecret    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists).
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 envOrDefault("PORT", "8080"),
		DatabasePath:         envOrDefault("DATABASE_PATH", "git-learner.db"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CookieSecure:         os.Getenv("COOKIE_SECURE") != "false",
		BaseURL:              envOrDefault("BASE_URL", "http://localhost:8080"),
		GitHubPrivateKeyPath: os.Getenv("GITHUB_PRIVATE_KEY_PATH"),
		GitHubOrganization:   os.Getenv("GITHUB_ORGANIZATION"),
		OAuthClientID:        os.Getenv("GITHUB_OAUTH_CLIENT_ID"),
		OAuthClientSecret:    os.Getenv("GITHUB_OAUTH_CLIENT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if cfg.GitHubPrivateKeyPath == "" {
		return nil, fmt.Errorf("GITHUB_PRIVATE_KEY_PATH environment variable is required")
	}
	if cfg.GitHubOrganization == "" {
		return nil, fmt.Errorf("GITHUB_ORGANIZATION environment variable is required")
	}
	if cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "" {
		return nil, fmt.Errorf("GITHUB_OAUTH_CLIENT_ID and GITHUB_OAUTH_CLIENT_SECRET are required")
	}

	appID := os.Getenv("GITHUB_APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("GITHUB_APP_ID environment variable is required")
	}
	parsed, err := strconv.ParseInt(appID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_APP_ID: %w", err)
	}
	cfg.GitHubAppID = parsed

	return cfg, nil
}

// RedirectURL is the OAuth callback URL derived from the base URL.
func (c *Config) RedirectURL() string {
	return c.BaseURL + "/auth/callback"
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
