package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment   string
	ServerAddress string
	DatabasePath  string
	FrontendURL   string
	SeedFile      string
	JWT           JWTConfig
	GitHub        GitHubOAuthConfig
	Lockout       LockoutConfig
	Cookie        CookieConfig
	CORS          CORSConfig
	BcryptCost    int
}

// JWTConfig holds token signing configuration. Access and refresh tokens are
// signed with distinct secrets so one can never pass as the other.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// GitHubOAuthConfig holds GitHub OAuth configuration
type GitHubOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string // e.g. http://localhost:8080/auth/github/callback
}

// Enabled reports whether GitHub login is configured
func (c GitHubOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// LockoutConfig controls the failed-login lockout policy
type LockoutConfig struct {
	MaxAttempts int           // consecutive failures before lockout
	Window      time.Duration // rolling window in which failures count as consecutive
	Duration    time.Duration // how long the lockout lasts
}

// CookieConfig controls auth cookie attributes
type CookieConfig struct {
	Domain string
	Secure bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:8080")

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "./data/codetutor.db"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		SeedFile:      os.Getenv("SEED_FILE"),
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-access-secret"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh-secret"),
			Issuer:        getEnv("JWT_ISSUER", "codetutor"),
			Audience:      getEnv("JWT_AUDIENCE", "codetutor-api"),
			AccessTTL:     getDuration("JWT_ACCESS_TTL", time.Hour),
			RefreshTTL:    getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		GitHub: GitHubOAuthConfig{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			CallbackURL:  getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/auth/github/callback"),
		},
		Lockout: LockoutConfig{
			MaxAttempts: getInt("LOCKOUT_MAX_ATTEMPTS", 5),
			Window:      getDuration("LOCKOUT_WINDOW", 15*time.Minute),
			Duration:    getDuration("LOCKOUT_DURATION", 15*time.Minute),
		},
		Cookie: CookieConfig{
			Domain: getEnv("AUTH_COOKIE_DOMAIN", "localhost"),
			Secure: getEnv("AUTH_SECURE_COOKIE", "false") == "true",
		},
		CORS: CORSConfig{
			AllowedOrigins: parseCommaSeparatedList(corsOrigins),
		},
		BcryptCost: getInt("BCRYPT_COST", 12),
	}

	if cfg.Environment == "production" {
		if cfg.JWT.AccessSecret == "change-me-access-secret" || cfg.JWT.RefreshSecret == "change-me-refresh-secret" {
			return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set in production")
		}
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return cfg, nil
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
