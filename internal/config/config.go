// Package config handles configuration loading for the blog service.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minJWTSecretLength is the HS256 key size floor.
const minJWTSecretLength = 32

// maxPerPageCap bounds MAX_PER_PAGE.
const maxPerPageCap = 100

// CookieConfig controls how auth cookies are written.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Config holds all configuration for the blog service.
type Config struct {
	DatabaseURL      string
	DBMaxOpenConns   int
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	Port             string
	Environment      string
	LogLevel         slog.Level
	AllowedOrigins   []string
	Cookie           CookieConfig
	DefaultPerPage   int
	MaxPerPage       int
}

// Load reads configuration from environment variables, after applying
// a .env file if one is found in the working directory or its parents.
func Load() (*Config, error) {
	loadDotenv()

	databaseURL, err := getEnvRequired("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	redisHost, err := getEnvRequired("REDIS_HOST")
	if err != nil {
		return nil, err
	}
	jwtSecret, err := getEnvRequired("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(jwtSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}

	maxPerPage := min(max(getInt("MAX_PER_PAGE", maxPerPageCap), 1), maxPerPageCap)
	defaultPerPage := min(max(getInt("DEFAULT_PER_PAGE", 10), 1), maxPerPage)

	return &Config{
		DatabaseURL:      databaseURL,
		DBMaxOpenConns:   getInt("DB_MAX_OPEN_CONNS", 10),
		RedisHost:        redisHost,
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		JWTSecret:        jwtSecret,
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		Port:             getEnv("PORT", "8085"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
		Cookie: CookieConfig{
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Path:     "/",
			Secure:   getEnv("COOKIE_SECURE", "false") == "true",
			SameSite: parseSameSite(getEnv("COOKIE_SAMESITE", "lax")),
		},
		DefaultPerPage: defaultPerPage,
		MaxPerPage:     maxPerPage,
	}, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			// real environment wins over the file
			_ = godotenv.Load(p)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

func getInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimRight(strings.TrimSpace(part), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}
