package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingDatabaseURL = errors.New("config: missing required env DATABASE_URL")
	ErrMissingJWTSecret   = errors.New("config: missing required env JWT_SECRET")
)

type AppConfig struct {
	Env             string        // local, development, production
	Port            string        // HTTP listen port
	DatabaseURL     string        // postgres connection string
	JWTSecret       string        // HS256 key for session tokens
	SessionTTL      time.Duration // lifetime of a session cookie
	CookieSecure    bool          // set Secure on the session cookie
	UploadDir       string        // directory for profile images, served at /uploads
	CORSOrigins     []string      // origins allowed to send credentialed requests
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// Load reads .env (if present) and the process environment.
func Load() (AppConfig, error) {
	_ = godotenv.Load() // load .env if present

	sessionTTL, err := time.ParseDuration(envOr("SESSION_TTL", "24h"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: parse SESSION_TTL: %w", err)
	}
	shutdown, err := time.ParseDuration(envOr("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: parse SHUTDOWN_TIMEOUT: %w", err)
	}
	secure, err := strconv.ParseBool(envOr("COOKIE_SECURE", "false"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: parse COOKIE_SECURE: %w", err)
	}

	cfg := AppConfig{
		Env:             envOr("APP_ENV", "production"),
		Port:            envOr("PORT", "5000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionTTL:      sessionTTL,
		CookieSecure:    secure,
		UploadDir:       envOr("UPLOAD_DIR", "uploads"),
		CORSOrigins:     splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),
		ShutdownTimeout: shutdown,
	}

	if cfg.DatabaseURL == "" {
		return AppConfig{}, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return AppConfig{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// MustLoad is Load that panics on a bad configuration.
func MustLoad() AppConfig {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func envOr(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

// splitList parses a comma-separated list, dropping blanks and trailing slashes.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
