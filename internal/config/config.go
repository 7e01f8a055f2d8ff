package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Addr string

	// DatabaseDSN is optional; without it reading lists live in memory.
	DatabaseDSN   string
	MigrationsDir string

	OpenLibraryBaseURL   string
	OpenLibraryCoversURL string
	OpenLibraryUserAgent string
	OpenLibraryRPS       float64
	OpenLibraryTimeout   time.Duration

	CookieHashKey      []byte
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	LogLevel string
}

// LoadEnvFiles reads .env then .env.local. Variables already set in the
// process environment are never overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                  getEnv("APP_ENV", EnvDevelopment),
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseDSN:          os.Getenv("DB_DSN"),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "db/migrations"),
		OpenLibraryBaseURL:   getEnv("OPENLIBRARY_BASE_URL", "https://openlibrary.org"),
		OpenLibraryCoversURL: getEnv("OPENLIBRARY_COVERS_URL", "https://covers.openlibrary.org"),
		OpenLibraryUserAgent: getEnv("OPENLIBRARY_USER_AGENT", "BookWorld/1.0"),
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.OpenLibraryRPS, err = getFloat("OPENLIBRARY_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.OpenLibraryTimeout, err = getDuration("OPENLIBRARY_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return Config{}, err
	}

	key := os.Getenv("COOKIE_HASH_KEY")
	switch {
	case key != "":
		cfg.CookieHashKey, err = decodeKey(key)
		if err != nil {
			return Config{}, err
		}
	case cfg.IsProduction():
		return Config{}, fmt.Errorf("missing required environment variable: COOKIE_HASH_KEY")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative number", key, v)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative integer", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive duration", key, v)
	}
	return d, nil
}

// decodeKey accepts a hex key and falls back to the raw bytes.
func decodeKey(v string) ([]byte, error) {
	if b, err := hex.DecodeString(v); err == nil {
		v = string(b)
	}
	if len(v) < 32 {
		return nil, fmt.Errorf("COOKIE_HASH_KEY must be at least 32 bytes")
	}
	return []byte(v), nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
