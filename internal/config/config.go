package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	LogLevel    string
	LogFormat   string
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy  bool
	RateLimits  RateLimits
}

type RateLimits struct {
	AuthPerMinute  int
	WritePerMinute int
}

// Load reads the environment, after merging in a .env file from the working
// directory when one exists. Variables already set take precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	addr := envString("BLOGUP_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:        addr,
		DatabaseURL: envString("DATABASE_URL", "blogup.db"),
		JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
		TokenTTL:    envDuration("BLOGUP_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:  envInt("BLOGUP_BCRYPT_COST", bcrypt.DefaultCost),
		LogLevel:    envString("BLOGUP_LOG_LEVEL", "info"),
		LogFormat:   envString("BLOGUP_LOG_FORMAT", "json"),
		TrustProxy:  envBool("BLOGUP_TRUST_PROXY", false),
		RateLimits: RateLimits{
			AuthPerMinute:  envInt("BLOGUP_RL_AUTH_PER_MIN", 20),
			WritePerMinute: envInt("BLOGUP_RL_WRITE_PER_MIN", 60),
		},
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET_KEY must be set")
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
