package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	// TrustProxy honours X-Forwarded-For / X-Real-IP. Only set it behind a
	// proxy that overwrites those headers.
	TrustProxy bool

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string
	ModelTimeout time.Duration

	MaxDailyRequests int
	// AuthRateLimit is a ulule formatted rate ("20-M") applied per IP to
	// register and login.
	AuthRateLimit string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	// Palette overrides the grid's category colours when non-empty.
	Palette []string
}

// fileOverlay is the optional YAML file named by CONFIG_FILE. Any field set
// there wins over the environment.
type fileOverlay struct {
	GeminiModel      string   `yaml:"gemini_model"`
	MaxDailyRequests int      `yaml:"max_daily_requests"`
	AuthRateLimit    string   `yaml:"auth_rate_limit"`
	ModelTimeout     string   `yaml:"model_timeout"`
	Palette          []string `yaml:"palette"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":5001"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		TrustProxy:           getenv("TRUST_PROXY", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		GeminiAPIKey:         getenv("GEMINI_API_KEY", ""),
		GeminiModel:          getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		AuthRateLimit:        getenv("AUTH_RATE_LIMIT", "20-M"),
		RedisAddr:            getenv("REDIS_ADDR", ""),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		LogLevel:             getenv("LOG_LEVEL", "info"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.MaxDailyRequests, err = getenvInt("MAX_DAILY_REQUESTS", 3); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if v := getenv("MODEL_TIMEOUT", ""); v != "" {
		if cfg.ModelTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("MODEL_TIMEOUT: %w", err)
		}
	}

	if path := getenv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	// accounts need a signing key
	if cfg.DatabaseURL != "" && cfg.JWTSecret == "" {
		return cfg, errors.New("missing env: JWT_SECRET")
	}
	if cfg.MaxDailyRequests <= 0 {
		return cfg, errors.New("MAX_DAILY_REQUESTS must be positive")
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f fileOverlay
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.GeminiModel != "" {
		c.GeminiModel = f.GeminiModel
	}
	if f.MaxDailyRequests > 0 {
		c.MaxDailyRequests = f.MaxDailyRequests
	}
	if f.AuthRateLimit != "" {
		c.AuthRateLimit = f.AuthRateLimit
	}
	if f.ModelTimeout != "" {
		d, err := time.ParseDuration(f.ModelTimeout)
		if err != nil {
			return fmt.Errorf("model_timeout: %w", err)
		}
		c.ModelTimeout = d
	}
	if len(f.Palette) > 0 {
		c.Palette = f.Palette
	}
	return nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
