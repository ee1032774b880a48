package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Credential store backends accepted by CREDENTIAL_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowOrigin []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-pro"`
	GeminiTimeout   time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`
	GeminiTransport string        `env:"GEMINI_TRANSPORT" envDefault:"rest"`
	CredentialStore string        `env:"CREDENTIAL_STORE" envDefault:"memory"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"./data/cv-improver.db"`
	RedisURL        string        `env:"REDIS_URL"`
	// CredentialSecret enables sealing of stored API keys when non-empty.
	CredentialSecret string `env:"CREDENTIAL_SECRET"`
	SessionCookie    string `env:"SESSION_COOKIE" envDefault:"cvi_session"`
	CookieSecure     bool   `env:"COOKIE_SECURE" envDefault:"false"`
	// ExportFontPath replaces the embedded export font.
	ExportFontPath  string `env:"EXPORT_FONT_PATH"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Printf("config: %v; falling back to defaults where possible", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.CredentialStore = normalizeStoreType(cfg.CredentialStore)
	cfg.GeminiTransport = normalizeTransport(cfg.GeminiTransport)
	cfg.CORSAllowOrigin = splitAndTrim(cfg.CORSAllowOrigin)

	if cfg.Env == "production" && cfg.CredentialStore == StoreMemory {
		log.Printf("CREDENTIAL_STORE=memory loses stored API keys on restart")
	}
	return cfg
}

// IsDevLike reports whether the environment is a local development one.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return StorePostgres
	case "sqlite":
		return StoreSQLite
	case "redis":
		return StoreRedis
	default:
		return StoreMemory
	}
}

func normalizeTransport(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "sdk") {
		return "sdk"
	}
	return "rest"
}
