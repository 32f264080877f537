package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults
const (
	DefaultAddr          = ":8080"
	DefaultDBPath        = "fitness.db"
	DefaultAppID         = "pe-system-v1"
	DefaultAIBaseURL     = "https://openrouter.ai/api/v1"
	DefaultAIModel       = "google/gemini-2.0-flash-001"
	DefaultSlowRequestMs = 500
	DefaultSlowQueryMs   = 50
	DefaultWriteTimeout  = 10 * time.Second
	DefaultAITimeout     = 60 * time.Second
)

// Config errors
var (
	ErrCSRFKeyRequired = errors.New("FITNESS_CSRF_KEY is required in production")
	ErrCSRFKeyFormat   = errors.New("FITNESS_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrAdminPartial    = errors.New("FITNESS_ADMIN_EMAIL and FITNESS_ADMIN_PASSWORD must be set together")
	ErrInvalidEnv      = errors.New("FITNESS_ENV must be development or production")
)

// Config holds every deployment setting. It is read once at startup.
type Config struct {
	Addr           string
	Env            string
	LogLevel       slog.Level
	DBPath         string
	MongoURI       string
	MongoDB        string
	AppID          string
	AIKey          string
	AIBaseURL      string
	AIModel        string
	AITimeout      time.Duration
	CSRFKeyHex     string
	TrustedOrigins []string
	AdminEmail     string
	AdminPass      string
	GoogleID       string
	SlowRequest    time.Duration
	SlowQuery      time.Duration
	WriteTimeout   time.Duration
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a lookup function.
// PRE: lookup behaves like os.LookupEnv
// POST: every unset key takes its default; no credential has a default
func FromLookup(lookup func(string) (string, bool)) Config {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}
	return Config{
		Addr:           get("FITNESS_ADDR", DefaultAddr),
		Env:            get("FITNESS_ENV", EnvDevelopment),
		LogLevel:       parseLevel(get("FITNESS_LOG_LEVEL", "info")),
		DBPath:         get("FITNESS_DB_PATH", DefaultDBPath),
		MongoURI:       get("FITNESS_MONGO_URI", ""),
		MongoDB:        get("FITNESS_MONGO_DB", ""),
		AppID:          get("FITNESS_APP_ID", DefaultAppID),
		AIKey:          get("FITNESS_AI_KEY", ""),
		AIBaseURL:      strings.TrimRight(get("FITNESS_AI_BASE_URL", DefaultAIBaseURL), "/"),
		AIModel:        get("FITNESS_AI_MODEL", DefaultAIModel),
		AITimeout:      DefaultAITimeout,
		CSRFKeyHex:     get("FITNESS_CSRF_KEY", ""),
		TrustedOrigins: splitList(get("FITNESS_TRUSTED_ORIGINS", "")),
		AdminEmail:     get("FITNESS_ADMIN_EMAIL", ""),
		AdminPass:      get("FITNESS_ADMIN_PASSWORD", ""),
		GoogleID:       get("GOOGLE_CLIENT_ID", ""),
		SlowRequest:    millis(get("FITNESS_SLOW_REQUEST_MS", ""), DefaultSlowRequestMs),
		SlowQuery:      millis(get("FITNESS_SLOW_QUERY_MS", ""), DefaultSlowQueryMs),
		WriteTimeout:   DefaultWriteTimeout,
	}
}

// Validate rejects configurations that cannot run safely.
func (c Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return ErrInvalidEnv
	}
	if c.CSRFKeyHex == "" && c.Production() {
		return ErrCSRFKeyRequired
	}
	if c.CSRFKeyHex != "" {
		if key, err := hex.DecodeString(c.CSRFKeyHex); err != nil || len(key) != 32 {
			return ErrCSRFKeyFormat
		}
	}
	if (c.AdminEmail == "") != (c.AdminPass == "") {
		return ErrAdminPartial
	}
	return nil
}

// Production reports whether the deployment is production.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// SeedAdmin reports whether an admin account should be seeded.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPass != ""
}

// CSRFKey returns the configured key, or a random one outside production.
// PRE: Validate returned nil
func (c Config) CSRFKey() ([]byte, error) {
	if c.CSRFKeyHex != "" {
		return hex.DecodeString(c.CSRFKeyHex)
	}
	if c.Production() {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "set FITNESS_CSRF_KEY so forms survive restarts")
	return key, nil
}

// LogValue hides secrets when the config is logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("env", c.Env),
		slog.String("db_path", c.DBPath),
		slog.Bool("mongo", c.MongoURI != ""),
		slog.String("app_id", c.AppID),
		slog.String("ai_model", c.AIModel),
		slog.Bool("ai_key_configured", c.AIKey != ""),
		slog.Bool("google_sign_in", c.GoogleID != ""),
		slog.Bool("seed_admin", c.SeedAdmin()),
	)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func millis(s string, fallback int) time.Duration {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return time.Duration(fallback) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
