package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

const validKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// TestFromLookup_Defaults tests the defaults of an empty environment.
func TestFromLookup_Defaults(t *testing.T) {
	c := FromLookup(lookupFrom(nil))

	if c.Addr != DefaultAddr || c.Env != EnvDevelopment || c.DBPath != DefaultDBPath {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.AppID != "pe-system-v1" || c.AIModel != "google/gemini-2.0-flash-001" {
		t.Errorf("AppID/AIModel = %q/%q", c.AppID, c.AIModel)
	}
	if c.AIBaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("AIBaseURL = %q", c.AIBaseURL)
	}
	if c.AIKey != "" || c.AdminPass != "" {
		t.Error("credentials must have no default")
	}
	if c.SlowQuery != 50*time.Millisecond || c.SlowRequest != 500*time.Millisecond {
		t.Errorf("SlowQuery/SlowRequest = %v/%v", c.SlowQuery, c.SlowRequest)
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestFromLookup_Overrides tests that set values win and blanks fall back.
func TestFromLookup_Overrides(t *testing.T) {
	c := FromLookup(lookupFrom(map[string]string{
		"FITNESS_ADDR":            ":9090",
		"FITNESS_AI_KEY":          " sk-or-test ",
		"FITNESS_AI_BASE_URL":     "http://localhost:4000/v1/",
		"FITNESS_APP_ID":          "   ",
		"FITNESS_LOG_LEVEL":       "debug",
		"FITNESS_SLOW_QUERY_MS":   "not-a-number",
		"FITNESS_TRUSTED_ORIGINS": "pe.school.edu.hk, ,www.school.edu.hk",
	}))
	if len(c.TrustedOrigins) != 2 || c.TrustedOrigins[1] != "www.school.edu.hk" {
		t.Errorf("TrustedOrigins = %q", c.TrustedOrigins)
	}
	if c.Addr != ":9090" {
		t.Errorf("Addr = %q", c.Addr)
	}
	if c.AIKey != "sk-or-test" {
		t.Errorf("AIKey = %q, want trimmed", c.AIKey)
	}
	if c.AIBaseURL != "http://localhost:4000/v1" {
		t.Errorf("AIBaseURL = %q, want trailing slash trimmed", c.AIBaseURL)
	}
	if c.AppID != DefaultAppID {
		t.Errorf("AppID = %q, want default for blank", c.AppID)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
	if c.SlowQuery != DefaultSlowQueryMs*time.Millisecond {
		t.Errorf("SlowQuery = %v", c.SlowQuery)
	}
}

// TestValidate tests each rejection rule.
func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"production without key", map[string]string{"FITNESS_ENV": "production"}, ErrCSRFKeyRequired},
		{"production with key", map[string]string{"FITNESS_ENV": "production", "FITNESS_CSRF_KEY": validKey}, nil},
		{"short key", map[string]string{"FITNESS_CSRF_KEY": "abcd"}, ErrCSRFKeyFormat},
		{"bad env", map[string]string{"FITNESS_ENV": "staging"}, ErrInvalidEnv},
		{"admin email only", map[string]string{"FITNESS_ADMIN_EMAIL": "pe@school.edu.hk"}, ErrAdminPartial},
		{"admin pair", map[string]string{"FITNESS_ADMIN_EMAIL": "pe@school.edu.hk", "FITNESS_ADMIN_PASSWORD": "long enough pass"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := FromLookup(lookupFrom(tt.env)).Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestCSRFKey tests configured and generated keys.
func TestCSRFKey(t *testing.T) {
	c := FromLookup(lookupFrom(map[string]string{"FITNESS_CSRF_KEY": validKey}))
	key, err := c.CSRFKey()
	if err != nil || len(key) != 32 || key[1] != 0x11 {
		t.Errorf("CSRFKey = %x, %v", key, err)
	}

	dev := FromLookup(lookupFrom(nil))
	k1, err := dev.CSRFKey()
	if err != nil || len(k1) != 32 {
		t.Fatalf("dev CSRFKey = %x, %v", k1, err)
	}
	k2, _ := dev.CSRFKey()
	if string(k1) == string(k2) {
		t.Error("generated keys should differ between calls")
	}
}

// TestLogValue_HidesSecrets tests that credentials never reach logs.
func TestLogValue_HidesSecrets(t *testing.T) {
	c := FromLookup(lookupFrom(map[string]string{
		"FITNESS_AI_KEY":         "sk-or-secret",
		"FITNESS_ADMIN_PASSWORD": "hunter2hunter2",
		"FITNESS_CSRF_KEY":       validKey,
	}))
	rendered := c.LogValue().String()
	for _, secret := range []string{"sk-or-secret", "hunter2hunter2", validKey} {
		if strings.Contains(rendered, secret) {
			t.Errorf("log value leaks %q: %s", secret, rendered)
		}
	}
}

// TestLoad_DotEnv tests that a .env file fills unset keys.
func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FITNESS_APP_ID=dotenv-app\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("FITNESS_APP_ID", "")
	os.Unsetenv("FITNESS_APP_ID")

	c := Load(path)
	if c.AppID != "dotenv-app" {
		t.Errorf("AppID = %q, want dotenv-app", c.AppID)
	}
}
