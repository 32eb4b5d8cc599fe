package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	content := `# local overrides
CRM_API_URL=http://localhost:9001
export LOG_LEVEL=debug
CACHE_TTL = "90s"
JWT_SECRET='s3cret'

not a pair
ANALYTICS_API_URL=http://localhost:9002
`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"CRM_API_URL", "LOG_LEVEL", "CACHE_TTL", "JWT_SECRET"} {
		t.Setenv(key, "") // register restore, then clear
		os.Unsetenv(key)
	}
	// Pre-set env wins, even when empty.
	t.Setenv("ANALYTICS_API_URL", "")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	want := map[string]string{
		"CRM_API_URL":       "http://localhost:9001",
		"LOG_LEVEL":         "debug",
		"CACHE_TTL":         "90s",
		"JWT_SECRET":        "s3cret",
		"ANALYTICS_API_URL": "",
	}
	for key, expected := range want {
		if got := os.Getenv(key); got != expected {
			t.Errorf("%s: expected %q, got %q", key, expected, got)
		}
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line     string
		key, val string
		wantPair bool
	}{
		{"PORT=8080", "PORT", "8080", true},
		{"export PORT=8080", "PORT", "8080", true},
		{`NAME="quoted value"`, "NAME", "quoted value", true},
		{"  SPACED = padded  ", "SPACED", "padded", true},
		{"EMPTY=", "EMPTY", "", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"no equals sign", "", "", false},
		{"=orphan", "", "", false},
	}

	for _, tt := range tests {
		key, val, ok := parseEnvLine(tt.line)
		if ok != tt.wantPair || key != tt.key || val != tt.val {
			t.Errorf("parseEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, key, val, ok, tt.key, tt.val, tt.wantPair)
		}
	}
}
