package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("base url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Runtime.MaxRounds != 20 {
		t.Fatalf("max rounds = %d", cfg.Runtime.MaxRounds)
	}
	if cfg.Safety.CommandTimeoutMS != 120000 {
		t.Fatalf("command timeout = %d", cfg.Safety.CommandTimeoutMS)
	}
	if cfg.Safety.OutputLimitBytes != 1<<20 {
		t.Fatalf("output limit = %d", cfg.Safety.OutputLimitBytes)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
  "provider": {"model": "test-model", "api_key": "sk-test"},
  "runtime": {"max_rounds": 5},
  "safety": {"command_timeout_ms": 1000}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Model != "test-model" {
		t.Fatalf("model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
	// Unset fields keep their defaults.
	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("base url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Runtime.MaxRounds != 5 {
		t.Fatalf("max rounds = %d", cfg.Runtime.MaxRounds)
	}
	if cfg.Safety.CommandTimeoutMS != 1000 {
		t.Fatalf("command timeout = %d", cfg.Safety.CommandTimeoutMS)
	}
	if cfg.Safety.OutputLimitBytes != 1<<20 {
		t.Fatalf("output limit = %d", cfg.Safety.OutputLimitBytes)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", cfg.Provider.Model)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": {"api_key": "from-file"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.APIKey != "from-env" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("base url = %q", cfg.Provider.BaseURL)
	}
}
