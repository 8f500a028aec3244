package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

type RuntimeConfig struct {
	WorkspaceRoot string `json:"workspace_root"`
	MaxRounds     int    `json:"max_rounds"`
	SessionFile   string `json:"session_file"`
	HistoryFile   string `json:"history_file"`
	SystemPrompt  string `json:"system_prompt"`
}

type SafetyConfig struct {
	CommandTimeoutMS int `json:"command_timeout_ms"`
	OutputLimitBytes int `json:"output_limit_bytes"`
}

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Runtime  RuntimeConfig  `json:"runtime"`
	Safety   SafetyConfig   `json:"safety"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			TimeoutMS: 120000,
		},
		Runtime: RuntimeConfig{
			MaxRounds:   20,
			HistoryFile: ".chatcli_history",
		},
		Safety: SafetyConfig{
			CommandTimeoutMS: 120000,
			OutputLimitBytes: 1 << 20,
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment on top. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if envPath := strings.TrimSpace(os.Getenv("CHATCLI_CONFIG")); envPath != "" && strings.TrimSpace(path) == "" {
		path = envPath
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := mergeFile(&cfg, data); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

type fileConfig struct {
	Provider *ProviderConfig `json:"provider"`
	Runtime  *RuntimeConfig  `json:"runtime"`
	Safety   *SafetyConfig   `json:"safety"`
}

func mergeFile(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if fc.Provider != nil {
		mergeProvider(&cfg.Provider, *fc.Provider)
	}
	if fc.Runtime != nil {
		mergeRuntime(&cfg.Runtime, *fc.Runtime)
	}
	if fc.Safety != nil {
		if fc.Safety.CommandTimeoutMS > 0 {
			cfg.Safety.CommandTimeoutMS = fc.Safety.CommandTimeoutMS
		}
		if fc.Safety.OutputLimitBytes > 0 {
			cfg.Safety.OutputLimitBytes = fc.Safety.OutputLimitBytes
		}
	}
	return nil
}

func mergeProvider(dst *ProviderConfig, src ProviderConfig) {
	if strings.TrimSpace(src.BaseURL) != "" {
		dst.BaseURL = src.BaseURL
	}
	if strings.TrimSpace(src.Model) != "" {
		dst.Model = src.Model
	}
	if strings.TrimSpace(src.APIKey) != "" {
		dst.APIKey = src.APIKey
	}
	if src.TimeoutMS > 0 {
		dst.TimeoutMS = src.TimeoutMS
	}
}

func mergeRuntime(dst *RuntimeConfig, src RuntimeConfig) {
	if strings.TrimSpace(src.WorkspaceRoot) != "" {
		dst.WorkspaceRoot = src.WorkspaceRoot
	}
	if src.MaxRounds > 0 {
		dst.MaxRounds = src.MaxRounds
	}
	if strings.TrimSpace(src.SessionFile) != "" {
		dst.SessionFile = src.SessionFile
	}
	if strings.TrimSpace(src.HistoryFile) != "" {
		dst.HistoryFile = src.HistoryFile
	}
	if strings.TrimSpace(src.SystemPrompt) != "" {
		dst.SystemPrompt = src.SystemPrompt
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATCLI_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATCLI_MAX_ROUNDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Runtime.MaxRounds = n
		}
	}
}
