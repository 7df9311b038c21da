// Package config loads and saves the compiler's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var exeDirCache string

// getExecutableDir returns the directory where the executable is located.
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

// Config is the full application configuration.
type Config struct {
	StorePath  string           `yaml:"store_path"`
	Session    SessionConfig    `yaml:"session,omitempty"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
	Pipeline   PipelineConfig   `yaml:"pipeline,omitempty"`
	Audit      AuditConfig      `yaml:"audit,omitempty"`
}

// SessionConfig configures the Redis-backed continuity cache. An empty
// address selects the in-memory cache.
type SessionConfig struct {
	RedisAddr  string `yaml:"redis_addr,omitempty"`
	TTLMinutes int    `yaml:"ttl_minutes,omitempty"`
}

// GenerationConfig configures the fill-in generation backend. An empty
// provider disables generation; the deterministic fallback then fills every
// creative slot.
type GenerationConfig struct {
	Provider       string `yaml:"provider,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	Model          string `yaml:"model,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// PipelineConfig holds compilation knobs.
type PipelineConfig struct {
	SceneParallelism int `yaml:"scene_parallelism,omitempty"`
}

// AuditConfig configures per-beat JSONL audit records.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir,omitempty"`
	RetentionDays int    `yaml:"retention_days,omitempty"`
	FilePrefix    string `yaml:"file_prefix,omitempty"`
}

// ConfigPath returns the config file location next to the executable.
func ConfigPath() string {
	return filepath.Join(getExecutableDir(), ".storyart", "config.yaml")
}

// DefaultConfig returns a usable offline configuration.
func DefaultConfig() *Config {
	return &Config{
		StorePath: filepath.Join(getExecutableDir(), ".storyart", "storyart.db"),
		Session: SessionConfig{
			TTLMinutes: 360,
		},
		Generation: GenerationConfig{
			TimeoutSeconds: 30,
		},
		Pipeline: PipelineConfig{
			SceneParallelism: 2,
		},
		Audit: AuditConfig{
			Enabled:       true,
			Dir:           filepath.Join(getExecutableDir(), ".storyart", "audit"),
			RetentionDays: 14,
			FilePrefix:    "beats",
		},
	}
}

// Load reads the config file, falling back to defaults when it does not
// exist, and applies environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STORYART_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("STORYART_REDIS_ADDR"); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := os.Getenv("STORYART_PROVIDER"); v != "" {
		cfg.Generation.Provider = v
	}
	if v := os.Getenv("STORYART_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("STORYART_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("STORYART_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
}

// Save writes the config file, creating its directory if needed.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
