package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const defaultConfigFile = "config.json"

// Environment overrides applied on top of the config file.
const (
	EnvOrtLib    = "DENTAI_ORT_LIB"
	EnvModelPath = "DENTAI_MODEL"
	EnvTopK      = "DENTAI_TOPK"
)

// LoadConfig loads configuration from the given path or the default
// config.json. A missing file yields defaults without error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk atomically.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// FromEnv overlays environment variables onto a loaded configuration.
// Callers load .env (godotenv) before this so local overrides participate.
// An unparsable DENTAI_TOPK is ignored.
func FromEnv(cfg Config) Config {
	if v := os.Getenv(EnvOrtLib); v != "" {
		cfg.Engine.OrtLib = v
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		cfg.Engine.ModelPath = v
	}
	if v := os.Getenv(EnvTopK); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			cfg.TopK = k
		}
	}
	cfg.ApplyDefaults()
	return cfg
}
