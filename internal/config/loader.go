package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadInvaders loads the invaders table.
// Search order: customPath -> ~/.arcade/configs/invaders.yaml -> ./configs/invaders.yaml -> embedded default
//
// A custom path must exist, parse and validate. Files found on the implicit
// search path are skipped when they fail to parse.
func LoadInvaders(customPath string) (InvadersConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return InvadersConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return InvadersConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{"configs/invaders.yaml"}
	if userCfgPath := userConfigPath("invaders.yaml"); userCfgPath != "" {
		candidates = append([]string{userCfgPath}, candidates...)
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	if cfg, err := Parse(defaultInvadersYAML); err == nil {
		return cfg, nil
	}
	return DefaultInvadersConfig(), nil // Fallback to hardcoded if embed fails
}

// Parse decodes and validates a YAML table. Fields missing from the document
// keep their built-in default values; unknown fields are rejected.
func Parse(data []byte) (InvadersConfig, error) {
	cfg := DefaultInvadersConfig()
	// Lists are replaced, not merged.
	cfg.Shields.Positions = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return InvadersConfig{}, fmt.Errorf("yaml: %w", err)
	}
	if cfg.Shields.Positions == nil {
		cfg.Shields.Positions = DefaultInvadersConfig().Shields.Positions
	}
	if err := cfg.Validate(); err != nil {
		return InvadersConfig{}, err
	}
	return cfg, nil
}

// Marshal renders a table as YAML.
func Marshal(cfg InvadersConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}
