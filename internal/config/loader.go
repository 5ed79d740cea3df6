package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadYAML reads a YAML file, expands ${VAR} references and decodes it into out.
func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// LoadExchange reads an exchange config file.
func LoadExchange(path string) (*ExchangeConfig, error) {
	var cfg ExchangeConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadExchangeWithDefaults loads an exchange config and applies default values.
func LoadExchangeWithDefaults(path string) (*ExchangeConfig, error) {
	cfg, err := LoadExchange(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadExchangeAndValidate loads an exchange config, applies defaults, and validates.
func LoadExchangeAndValidate(path string) (*ExchangeConfig, error) {
	cfg, err := LoadExchangeWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadAgent reads an agent config file.
func LoadAgent(path string) (*AgentConfig, error) {
	var cfg AgentConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAgentWithDefaults loads an agent config and applies default values.
func LoadAgentWithDefaults(path string) (*AgentConfig, error) {
	cfg, err := LoadAgent(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadAgentAndValidate loads an agent config, applies defaults, and validates.
func LoadAgentAndValidate(path string) (*AgentConfig, error) {
	cfg, err := LoadAgentWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
