package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Load reads the config file at path over the defaults, applies environment
// overrides and validates the result. An empty path uses defaults only.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation, for callers that layer more overrides
// on top before calling Validate themselves.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) error {
	if device := os.Getenv("ACTIVESCAN_DEVICE"); device != "" {
		cfg.Device.Selector = device
	}

	if channels := os.Getenv("ACTIVESCAN_CHANNELS"); channels != "" {
		cfg.Scan.Channels = channels
	}

	if hop := os.Getenv("ACTIVESCAN_HOP_INTERVAL_MS"); hop != "" {
		ms, err := strconv.Atoi(hop)
		if err != nil {
			return fmt.Errorf("%w: ACTIVESCAN_HOP_INTERVAL_MS=%q", ErrInvalidValue, hop)
		}
		cfg.Scan.HopIntervalMs = ms
	}

	if logFile := os.Getenv("ACTIVESCAN_LOG_FILE"); logFile != "" {
		cfg.Output.LogFile.Path = logFile
	}

	if broker := os.Getenv("ACTIVESCAN_MQTT_BROKER"); broker != "" {
		cfg.Output.MQTT.Broker = broker
	}

	if listen := os.Getenv("ACTIVESCAN_WS_LISTEN"); listen != "" {
		cfg.Output.WebSocket.Listen = listen
	}

	return nil
}

// Save writes the configuration to path as YAML
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
