// Package config loads the YAML configuration for a triangle-counting
// process.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MachineID     string    `yaml:"machine_id"`
	Port          int       `yaml:"port"`
	IsCoordinator bool      `yaml:"is_coordinator"`
	Coordinator   string    `yaml:"coordinator,omitempty"`
	Algorithm     Algorithm `yaml:"algorithm"`
	Partitions    int       `yaml:"partitions"`
	Network       Network   `yaml:"network"`
}

type Algorithm struct {
	DataPath      string  `yaml:"data_path"`
	BufferHint    int     `yaml:"buffer_hint"`    // operator hint for per-peer slot sizing
	FalsePositive float64 `yaml:"false_positive"` // target Bloom false-positive rate
	VerifyHits    bool    `yaml:"verify_hits"`    // forwarded to the coordinator and partitions, which do not act on it; no exact re-check runs from this setting
}

type Network struct {
	Peers []Peer `yaml:"peers"`
}

type Peer struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if cfg.MachineID == "" {
		return nil, fmt.Errorf("machine_id is required")
	}
	if !cfg.IsCoordinator && cfg.Coordinator == "" {
		return nil, fmt.Errorf("coordinator address is required when not running as coordinator")
	}
	if cfg.IsCoordinator && cfg.Coordinator != "" {
		return nil, fmt.Errorf("cannot specify coordinator address when running as coordinator")
	}
	if cfg.Algorithm.FalsePositive <= 0 {
		cfg.Algorithm.FalsePositive = 0.01
	}
	if cfg.Algorithm.BufferHint <= 0 {
		cfg.Algorithm.BufferHint = 4096
	}

	return &cfg, nil
}

func LoadConfigFromEnv() *Config {
	return &Config{
		MachineID:     getEnv("MACHINE_ID", ""),
		Port:          getEnvInt("PORT", 8080),
		IsCoordinator: getEnvBool("IS_COORDINATOR", false),
		Coordinator:   getEnv("COORDINATOR", ""),
		Partitions:    getEnvInt("PARTITIONS", 4),
		Algorithm: Algorithm{
			DataPath:      getEnv("DATA_PATH", "data/sample_edges.csv"),
			BufferHint:    getEnvInt("BUFFER_HINT", 4096),
			FalsePositive: getEnvFloat("FALSE_POSITIVE", 0.01),
			VerifyHits:    getEnvBool("VERIFY_HITS", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
