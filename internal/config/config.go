// Package config loads fitout's application settings and its pipeline/catalog
// definition.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvDatabase  = "FITOUT_DB"
	EnvPipeline  = "FITOUT_PIPELINE"
	EnvListen    = "FITOUT_LISTEN"
	EnvLogLevel  = "FITOUT_LOG_LEVEL"
	EnvLogFormat = "FITOUT_LOG_FORMAT"
)

const configVersion = "1"

// Config represents the fitout application configuration
type Config struct {
	Version      string `json:"version"`
	DatabasePath string `json:"database_path,omitempty"` // empty means ~/.fitout/fitout.db
	PipelineFile string `json:"pipeline_file,omitempty"` // empty means the built-in pipeline
	ListenAddr   string `json:"listen_addr,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`  // debug, info, warn, error; empty means the command's profile
	LogFormat    string `json:"log_format,omitempty"` // console or json; empty means the command's profile
}

// LogProfile is the log level and format a command runs with when neither
// config.json nor the environment sets them.
type LogProfile struct {
	Level  string
	Format string
}

var (
	// CLILogging keeps interactive commands quiet.
	CLILogging = LogProfile{Level: "warn", Format: "console"}
	// ServeLogging emits the access log as JSON.
	ServeLogging = LogProfile{Level: "info", Format: "json"}
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Version:    configVersion,
		ListenAddr: ":8080",
	}
}

// ApplyLogDefaults fills the log settings left unset from p.
func (c *Config) ApplyLogDefaults(p LogProfile) {
	if c.LogLevel == "" {
		c.LogLevel = p.Level
	}
	if c.LogFormat == "" {
		c.LogFormat = p.Format
	}
}

// LoadConfig reads .fitout/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".fitout", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	fitoutDir := filepath.Join(dir, ".fitout")
	if err := os.MkdirAll(fitoutDir, 0755); err != nil {
		return fmt.Errorf("failed to create .fitout dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(fitoutDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Resolve builds the effective configuration for dir with layered precedence:
//  1. Defaults
//  2. .fitout/config.json (optional)
//  3. .env in dir (optional, never overrides variables already set)
//  4. FITOUT_* environment variables
func Resolve(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := LoadEnv(dir); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadEnv loads dir/.env into the process environment if the file exists.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		EnvDatabase:  &c.DatabasePath,
		EnvPipeline:  &c.PipelineFile,
		EnvListen:    &c.ListenAddr,
		EnvLogLevel:  &c.LogLevel,
		EnvLogFormat: &c.LogFormat,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}
