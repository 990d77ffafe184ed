// Package config loads and validates rosterd's deployment configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs rosterd needs outside of a single
// request: where to listen, who may call it, where to find the approved
// hard request store, and a default solver time limit. DefaultSolverTimeLimit
// is loaded and validated but not passed to the request path: a request that
// omits solverTimeLimit gets roster.DefaultSolverTimeLimitSeconds.
type Config struct {
	ListenAddr             string        `yaml:"listenAddr" validate:"required"`
	CORSOrigins            []string      `yaml:"corsOrigins" validate:"required,min=1,dive,required"`
	PostgresDSN            string        `yaml:"postgresDSN"`
	DefaultSolverTimeLimit time.Duration `yaml:"defaultSolverTimeLimit" validate:"required"`
}

var validate = validator.New()

const configFileName = "rosterd_config.yaml"

// LoadWithEnv finds rosterd_config.yaml in the working directory or the
// user's home directory, loads it, and applies any ROSTERD_* environment
// variable overrides.
func LoadWithEnv() (*Config, error) {
	path, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the configuration at path, applies environment
// overrides on top of it, then validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets a deployment override individual fields without
// editing the YAML file, replacing the original's bare
// os.getenv('PORT')/os.getenv('CORS_ORIGINS') reads with a single
// consistent ROSTERD_ prefix.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROSTERD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ROSTERD_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ROSTERD_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile checks the working directory, then the user's home
// directory, mirroring the teacher's two-location search.
func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
