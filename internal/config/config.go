// Package config loads and validates the application configuration from a
// YAML file plus environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI     AIConfig     `yaml:"ai" validate:"required"`
	Search SearchConfig `yaml:"search"`
	Paths  PathsConfig  `yaml:"paths"`
	Limits Limits       `yaml:"limits" validate:"required"`
}

type AIConfig struct {
	Provider string `yaml:"provider" validate:"required,oneof=anthropic openai"`
	APIKey   string `yaml:"api_key" validate:"required,min=20"`
	Model    string `yaml:"model" validate:"required"`
	BaseURL  string `yaml:"base_url" validate:"required,url"`
	Timeout  int    `yaml:"timeout" validate:"required,min=10,max=3600"`
}

// SearchConfig is optional; without an API key the researcher answers from
// model knowledge alone.
type SearchConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

type PathsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Load reads the config file, overlays environment variables, applies
// defaults, and validates. A .env file in the working directory is honored.
// Without a config file the configuration comes from the environment alone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cfg := Config{Limits: DefaultLimits()}
		overlayEnv(&cfg)
		if verr := cfg.validate(); verr != nil {
			return nil, fmt.Errorf("validating config: %w", verr)
		}
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	overlayEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func overlayEnv(cfg *Config) {
	if cfg.AI.APIKey == "" || strings.HasPrefix(cfg.AI.APIKey, "${") {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.AI.APIKey = key
			if cfg.AI.Provider == "" {
				cfg.AI.Provider = "anthropic"
			}
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.AI.APIKey = key
			if cfg.AI.Provider == "" {
				cfg.AI.Provider = "openai"
			}
		}
	}
	if key := os.Getenv("SERPER_API_KEY"); key != "" && cfg.Search.APIKey == "" {
		cfg.Search.APIKey = key
	}
}

func getConfigPath() string {
	if path := os.Getenv("CODEAGENTS_CONFIG"); path != "" {
		return path
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "codeagents", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "codeagents", "config.yaml")
}

// expandTilde expands a leading ~/ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate() error {
	if c.AI.Provider == "" {
		c.AI.Provider = "anthropic"
	}
	if c.AI.BaseURL == "" {
		switch c.AI.Provider {
		case "openai":
			c.AI.BaseURL = "https://api.openai.com/v1"
		default:
			c.AI.BaseURL = "https://api.anthropic.com/v1"
		}
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case "openai":
			c.AI.Model = "gpt-4o-mini"
		default:
			c.AI.Model = "claude-3-5-sonnet-20241022"
		}
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 120
	}

	if c.Paths.OutputDir == "" {
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			c.Paths.OutputDir = filepath.Join(xdgData, "codeagents", "output")
		} else {
			home, _ := os.UserHomeDir()
			c.Paths.OutputDir = filepath.Join(home, ".local", "share", "codeagents", "output")
		}
	} else {
		c.Paths.OutputDir = expandTilde(c.Paths.OutputDir)
	}

	if c.Limits.MaxRetries == 0 && c.Limits.MaxRefinements == 0 {
		c.Limits = DefaultLimits()
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
