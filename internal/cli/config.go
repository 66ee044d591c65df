package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
	"github.com/yungbote/assetpm-backend/internal/platform/envutil"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

// Config is the resolved pmctl configuration. Precedence, lowest first: built-in
// defaults, the YAML file, PMCTL_* environment, command-line flags.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	OutputDir  string
	TieBreak   aggregate.TieBreak
}

type fileConfig struct {
	BaseURL    string `yaml:"base_url"`
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
	OutputDir  string `yaml:"output_dir"`
	TieBreak   string `yaml:"tie_break"`
}

func defaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8080",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		OutputDir:  ".",
		TieBreak:   aggregate.TieFirstWins,
	}
}

// LoadConfig reads path (when non-empty) and applies environment overrides.
// A missing file is an error only when the path was given explicitly.
func LoadConfig(path string, explicit bool, log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := cfg.applyFile(raw); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.BaseURL = envutil.String("PMCTL_BASE_URL", cfg.BaseURL, log)
	cfg.Timeout = envutil.Seconds("PMCTL_TIMEOUT_SECONDS", cfg.Timeout, log)
	cfg.MaxRetries = envutil.Int("PMCTL_MAX_RETRIES", cfg.MaxRetries, log)
	cfg.OutputDir = envutil.String("PMCTL_OUTPUT_DIR", cfg.OutputDir, log)
	if raw := envutil.String("PMCTL_TIE_BREAK", "", log); raw != "" {
		tie, err := aggregate.ParseTieBreak(raw)
		if err != nil {
			return Config{}, fmt.Errorf("PMCTL_TIE_BREAK: %w", err)
		}
		cfg.TieBreak = tie
	}
	return cfg, nil
}

func (c *Config) applyFile(raw []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}
	if v := strings.TrimSpace(fc.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(fc.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if fc.MaxRetries != nil {
		c.MaxRetries = *fc.MaxRetries
	}
	if v := strings.TrimSpace(fc.OutputDir); v != "" {
		c.OutputDir = v
	}
	if v := strings.TrimSpace(fc.TieBreak); v != "" {
		tie, err := aggregate.ParseTieBreak(v)
		if err != nil {
			return err
		}
		c.TieBreak = tie
	}
	return nil
}
