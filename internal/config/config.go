package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bankist-dev/bankist/internal/logging"
)

// FileName is the config file name at a project root.
const FileName = "bankist.yaml"

// Config represents the top-level bankist.yaml configuration.
type Config struct {
	Session SessionConfig `yaml:"session"`
	Loans   LoansConfig   `yaml:"loans"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
}

// SessionConfig controls the inactivity logout countdown.
type SessionConfig struct {
	DurationSeconds int           `yaml:"duration_seconds"`
	Tick            time.Duration `yaml:"tick"`
}

// LoansConfig controls the loan coverage rule and posting latency.
type LoansConfig struct {
	CoveragePercent float64       `yaml:"coverage_percent"`
	DelayMin        time.Duration `yaml:"delay_min"`
	DelayMax        time.Duration `yaml:"delay_max"`
}

// DataConfig locates the account fixtures.
type DataConfig struct {
	Dir string `yaml:"dir"` // relative to the project root
}

// LoggingConfig controls the process log and the activity log.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ActivityLog string `yaml:"activity_log"`
}

// GitConfig sets the author used when saved account data is committed.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bankist.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the dashboard's standard settings: a ten
// minute countdown in one second ticks, and loans posting in 1-3s.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			DurationSeconds: 600,
			Tick:            time.Second,
		},
		Loans: LoansConfig{
			CoveragePercent: 10,
			DelayMin:        time.Second,
			DelayMax:        3 * time.Second,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Logging: LoggingConfig{
			Level:       "info",
			ActivityLog: "logs/activity-log.csv",
		},
		Git: GitConfig{
			AuthorName:  "Bankist",
			AuthorEmail: "dashboard@bankist.dev",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.DurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("session.duration_seconds must be positive, got %d", c.Session.DurationSeconds))
	}
	if c.Session.Tick <= 0 {
		errs = append(errs, fmt.Errorf("session.tick must be positive, got %s", c.Session.Tick))
	}
	if c.Loans.CoveragePercent < 0 {
		errs = append(errs, fmt.Errorf("loans.coverage_percent must not be negative, got %v", c.Loans.CoveragePercent))
	}
	if c.Loans.DelayMin < 0 || c.Loans.DelayMax <= c.Loans.DelayMin {
		errs = append(errs, fmt.Errorf("loans delay window [%s, %s) is empty", c.Loans.DelayMin, c.Loans.DelayMax))
	}
	if c.Data.Dir == "" {
		errs = append(errs, errors.New("data.dir is required"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}
