// Package config loads and saves tally.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/auditlog"
)

// FileName is the default config file name.
const FileName = "tally.yaml"

// Environment variables that override file settings.
const (
	EnvLedger   = "TALLY_LEDGER"
	EnvBudget   = "TALLY_BUDGET"
	EnvLogLevel = "TALLY_LOG_LEVEL"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger     LedgerConfig `yaml:"ledger"`
	Budget     BudgetConfig `yaml:"budget"`
	Categories []string     `yaml:"categories"`
	Log        LogConfig    `yaml:"log"`
	Audit      AuditConfig  `yaml:"audit"`
	Git        GitConfig    `yaml:"git"`
}

// LedgerConfig locates the ledger file.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// BudgetConfig holds the default monthly budget used by reports.
type BudgetConfig struct {
	Monthly string `yaml:"monthly"` // decimal text, "0" disables
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AuditConfig controls the mutation audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // empty means next to the ledger
}

// GitConfig controls committing the ledger after each change.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path: "expenses.csv",
		},
		Budget: BudgetConfig{
			Monthly: "0",
		},
		Categories: []string{"Food", "Home", "Work", "Fun", "Misc"},
		Log: LogConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Git: GitConfig{
			AuthorName:  "tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// ApplyEnv overrides settings from TALLY_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLedger); v != "" {
		c.Ledger.Path = v
	}
	if v := os.Getenv(EnvBudget); v != "" {
		c.Budget.Monthly = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		return errors.New("ledger.path must be set")
	}
	if _, err := c.MonthlyBudget(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if len(c.Categories) == 0 {
		return errors.New("categories must not be empty")
	}
	return nil
}

// MonthlyBudget parses Budget.Monthly. An empty value is zero.
func (c *Config) MonthlyBudget() (decimal.Decimal, error) {
	if strings.TrimSpace(c.Budget.Monthly) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(c.Budget.Monthly))
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget.monthly %q is not a number", c.Budget.Monthly)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("budget.monthly %s is negative", d)
	}
	return d, nil
}

// LogLevel parses Log.Level. An empty value is info.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// LedgerPath resolves Ledger.Path relative to the directory holding the
// config file.
func (c *Config) LedgerPath(configPath string) string {
	return resolve(configPath, c.Ledger.Path)
}

// AuditPath returns where audit entries go, or "" when auditing is off.
func (c *Config) AuditPath(configPath string) string {
	if !c.Audit.Enabled {
		return ""
	}
	if c.Audit.Path != "" {
		return resolve(configPath, c.Audit.Path)
	}
	return auditlog.PathFor(c.LedgerPath(configPath))
}

func resolve(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
