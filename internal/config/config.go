// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"dinero/pkg/db" // Import db package for its Config struct
)

// PlaidConfig holds credentials and account wiring for the aggregation API.
type PlaidConfig struct {
	ClientID string `yaml:"client_id"`
	Secret   string `yaml:"secret"`
	// Env selects the Plaid environment (sandbox, development, production).
	Env string `yaml:"env"`
	// Tokens maps a human-readable institution name to its access token.
	Tokens map[string]string `yaml:"tokens"`
	// AccountIDToName maps Plaid account IDs to the account names used in
	// the ledger. Missing entries degrade to the raw ID at fetch time.
	AccountIDToName map[string]string `yaml:"account_id_to_name"`
}

// NocoDBConfig holds connection settings for the yearly-table backend.
type NocoDBConfig struct {
	Host    string `yaml:"host"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Project string `yaml:"project"`
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	// Timezone is the reference zone transaction dates are normalized to.
	Timezone string `yaml:"timezone"`
	// RulesPath is where the category rule table is persisted.
	RulesPath string `yaml:"rules_path"`
	// Backend selects the ledger store: "postgres" (default) or "nocodb".
	Backend string       `yaml:"backend"`
	Plaid   PlaidConfig  `yaml:"plaid"`
	NocoDB  NocoDBConfig `yaml:"nocodb"`
	DB      db.Config    `yaml:"database"`
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".config", "dinero", "settings.yaml")
}

// LoadConfig reads the YAML settings file at path (DefaultPath when empty)
// and applies environment overrides. A missing file is not an error; the
// result then carries defaults and environment values only, which is enough
// for the CSV-only workflows.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Timezone: "UTC",
		Backend:  "postgres",
		DB: db.Config{
			Host:    "localhost",
			Port:    5432,
			User:    "dinero",
			DBName:  "dinero",
			SSLMode: "disable",
		},
	}

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if cfg.RulesPath == "" {
		cfg.RulesPath = filepath.Join(filepath.Dir(path), "category_rules.json")
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets DINERO_DB_* environment variables take precedence
// over the settings file for database credentials.
func applyEnvOverrides(cfg *AppConfig) error {
	if v := os.Getenv("DINERO_DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("DINERO_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DINERO_DB_PORT: %w", err)
		}
		cfg.DB.Port = port
	}
	if v := os.Getenv("DINERO_DB_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("DINERO_DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("DINERO_DB_NAME"); v != "" {
		cfg.DB.DBName = v
	}
	if v := os.Getenv("DINERO_DB_SSLMODE"); v != "" {
		cfg.DB.SSLMode = v
	}
	return nil
}

// Location resolves the configured reference timezone.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Redacted returns a copy safe for printing: secrets replaced with ellipses.
func (c *AppConfig) Redacted() AppConfig {
	out := *c
	if out.Plaid.Secret != "" {
		out.Plaid.Secret = "..."
	}
	if out.NocoDB.Token != "" {
		out.NocoDB.Token = "..."
	}
	if out.DB.Password != "" {
		out.DB.Password = "..."
	}
	redactedTokens := make(map[string]string, len(out.Plaid.Tokens))
	for name := range out.Plaid.Tokens {
		redactedTokens[name] = "..."
	}
	out.Plaid.Tokens = redactedTokens
	return out
}
