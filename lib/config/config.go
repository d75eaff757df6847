// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the complete machinery configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Machine   MachineConfig   `yaml:"machine"`
	Paths     PathsConfig     `yaml:"paths"`
	Inventory InventoryConfig `yaml:"inventory"`
	Sealing   SealingConfig   `yaml:"sealing"`
	Logging   LoggingConfig   `yaml:"logging"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections an environment may override.
// Empty strings leave the base value in place.
type ConfigOverrides struct {
	Machine   *MachineConfig   `yaml:"machine,omitempty"`
	Paths     *PathsConfig     `yaml:"paths,omitempty"`
	Inventory *InventoryConfig `yaml:"inventory,omitempty"`
	Logging   *LoggingConfig   `yaml:"logging,omitempty"`
}

// MachineConfig locates docker-machine.
type MachineConfig struct {
	// Binary is the docker-machine executable.
	Binary string `yaml:"binary"`
}

// PathsConfig configures where machinery keeps its state.
type PathsConfig struct {
	// Root is the base directory, exposed to other fields as
	// ${MACHINERY_ROOT}.
	Root string `yaml:"root"`

	// Database is the SQLite file holding jobs and the inventory.
	Database string `yaml:"database"`

	// Uploads receives copies of files named by file-typed driver
	// fields, such as an Azure subscription certificate.
	Uploads string `yaml:"uploads"`
}

// InventoryConfig configures the machine inventory cache.
type InventoryConfig struct {
	// TTL is how long a refreshed inventory stays readable, as a Go
	// duration string.
	TTL string `yaml:"ttl"`

	// Compression is the codec for stored snapshots: none, lz4 or
	// zstd.
	Compression string `yaml:"compression"`
}

// SealingConfig configures at-rest encryption of job parameters.
type SealingConfig struct {
	// IdentityFile is an age identity. Sealing is active when the file
	// exists.
	IdentityFile string `yaml:"identity_file"`

	// Recipients are additional age public keys that can open sealed
	// parameters.
	Recipients []string `yaml:"recipients"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is auto, text or json. Auto picks text on a terminal.
	Format string `yaml:"format"`
}

// DefaultMachineBinary is the docker-machine location used when
// neither the file nor MACHINERY_DOCKER_MACHINE_BIN names one.
func DefaultMachineBinary() string {
	if runtime.GOOS == "windows" {
		return "/bin/docker-machine"
	}
	return "/usr/local/bin/docker-machine"
}

// Default returns the built-in configuration, before expansion.
func Default() *Config {
	return &Config{
		Environment: Development,
		Machine: MachineConfig{
			Binary: "${MACHINERY_DOCKER_MACHINE_BIN:-" + DefaultMachineBinary() + "}",
		},
		Paths: PathsConfig{
			Root:     "${HOME}/.machinery",
			Database: "${MACHINERY_ROOT}/machinery.db",
			Uploads:  "${MACHINERY_ROOT}/uploads",
		},
		Inventory: InventoryConfig{
			TTL:         "5m",
			Compression: "zstd",
		},
		Sealing: SealingConfig{
			IdentityFile: "${MACHINERY_ROOT}/identity.age",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the file named by MACHINERY_CONFIG, or returns the
// expanded defaults when it is unset.
func Load() (*Config, error) {
	if path := os.Getenv("MACHINERY_CONFIG"); path != "" {
		return LoadFile(path)
	}
	cfg := Default()
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile reads the configuration at path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Machine != nil {
		override(&c.Machine.Binary, overrides.Machine.Binary)
	}
	if overrides.Paths != nil {
		override(&c.Paths.Root, overrides.Paths.Root)
		override(&c.Paths.Database, overrides.Paths.Database)
		override(&c.Paths.Uploads, overrides.Paths.Uploads)
	}
	if overrides.Inventory != nil {
		override(&c.Inventory.TTL, overrides.Inventory.TTL)
		override(&c.Inventory.Compression, overrides.Inventory.Compression)
	}
	if overrides.Logging != nil {
		override(&c.Logging.Level, overrides.Logging.Level)
		override(&c.Logging.Format, overrides.Logging.Format)
	}
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["MACHINERY_ROOT"] = c.Paths.Root

	c.Machine.Binary = expandVars(c.Machine.Binary, vars)
	c.Paths.Database = expandVars(c.Paths.Database, vars)
	c.Paths.Uploads = expandVars(c.Paths.Uploads, vars)
	c.Sealing.IdentityFile = expandVars(c.Sealing.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// InventoryTTL parses Inventory.TTL.
func (c *Config) InventoryTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Inventory.TTL)
	if err != nil {
		return 0, fmt.Errorf("inventory.ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("inventory.ttl must be positive, got %s", c.Inventory.TTL)
	}
	return ttl, nil
}

// SealingEnabled reports whether the identity file exists.
func (c *Config) SealingEnabled() bool {
	if c.Sealing.IdentityFile == "" {
		return false
	}
	_, err := os.Stat(c.Sealing.IdentityFile)
	return err == nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Machine.Binary == "" {
		errs = append(errs, errors.New("machine.binary is required"))
	}
	if c.Paths.Root == "" {
		errs = append(errs, errors.New("paths.root is required"))
	}
	if c.Paths.Database == "" {
		errs = append(errs, errors.New("paths.database is required"))
	}
	if c.Paths.Uploads == "" {
		errs = append(errs, errors.New("paths.uploads is required"))
	}
	if _, err := c.InventoryTTL(); err != nil {
		errs = append(errs, err)
	}
	if !contains([]string{"none", "lz4", "zstd"}, c.Inventory.Compression) {
		errs = append(errs, fmt.Errorf("inventory.compression must be one of none, lz4, zstd; got %q", c.Inventory.Compression))
	}
	if !contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}
	if !contains([]string{"auto", "text", "json"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of auto, text, json; got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// EnsurePaths creates the root, uploads and database directories.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Uploads, filepath.Dir(c.Paths.Database)} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
