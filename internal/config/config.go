// Package config loads compiler-wide tuning knobs from a YAML file, the way
// a deployed tool reads its settings rather than hardcoding them.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the compiler's configurable behavior. Zero value is the
// compiler's default behavior.
type Config struct {
	// WarningsAsErrors is parsed from the config file but not read by the
	// compiler or the CLI; the compiler reports no warnings, only errors.
	WarningsAsErrors bool `yaml:"warnings_as_errors"`

	// Disassemble, when true, makes the CLI's compile command print a
	// disassembly of the top-level chunk after a successful compile (nested
	// functions are not disassembled there; the disasm command walks them).
	Disassemble bool `yaml:"disassemble"`

	// LogLevel sets the logrus level compiler diagnostics are emitted at.
	LogLevel string `yaml:"log_level"`
}

// Default returns the compiler's out-of-the-box configuration.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads and validates a YAML config file at path. A missing file is not
// an error: Load returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects a log level logrus would itself reject, catching a typo
// in the config file before it surfaces as a confusing parse error deep
// inside logrus.
func (c Config) Validate() error {
	if c.LogLevel == "" {
		return nil
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Logger builds a logrus logger configured at the level this Config names,
// falling back to Info on an empty or invalid level (Validate should have
// already rejected the latter).
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
