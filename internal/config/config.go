// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package config handles tinyjs.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "tinyjs.toml"

// Config represents a tinyjs.toml file.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Log     Log     `toml:"log"`
	Output  Output  `toml:"output"`

	// Dir is the directory containing the config file (set at load time).
	// Empty for the defaults.
	Dir string `toml:"-"`
}

// Runtime configures the interpreter.
type Runtime struct {
	DB          string `toml:"db"`
	PersistMode string `toml:"persist-mode"`
	Natives     *bool  `toml:"natives"`
	Stdlib      *bool  `toml:"stdlib"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Output configures what the CLI prints after a run.
type Output struct {
	Dump string `toml:"dump"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses a tinyjs.toml file from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.applyDefaults()

	switch c.Output.Dump {
	case "", "yaml":
	default:
		return nil, fmt.Errorf("%s: unknown dump format %q", path, c.Output.Dump)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a tinyjs.toml file, then loads
// and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) applyDefaults() {
	if c.Runtime.PersistMode == "" {
		c.Runtime.PersistMode = "on_demand"
	}
	if c.Runtime.Natives == nil {
		c.Runtime.Natives = boolPtr(true)
	}
	if c.Runtime.Stdlib == nil {
		c.Runtime.Stdlib = boolPtr(true)
	}
}

// DBPath returns the database path, resolved against the config directory
// when it is relative. Empty means no database.
func (c *Config) DBPath() string {
	db := c.Runtime.DB
	if db == "" || db == ":memory:" || filepath.IsAbs(db) || c.Dir == "" {
		return db
	}
	return filepath.Join(c.Dir, db)
}

// LogPath returns the log file path, resolved like DBPath.
func (c *Config) LogPath() string {
	f := c.Log.File
	if f == "" || filepath.IsAbs(f) || c.Dir == "" {
		return f
	}
	return filepath.Join(c.Dir, f)
}

func boolPtr(b bool) *bool { return &b }
