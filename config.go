package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the run parameters. Command line flags override file values.
type Config struct {
	// MaxDepth bounds wave chains, regenerations and looping knockouts per path.
	MaxDepth int `yaml:"maxDepth"`
	// Workers caps the goroutines walking first-level branches. 1 walks serially.
	Workers int `yaml:"workers"`
	// Tables is a community table file; empty uses the embedded sample tables.
	Tables string `yaml:"tables"`
	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose"`

	Progress *ProgressConfig `yaml:"progress"`
	Criteria Criteria        `yaml:"criteria"`
}

// ProgressConfig is the YAML shape of Progress. Leaving it out assumes full progress.
type ProgressConfig struct {
	HasCharm bool     `yaml:"shinyCharm"`
	Complete []uint16 `yaml:"complete"`
	Perfect  []uint16 `yaml:"perfect"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		MaxDepth: DefaultMaxDepth,
		Workers:  1,
		Criteria: ShinyOnly(),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the search cannot run with.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("maxDepth %d is negative", c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	if c.Criteria.Gender != nil && (*c.Criteria.Gender < 0 || *c.Criteria.Gender > 2) {
		return fmt.Errorf("criteria gender %d outside 0..2", *c.Criteria.Gender)
	}
	return nil
}

// RerollPolicy converts the progress section; nil means everything unlocked.
func (c Config) RerollPolicy() *Progress {
	if c.Progress == nil {
		return nil
	}
	p := &Progress{
		HasCharm: c.Progress.HasCharm,
		Complete: make(map[uint16]bool, len(c.Progress.Complete)),
		Perfect:  make(map[uint16]bool, len(c.Progress.Perfect)),
	}
	for _, s := range c.Progress.Complete {
		p.Complete[s] = true
	}
	for _, s := range c.Progress.Perfect {
		p.Perfect[s] = true
	}
	return p
}

// Env builds the generator collaborators the config describes.
func (c Config) Env() (Env, error) {
	dex := DefaultDex()
	env := Env{Species: dex, Rerolls: c.RerollPolicy()}
	if c.Tables == "" {
		env.Tables = DefaultTables(dex)
		return env, nil
	}
	ts, err := LoadTables(c.Tables, dex)
	if err != nil {
		return env, err
	}
	env.Tables = ts
	return env, nil
}
