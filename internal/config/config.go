// Package config reads and writes the confronto.yaml run configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/confronto-dev/confronto/internal/engine"
	"github.com/confronto-dev/confronto/internal/importer"
	"github.com/confronto-dev/confronto/internal/money"
)

// Grouping strategy names accepted in the config file.
const (
	GroupingValuePair  = "value-pair"
	GroupingExplicitID = "explicit-id"
)

const dateFormat = "2006-01-02"

// Config represents the top-level confronto.yaml configuration. Every
// engine parameter is settable per run; nothing is hard-coded.
type Config struct {
	ClosingDate         string             `yaml:"closing_date"` // "2006-01-02"
	MaxPostponementDays int                `yaml:"max_postponement_days"`
	ValueTolerance      string             `yaml:"value_tolerance"`
	TargetRecipientID   string             `yaml:"target_recipient_id"`
	GroupingStrategy    string             `yaml:"grouping_strategy"`
	Columns             importer.ColumnMap `yaml:"columns"`
}

// Default returns a Config with the business defaults. The closing date
// and target recipient still have to be filled in before a run.
func Default() *Config {
	return &Config{
		MaxPostponementDays: engine.DefaultMaxPostponementDays,
		ValueTolerance:      engine.DefaultValueTolerance.String(),
		GroupingStrategy:    GroupingValuePair,
		Columns:             importer.DefaultColumnMap(),
	}
}

// Load reads a confronto.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
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

// EngineConfig converts the file representation into the engine's typed
// configuration.
func (c *Config) EngineConfig() (engine.Config, error) {
	closing, err := time.Parse(dateFormat, c.ClosingDate)
	if err != nil {
		return engine.Config{}, fmt.Errorf("closing_date %q: %w", c.ClosingDate, err)
	}

	tolerance, err := money.Parse(c.ValueTolerance)
	if err != nil {
		return engine.Config{}, fmt.Errorf("value_tolerance: %w", err)
	}

	var grouping engine.GroupStrategy
	switch c.GroupingStrategy {
	case "", GroupingValuePair:
		grouping = engine.ValuePairStrategy{}
	case GroupingExplicitID:
		grouping = engine.ExplicitGroupStrategy{}
	default:
		return engine.Config{}, fmt.Errorf("unknown grouping_strategy %q", c.GroupingStrategy)
	}

	return engine.Config{
		ClosingDate:         closing,
		MaxPostponementDays: c.MaxPostponementDays,
		ValueTolerance:      tolerance,
		TargetRecipientID:   c.TargetRecipientID,
		Grouping:            grouping,
	}, nil
}
