package game

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EightCutMode selects when an 8 clears the table.
type EightCutMode string

const (
	EightCutDeferred  EightCutMode = "deferred"
	EightCutImmediate EightCutMode = "immediate"
)

// RuleConfig holds the house rules a room is played with.
type RuleConfig struct {
	FlushDelayMS int          `yaml:"flush_delay_ms" json:"flush_delay_ms"`
	Jokers       int          `yaml:"jokers" json:"jokers"`
	EightCut     EightCutMode `yaml:"eight_cut" json:"eight_cut"`
	OneChance    bool         `yaml:"one_chance" json:"one_chance"`
}

// DefaultRules returns the standard table rules.
func DefaultRules() RuleConfig {
	return RuleConfig{
		FlushDelayMS: 5000,
		Jokers:       2,
		EightCut:     EightCutDeferred,
		OneChance:    true,
	}
}

// FlushDelay is the delay applied to deferred flushes.
func (c RuleConfig) FlushDelay() time.Duration {
	return time.Duration(c.FlushDelayMS) * time.Millisecond
}

// Validate checks the rule values are usable.
func (c RuleConfig) Validate() error {
	if c.FlushDelayMS < 0 {
		return fmt.Errorf("flush_delay_ms must not be negative, got %d", c.FlushDelayMS)
	}
	if c.Jokers < 0 || c.Jokers > 4 {
		return fmt.Errorf("jokers must be between 0 and 4, got %d", c.Jokers)
	}
	switch c.EightCut {
	case EightCutDeferred, EightCutImmediate:
	default:
		return fmt.Errorf("eight_cut must be %q or %q, got %q", EightCutDeferred, EightCutImmediate, c.EightCut)
	}
	return nil
}

// ParseRules parses YAML rules. Keys that are absent keep their defaults.
func ParseRules(data []byte) (RuleConfig, error) {
	cfg := DefaultRules()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RuleConfig{}, fmt.Errorf("parse rules YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RuleConfig{}, fmt.Errorf("invalid rules: %w", err)
	}
	return cfg, nil
}

// ParseRuleFile reads and parses a YAML rules file.
func ParseRuleFile(path string) (RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleConfig{}, err
	}
	return ParseRules(data)
}
