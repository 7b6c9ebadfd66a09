package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// Config represents the configuration for a library review
type Config struct {
	ID       string              `yaml:"id"       json:"id"`
	Rules    []*types.ReviewRule `yaml:"rules"    json:"rules"`
	Settings Settings            `yaml:"settings" json:"settings"`
}

// Settings are defaults for the command line flags of the checkers.
type Settings struct {
	FootprintsDir string `yaml:"footprints_dir,omitempty" json:"footprints_dir,omitempty"`
	NoWarnings    bool   `yaml:"no_warnings,omitempty"    json:"no_warnings,omitempty"`
	Silent        bool   `yaml:"silent,omitempty"         json:"silent,omitempty"`
	Jobs          int    `yaml:"jobs,omitempty"           json:"jobs,omitempty"`
	Log           string `yaml:"log,omitempty"            json:"log,omitempty"`
	Metrics       bool   `yaml:"metrics,omitempty"        json:"metrics,omitempty"`
}

// LoadFromFile loads configuration from a file
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("Loading config from file", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filename)
	}

	var config Config

	// Try YAML first, then JSON
	if yamlErr := yaml.Unmarshal(data, &config); yamlErr != nil {
		slog.Debug("YAML unmarshal failed", "error", yamlErr)
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", filename)
		}
		slog.Debug("JSON unmarshal succeeded")
	}

	for _, rule := range config.Rules {
		rule.ID = strings.ToUpper(strings.TrimSpace(rule.ID))
		rule.Payload = normalizePayload(rule.Payload)
		if rule.Level == types.RuleLevel_LEVEL_UNSPECIFIED {
			rule.Level = types.RuleLevel_ERROR
		}
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", filename)
	}

	slog.Debug("Loaded config", "rules_count", len(config.Rules))
	return &config, nil
}

// normalizePayload lower-cases payload keys so "Min_Drill" and "min_drill"
// configure the same threshold.
func normalizePayload(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Validate rejects rules missing from the catalog and duplicated entries.
func (c *Config) Validate() error {
	if c.Settings.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, got %d", c.Settings.Jobs)
	}
	seen := make(map[string]bool)
	for _, rule := range c.Rules {
		if rule.ID == "" {
			return errors.New("rule without id")
		}
		key := string(rule.Kind) + "/" + rule.ID
		if seen[key] {
			return errors.Errorf("rule %s configured twice", rule.ID)
		}
		seen[key] = true

		kinds := []types.Kind{rule.Kind}
		if rule.Kind == "" {
			kinds = []types.Kind{types.KindFootprint, types.KindSymbol}
		}
		known := false
		for _, kind := range kinds {
			if _, ok := CatalogRule(kind, rule.ID); ok {
				known = true
			}
		}
		if !known {
			return errors.Errorf("unknown rule %q", rule.ID)
		}
	}
	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig(id string) *Config {
	return &Config{
		ID:    id,
		Rules: []*types.ReviewRule{},
	}
}

// GetRulesForKind returns rules applicable to the given entity kind
func (c *Config) GetRulesForKind(kind types.Kind) []*types.ReviewRule {
	var rules []*types.ReviewRule
	for _, rule := range c.Rules {
		if rule.Kind == "" || rule.Kind == kind {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Rule returns the configuration of rule id for kind, or nil. An entry
// naming the kind wins over one that applies to both.
func (c *Config) Rule(kind types.Kind, id string) *types.ReviewRule {
	var generic *types.ReviewRule
	for _, rule := range c.Rules {
		if rule.ID != id {
			continue
		}
		if rule.Kind == kind {
			return rule
		}
		if rule.Kind == "" && generic == nil {
			generic = rule
		}
	}
	return generic
}

// Disabled lists the ids of kind configured as DISABLED.
func (c *Config) Disabled(kind types.Kind) []string {
	var ids []string
	for _, rule := range c.GetRulesForKind(kind) {
		if c.Rule(kind, rule.ID).Level == types.RuleLevel_DISABLED {
			ids = append(ids, rule.ID)
		}
	}
	return ids
}
