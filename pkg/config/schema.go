package config

import (
	_ "embed"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

//go:embed catalog.yaml
var catalogYAML []byte

// SchemaRule represents a rule definition from the rule catalog
type SchemaRule struct {
	ID            string              `yaml:"id"`
	Kind          types.Kind          `yaml:"kind"`
	Title         string              `yaml:"title"`
	Level         types.RuleLevel     `yaml:"level,omitempty"`
	ComponentList []SchemaRulePayload `yaml:"componentList,omitempty"`
}

// SchemaRulePayload represents one configurable threshold of a rule
type SchemaRulePayload struct {
	Key     string `yaml:"key"`
	Payload struct {
		Type    string      `yaml:"type"`
		Default interface{} `yaml:"default"`
	} `yaml:"payload"`
}

var (
	catalogOnce  sync.Once
	catalogRules []SchemaRule
	catalogErr   error
)

// Catalog returns the built-in rule catalog.
func Catalog() ([]SchemaRule, error) {
	catalogOnce.Do(func() {
		catalogRules, catalogErr = parseSchema(catalogYAML)
		if catalogErr != nil {
			catalogErr = errors.Wrap(catalogErr, "failed to parse built-in rule catalog")
		}
	})
	return catalogRules, catalogErr
}

// CatalogRule looks up one rule of the built-in catalog.
func CatalogRule(kind types.Kind, id string) (SchemaRule, bool) {
	rules, err := Catalog()
	if err != nil {
		return SchemaRule{}, false
	}
	for _, r := range rules {
		if r.Kind == kind && r.ID == id {
			return r, true
		}
	}
	return SchemaRule{}, false
}

// LoadSchema loads a catalog file and returns schema rules
func LoadSchema(filename string) ([]SchemaRule, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", filename)
	}
	rules, err := parseSchema(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse schema file %s", filename)
	}
	return rules, nil
}

func parseSchema(data []byte) ([]SchemaRule, error) {
	var rules []SchemaRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	for i, r := range rules {
		if r.ID == "" || (r.Kind != types.KindFootprint && r.Kind != types.KindSymbol) {
			return nil, errors.Errorf("entry %d: rule needs an id and a kind of footprint or symbol", i)
		}
	}
	return rules, nil
}

// ConvertSchemaRulesToConfig converts schema rules of kind to review rules
// with default payloads. An empty kind keeps every rule.
func ConvertSchemaRulesToConfig(schemaRules []SchemaRule, kind types.Kind) (*Config, error) {
	var rules []*types.ReviewRule
	for _, schemaRule := range schemaRules {
		if kind != "" && schemaRule.Kind != kind {
			continue
		}
		level := schemaRule.Level
		if level == types.RuleLevel_LEVEL_UNSPECIFIED {
			level = types.RuleLevel_ERROR
		}
		payload, err := buildPayloadFromComponents(schemaRule.ComponentList)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %s", schemaRule.ID)
		}
		rules = append(rules, &types.ReviewRule{
			ID:      schemaRule.ID,
			Kind:    schemaRule.Kind,
			Level:   level,
			Payload: payload,
			Comment: schemaRule.Title,
		})
	}

	return &Config{
		ID:    "catalog-default",
		Rules: rules,
	}, nil
}

// buildPayloadFromComponents builds a payload map from schema rule components
func buildPayloadFromComponents(components []SchemaRulePayload) (map[string]interface{}, error) {
	if len(components) == 0 {
		return nil, nil
	}
	payload := make(map[string]interface{}, len(components))
	for _, comp := range components {
		switch comp.Payload.Type {
		case "NUMBER":
			switch v := comp.Payload.Default.(type) {
			case int:
				payload[comp.Key] = float64(v)
			case float64:
				payload[comp.Key] = v
			default:
				return nil, errors.Errorf("payload %s: default %v is not a number", comp.Key, v)
			}
		case "STRING":
			s, ok := comp.Payload.Default.(string)
			if !ok {
				return nil, errors.Errorf("payload %s: default %v is not a string", comp.Key, comp.Payload.Default)
			}
			payload[comp.Key] = s
		case "BOOLEAN":
			b, _ := comp.Payload.Default.(bool)
			payload[comp.Key] = b
		default:
			return nil, errors.Errorf("unsupported payload type: %s", comp.Payload.Type)
		}
	}
	return payload, nil
}

// CatalogConfig returns the default configuration: every catalog rule of
// kind at its catalog level with default payloads.
func CatalogConfig(kind types.Kind) (*Config, error) {
	rules, err := Catalog()
	if err != nil {
		return nil, err
	}
	return ConvertSchemaRulesToConfig(rules, kind)
}
