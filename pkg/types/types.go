package types

import (
	"encoding/json"
	"strings"
)

// Kind is the kind of library entity a rule checks.
type Kind string

const (
	KindFootprint Kind = "footprint"
	KindSymbol    Kind = "symbol"
)

// RuleLevel represents the configured severity of a rule
type RuleLevel int32

const (
	RuleLevel_LEVEL_UNSPECIFIED RuleLevel = 0
	RuleLevel_ERROR             RuleLevel = 1
	RuleLevel_WARNING           RuleLevel = 2
	RuleLevel_DISABLED          RuleLevel = 3
)

func (l RuleLevel) String() string {
	switch l {
	case RuleLevel_ERROR:
		return "ERROR"
	case RuleLevel_WARNING:
		return "WARNING"
	case RuleLevel_DISABLED:
		return "DISABLED"
	default:
		return "LEVEL_UNSPECIFIED"
	}
}

func parseRuleLevel(s string) RuleLevel {
	switch strings.ToUpper(s) {
	case "ERROR":
		return RuleLevel_ERROR
	case "WARNING":
		return RuleLevel_WARNING
	case "DISABLED":
		return RuleLevel_DISABLED
	default:
		return RuleLevel_LEVEL_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for RuleLevel
func (l *RuleLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*l = parseRuleLevel(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler for RuleLevel
func (l RuleLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler for RuleLevel
func (l *RuleLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = parseRuleLevel(s)
	return nil
}

// MarshalJSON implements json.Marshaler for RuleLevel
func (l RuleLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Message_Severity represents the severity of a rule message
type Message_Severity int32

const (
	Message_SEVERITY_UNSPECIFIED Message_Severity = 0
	Message_INFO                 Message_Severity = 1
	Message_SUCCESS              Message_Severity = 2
	Message_WARNING              Message_Severity = 3
	Message_ERROR                Message_Severity = 4
)

func (s Message_Severity) String() string {
	switch s {
	case Message_INFO:
		return "INFO"
	case Message_SUCCESS:
		return "SUCCESS"
	case Message_WARNING:
		return "WARNING"
	case Message_ERROR:
		return "ERROR"
	default:
		return "SEVERITY_UNSPECIFIED"
	}
}

// MarshalJSON implements json.Marshaler for Message_Severity
func (s Message_Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML implements yaml.Marshaler for Message_Severity
func (s Message_Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Message is one line of rule output plus its detail lines.
type Message struct {
	Severity Message_Severity `json:"severity"        yaml:"severity"`
	Text     string           `json:"text"            yaml:"text"`
	Extra    []string         `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ReviewRule is the configuration of one rule
type ReviewRule struct {
	ID      string                 `json:"id"                yaml:"id"`
	Kind    Kind                   `json:"kind,omitempty"    yaml:"kind,omitempty"`
	Level   RuleLevel              `json:"level"             yaml:"level"`
	Payload map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Comment string                 `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// ErrorRecord is one line of the JSON error log.
type ErrorRecord struct {
	Rule    string `json:"rule"    yaml:"rule"`
	Library string `json:"library" yaml:"library"`
	Entity  string `json:"entity"  yaml:"entity"`
}
