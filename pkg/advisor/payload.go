package advisor

import (
	"log/slog"
	"strconv"

	"github.com/pkg/errors"
)

// NumberPayload returns payload[key] as a float, or def when the key is
// absent. A value of the wrong type is an error.
func NumberPayload(payload map[string]interface{}, key string, def float64) (float64, error) {
	if payload == nil {
		return def, nil
	}
	v, ok := payload[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return def, errors.Wrapf(err, "payload field %q is not a number", key)
		}
		return f, nil
	default:
		return def, errors.Errorf("payload field %q has invalid type %T", key, v)
	}
}

// StringListPayload returns payload[key] as a list of strings.
func StringListPayload(payload map[string]interface{}, key string) ([]string, error) {
	if payload == nil {
		return nil, nil
	}
	v, ok := payload[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("payload field %q holds non-string item %v", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Errorf("payload field %q is not a list", key)
	}
}

// Number reads a numeric threshold from the rule payload, falling back to def
// on absence or error.
func (b *Base) Number(key string, def float64) float64 {
	v, err := NumberPayload(b.Payload(), key, def)
	if err != nil {
		slog.Warn("Ignoring rule payload", "rule", b.ID(), "error", err)
		return def
	}
	return v
}
