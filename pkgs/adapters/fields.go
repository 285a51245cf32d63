package adapters

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field extraction helpers for untyped JSON shapes. Adapters are permissive:
// a missing or oddly-typed field yields a zero value, never an error.

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	return stringValue(m[key])
}

// stringValue renders scalar JSON values as identifiers. Telegram exports
// carry numeric user ids, the miner exports string ids.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// unixField reads a Unix timestamp field and converts it to UTC,
// falling back to the given default when absent or unparsable
func unixField(m map[string]interface{}, key string, fallback time.Time) time.Time {
	if m == nil {
		return fallback
	}
	switch val := m[key].(type) {
	case float64:
		if val > 0 {
			return time.Unix(int64(val), 0).UTC()
		}
	case json.Number:
		if sec, err := val.Int64(); err == nil && sec > 0 {
			return time.Unix(sec, 0).UTC()
		}
	case int64:
		if val > 0 {
			return time.Unix(val, 0).UTC()
		}
	}
	return fallback
}
