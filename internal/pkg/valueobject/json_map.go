// Package valueobject holds small value types shared between entities and storage.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrScanValueNotBytes is returned when a JSON column arrives in an unsupported Go type.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// JSONMap is a JSON object column, such as a notification payload.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner. NULL scans into an empty map.
func (j *JSONMap) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case map[string]any:
		*j = JSONMap(v)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrScanValueNotBytes
	}

	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*j = out
	return nil
}

// GetString returns the string at key, or "" when missing or not a string.
func (j JSONMap) GetString(key string) string {
	s, _ := j[key].(string)
	return s
}

// GetInt64 returns the integer at key. JSON numbers and decimal strings are
// both accepted since ids are serialized as strings to survive JavaScript clients.
func (j JSONMap) GetInt64(key string) int64 {
	switch v := j[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
