package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalize converts raw driver values into plain Go values.
// []byte becomes string; everything else is returned unchanged.
func Normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// IsEmpty reports whether a value is NULL or an empty string.
func IsEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case []byte:
		return len(s) == 0
	}
	return false
}

// ToString renders a value for logs, previews and email derivation.
// NULL renders as "NULL".
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// ToInt64 converts an integer or float value to int64.
// Strings are parsed; anything else yields 0.
func ToInt64(v any) int64 {
	switch i := v.(type) {
	case int64:
		return i
	case int:
		return int64(i)
	case int32:
		return int64(i)
	case uint64:
		return int64(i)
	case uint32:
		return int64(i)
	case float64:
		return int64(i)
	case string:
		n, _ := strconv.ParseInt(i, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(i), 10, 64)
		return n
	default:
		return 0
	}
}

var dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts 2006-01-02, 2006-01-02 15:04:05 or 2006-01-02T15:04:05,
// read as UTC. Config validation and the date generator share it.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", s)
}
