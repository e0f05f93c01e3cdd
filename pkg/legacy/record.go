package legacy

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

// Record is one loosely typed object returned by the legacy API. Field values
// arrive as strings, numbers, booleans or nested objects depending on the
// endpoint and server version; the accessors below absorb those differences.
type Record map[string]interface{}

// String returns the trimmed textual value of key. Blank values report false.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// FirstString returns the first non-blank value among keys, in order.
func (r Record) FirstString(keys ...string) string {
	for _, k := range keys {
		if s, ok := r.String(k); ok {
			return s
		}
	}
	return ""
}

func (r Record) Int64(key string) (int64, bool) {
	switch t := r[key].(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

func (r Record) Int(key string) (int, bool) {
	n, ok := r.Int64(key)
	return int(n), ok
}

// Decimal parses key as an exact decimal.
func (r Record) Decimal(key string) (decimal.Decimal, bool) {
	switch t := r[key].(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d, true
		}
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func (r Record) DecimalOr(key string, fallback decimal.Decimal) decimal.Decimal {
	if d, ok := r.Decimal(key); ok {
		return d
	}
	return fallback
}

// Date reads an ISO date (only the first ten characters are considered) or a
// Unix timestamp in seconds. The result is midnight UTC.
func (r Record) Date(key string) (time.Time, bool) {
	s, ok := r.String(key)
	if !ok {
		return time.Time{}, false
	}
	if len(s) >= len(isoDate) {
		if d, err := time.Parse(isoDate, s[:len(isoDate)]); err == nil {
			return d, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return truncateDay(time.Unix(secs, 0)), true
	}
	return time.Time{}, false
}

// FirstDate returns the first parseable date among keys.
func (r Record) FirstDate(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if d, ok := r.Date(k); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// Bool is true for a JSON true, 1, "1", "true" or "y" (case-insensitive).
func (r Record) Bool(key string) bool {
	switch t := r[key].(type) {
	case bool:
		return t
	case nil:
		return false
	}
	s, ok := r.String(key)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "1", "true", "y":
		return true
	}
	return false
}

// ID returns the legacy identifier, read from rowid and then id.
func (r Record) ID() (int64, bool) {
	if id, ok := r.Int64("rowid"); ok {
		return id, true
	}
	return r.Int64("id")
}

// ThirdPartyCode picks the customer code, then the supplier code, and
// otherwise synthesizes DOLI-<id>.
func (r Record) ThirdPartyCode() string {
	if code := r.FirstString("code_client", "code_fournisseur"); code != "" {
		return code
	}
	if id, ok := r.ID(); ok {
		return "DOLI-" + strconv.FormatInt(id, 10)
	}
	return "DOLI-UNK"
}

// Lines returns the nested document lines, if any.
func (r Record) Lines() []Record {
	raw, ok := r["lines"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
