package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fields is decoded JSON input keyed by field name. An absent key was not
// supplied; a key holding null was supplied as null.
type Fields map[string]json.RawMessage

// ParseFields decodes a JSON object into Fields.
func ParseFields(data []byte) (Fields, error) {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, invalid("body must be a JSON object")
	}
	return f, nil
}

func (f Fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

// blank reports whether key is absent, null or an all-space string.
func (f Fields) blank(key string) bool {
	raw, ok := f[key]
	if !ok {
		return true
	}
	v, err := decodeValue(raw)
	if err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// text decodes a string field, trimming whitespace. Null becomes "" and
// numbers or booleans keep their JSON spelling.
func text(key string, raw json.RawMessage) (string, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return "", invalid("%s is malformed", key)
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	}
	return "", invalid("%s must be a string", key)
}

// number decodes a JSON number or a numeric string. ok is false for null
// and empty strings.
func number(raw json.RawMessage) (value float64, ok bool, err error) {
	v, err := decodeValue(raw)
	if err != nil {
		return 0, false, err
	}

	var s string
	switch val := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
		if s == "" {
			return 0, false, nil
		}
	default:
		return 0, false, fmt.Errorf("not a number")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	return f, true, nil
}

// nullableNumber accepts null, "" (both meaning no value), a number or a
// numeric string.
func nullableNumber(key string, raw json.RawMessage) (*float64, error) {
	f, ok, err := number(raw)
	if err != nil {
		return nil, invalid("%s must be a number", key)
	}
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func requiredNumber(raw json.RawMessage) (float64, bool) {
	f, ok, err := number(raw)
	return f, err == nil && ok
}

func requiredInt(raw json.RawMessage) (int, bool) {
	f, ok := requiredNumber(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// boolean coerces JSON booleans, numbers and the usual form spellings
// ("true"/"false", "1"/"0", "on"/"off", "yes"/"no", ""). Null is false.
func boolean(key string, raw json.RawMessage) (bool, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return false, invalid("%s is malformed", key)
	}
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return false, invalid("%s must be true or false", key)
		}
		return f != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "on", "yes":
			return true, nil
		case "false", "0", "off", "no", "":
			return false, nil
		}
	}
	return false, invalid("%s must be true or false", key)
}

// amenities requires a JSON array. Entries are trimmed and empty ones
// dropped.
func amenities(raw json.RawMessage) ([]string, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, invalid("amenities is malformed")
	}
	items, ok := v.([]any)
	if !ok {
		return nil, invalid("amenities must be an array")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch val := item.(type) {
		case nil:
			continue
		case string:
			s = strings.TrimSpace(val)
		case json.Number:
			s = val.String()
		case bool:
			s = strconv.FormatBool(val)
		default:
			return nil, invalid("amenities must contain only strings")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
