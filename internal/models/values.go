package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/common"
)

// Values is a proposed field-set: the partial set of record attributes a
// caller wants to write. A key mapped to nil means "set to NULL"; a missing
// key means "leave alone".
//
// Values is immutable. With and Without return modified copies, so each step
// of the write pipeline works on its own snapshot.
type Values struct {
	m map[string]any
}

// NewValues returns an empty field-set.
func NewValues() Values {
	return Values{m: map[string]any{}}
}

// ValuesOf copies m into a new field-set.
func ValuesOf(m map[string]any) Values {
	v := Values{m: make(map[string]any, len(m))}
	for k, val := range m {
		v.m[k] = val
	}
	return v
}

func (v Values) Len() int { return len(v.m) }

func (v Values) Has(key string) bool {
	_, ok := v.m[key]
	return ok
}

func (v Values) Get(key string) (any, bool) {
	val, ok := v.m[key]
	return val, ok
}

// IsNull reports whether key is present and explicitly NULL.
func (v Values) IsNull(key string) bool {
	val, ok := v.m[key]
	return ok && val == nil
}

// With returns a copy of v with key set to val.
func (v Values) With(key string, val any) Values {
	out := ValuesOf(v.m)
	out.m[key] = val
	return out
}

// Without returns a copy of v with key removed.
func (v Values) Without(key string) Values {
	out := ValuesOf(v.m)
	delete(out.m, key)
	return out
}

// Keys returns the present keys in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying map.
func (v Values) Map() map[string]any {
	return ValuesOf(v.m).m
}

// String returns the value of key as a string. NULL reads as "".
// ok is false when the key is absent.
func (v Values) String(key string) (s string, ok bool) {
	val, ok := v.m[key]
	if !ok || val == nil {
		return "", ok
	}
	if str, isStr := val.(string); isStr {
		return str, true
	}
	return fmt.Sprint(val), true
}

// Int returns the value of key as an integer.
// ok is false when the key is absent, NULL or not an integer.
func (v Values) Int(key string) (n int64, ok bool) {
	val, present := v.m[key]
	if !present || val == nil {
		return 0, false
	}
	n, err := toInt(val)
	return n, err == nil
}

// Bool returns the value of key as a boolean.
// ok is false when the key is absent, NULL or not boolean-like.
func (v Values) Bool(key string) (b bool, ok bool) {
	val, present := v.m[key]
	if !present || val == nil {
		return false, false
	}
	b, err := toBool(val)
	return b, err == nil
}

// Normalize checks every key against the repo schema and coerces values to
// their canonical Go types: string, int64, bool or time.Time. NULL is kept.
// Unknown keys fail with common.ErrUnknownField.
func Normalize(v Values) (Values, error) {
	out := NewValues()
	for _, key := range v.Keys() {
		kind, ok := columnKinds[key]
		if !ok {
			return Values{}, fmt.Errorf("%w: %q", common.ErrUnknownField, key)
		}

		raw := v.m[key]
		if raw == nil {
			out.m[key] = nil
			continue
		}

		var (
			val any
			err error
		)
		switch kind {
		case KindString:
			val, err = toString(raw)
		case KindInt:
			val, err = toInt(raw)
		case KindBool:
			val, err = toBool(raw)
		case KindTime:
			val, err = toTime(raw)
		}
		if err != nil {
			return Values{}, fmt.Errorf("field %q: %w", key, err)
		}
		out.m[key] = val
	}
	return out, nil
}

func toString(val any) (string, error) {
	switch s := val.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("expected string, got %T", val)
	}
}

func toInt(val any) (int64, error) {
	switch n := val.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("expected integer, got %T", val)
	}
}

func toBool(val any) (bool, error) {
	switch b := val.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	default:
		n, err := toInt(val)
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %T", val)
		}
		return n != 0, nil
	}
}

func toTime(val any) (time.Time, error) {
	switch t := val.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return t.UTC(), nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", t)
	default:
		return time.Time{}, fmt.Errorf("expected time, got %T", val)
	}
}
