package annot

import (
	"fmt"
	"strconv"
	"time"
)

// Value is the result of a metadata lookup: the text of zero or more matched
// nodes. The scalar accessors collapse a single-element value the way the
// annotation consumers expect; they fail when the cardinality is wrong, so a
// missing field surfaces at the call site instead of as a zero value.
type Value []string

// Empty reports whether the lookup matched nothing.
func (v Value) Empty() bool { return len(v) == 0 }

// Strings returns all matched values.
func (v Value) Strings() []string { return []string(v) }

// String returns the single matched value.
func (v Value) String() (string, error) {
	if len(v) != 1 {
		return "", fmt.Errorf("expected exactly one value, got %d", len(v))
	}
	return v[0], nil
}

// Float returns the single matched value parsed as float64.
func (v Value) Float() (float64, error) {
	s, err := v.String()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", s, err)
	}
	return f, nil
}

// Floats returns all matched values parsed as float64.
func (v Value) Floats() ([]float64, error) {
	out := make([]float64, len(v))
	for i, s := range v {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}

// Int returns the single matched value parsed as int.
func (v Value) Int() (int, error) {
	s, err := v.String()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return n, nil
}

// Bool returns the single matched value parsed as a boolean. The annotation
// encodes switches as the literals "true" and "false".
func (v Value) Bool() (bool, error) {
	s, err := v.String()
	if err != nil {
		return false, err
	}
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// Time returns the single matched value parsed as an instant.
func (v Value) Time() (time.Time, error) {
	s, err := v.String()
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(s)
}

// Times returns all matched values parsed as instants.
func (v Value) Times() ([]time.Time, error) {
	out := make([]time.Time, len(v))
	for i, s := range v {
		t, err := ParseTime(s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
