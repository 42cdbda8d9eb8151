// Package parameters handles configuration strings used to build agents: a comma-separated list of
// keys with optional values, e.g. "alphabeta,max_depth=6,give_up=false".
package parameters

import (
	"strconv"
	"strings"

	"github.com/janpfeifer/gamesearch/internal/generics"
	"github.com/pkg/errors"
)

// Params represent generic configuration parameters, parsed from a configuration string.
type Params map[string]string

// Value types supported by GetParamOr and PopParamOr.
type Value interface {
	bool | int | uint64 | float32 | float64 | string
}

// NewFromConfigString create params from user's configuration string.
// Keys without a value ("give_up") are mapped to the empty string, which for bool parameters means true.
// Spaces around keys and values are ignored, as are empty entries.
//
// See GetParamOr and PopParamOr to parse values from it.
func NewFromConfigString(config string) Params {
	params := make(Params)
	for _, part := range strings.Split(config, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		params[key] = strings.TrimSpace(value)
	}
	return params
}

// PopParamOr is like GetParamOr, but it also deletes from the params map the retrieved parameter.
func PopParamOr[T Value](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr attempts to parse a parameter to the given type if the key is present, or returns the defaultValue
// if not.
//
// For bool types, a key without a value is interpreted as true.
func GetParamOr[T Value](params Params, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	var (
		parsed any
		err    error
	)
	switch any(defaultValue).(type) {
	case string:
		parsed = value
	case bool:
		switch strings.ToLower(value) {
		case "", "true", "1":
			parsed = true
		case "false", "0":
			parsed = false
		default:
			err = errors.Errorf("invalid bool value")
		}
	case int:
		parsed, err = strconv.Atoi(value)
	case uint64:
		parsed, err = strconv.ParseUint(value, 0, 64)
	case float32:
		var f float64
		f, err = strconv.ParseFloat(value, 32)
		parsed = float32(f)
	case float64:
		parsed, err = strconv.ParseFloat(value, 64)
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q as %T", key, value, defaultValue)
	}
	return parsed.(T), nil
}

// Has returns whether the key was given, with or without value.
func (p Params) Has(key string) bool {
	_, found := p[key]
	return found
}

// CheckAllUsed returns an error listing the remaining keys, if any. It is used after all known parameters
// were popped, to reject unknown ones.
func (p Params) CheckAllUsed() error {
	if len(p) == 0 {
		return nil
	}
	return errors.Errorf("unknown parameters \"%s\"", strings.Join(generics.KeysSlice(p), "\", \""))
}
