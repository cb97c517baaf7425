// Package scale resolves the rendered text height of a label from its
// category, its subtype and the numeric scale options.
//
// Options are a flat table of numbers. Three keys are required:
//
//	b  base height added to every label
//	m  multiplier applied to the raw scale
//	q  rounding quantum for the scaled part (0 disables rounding)
//
// Per-category and per-subtype overrides are looked up by prefix, using the
// two halves of a label id such as "City-NY":
//
//	bCity   base override for the City category
//	mCity   multiplier override for the City category
//	m-NY    extra multiplier for the NY subtype
package scale

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/labelmap/pkg/errors"
)

// Required option keys.
const (
	KeyBase       = "b"
	KeyMultiplier = "m"
	KeyQuantum    = "q"
)

// Options holds numeric scale options keyed by name.
type Options map[string]float64

// Clone returns a copy of o.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Validate checks that the required keys are present and that every value
// is finite.
func (o Options) Validate() error {
	for _, k := range []string{KeyBase, KeyMultiplier, KeyQuantum} {
		if _, ok := o[k]; !ok {
			return errors.InvalidConfiguration("scale option %q is required", k)
		}
	}
	for k, v := range o {
		if !finite(v) {
			return errors.InvalidConfiguration("scale option %q is not a finite number: %v", k, v)
		}
	}
	return nil
}

// lookup returns o[key] when present, falling back to def.
func (o Options) lookup(key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	if !finite(v) {
		return 0, errors.InvalidConfiguration("scale option %q is not a finite number: %v", key, v)
	}
	return v, nil
}

func (o Options) required(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, errors.InvalidConfiguration("scale option %q is required", key)
	}
	if !finite(v) {
		return 0, errors.InvalidConfiguration("scale option %q is not a finite number: %v", key, v)
	}
	return v, nil
}

// SplitID splits a label id into its category prefix and subtype suffix at
// the first '-'. An id without '-' has an empty suffix.
func SplitID(id string) (prefix, suffix string) {
	prefix, suffix, _ = strings.Cut(id, "-")
	return prefix, suffix
}

// Size returns the rendered height of the label id with the given raw scale:
//
//	base + Round(mult * subMult * rawScale, q)
//
// where base and mult prefer the category override over the global value and
// subMult defaults to 1.
func Size(opts Options, id string, rawScale float64) (float64, error) {
	if !finite(rawScale) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "label %s has a non-finite scale", id)
	}

	b, err := opts.required(KeyBase)
	if err != nil {
		return 0, err
	}
	m, err := opts.required(KeyMultiplier)
	if err != nil {
		return 0, err
	}
	q, err := opts.required(KeyQuantum)
	if err != nil {
		return 0, err
	}

	prefix, suffix := SplitID(id)
	base, err := opts.lookup("b"+prefix, b)
	if err != nil {
		return 0, err
	}
	mult, err := opts.lookup("m"+prefix, m)
	if err != nil {
		return 0, err
	}
	subMult := 1.0
	if suffix != "" {
		if subMult, err = opts.lookup("m-"+suffix, 1); err != nil {
			return 0, err
		}
	}

	return base + Round(mult*subMult*rawScale, q), nil
}

// Round rounds v to the nearest multiple of q. A non-positive q leaves v
// unchanged.
func Round(v, q float64) float64 {
	if q <= 0 {
		return v
	}
	return math.Round(v/q) * q
}

// ParseOptions converts loosely typed option values, as decoded from TOML,
// YAML or command-line flags, into Options. Numbers and numeric strings are
// accepted; anything else fails with INVALID_CONFIGURATION.
func ParseOptions(raw map[string]any) (Options, error) {
	out := make(Options, len(raw))
	for k, v := range raw {
		f, err := ParseValue(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "scale option %q", k)
		}
		out[k] = f
	}
	return out, nil
}

// ParseValue converts a single option value to a finite float64.
func ParseValue(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
	if !finite(f) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
