package config

import (
	"strconv"
	"strings"

	"github.com/matzehuels/labelmap/pkg/errors"
)

// ApplyOverrides applies "key=value" assignments as given to --set.
//
// Layout settings are addressed by their file name (imgScale,
// spacingFactor, precision, ...). "tier.<Category>" sets a priority tier.
// Every other key is taken as a scale option, such as "b", "mCity" or
// "m-NY".
func (c *Config) ApplyOverrides(sets []string) error {
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.InvalidConfiguration("override %q is not key=value", set)
		}
		if err := c.set(key, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) set(key, value string) error {
	l := &c.Layout
	switch key {
	case "imgScale":
		return setFloat(&l.ImgScale, key, value)
	case "spacingFactor":
		return setFloat(&l.SpacingFactor, key, value)
	case "distanceDiscardThreshold":
		return setFloat(&l.DistanceDiscardThreshold, key, value)
	case "epsilon":
		return setFloat(&l.Epsilon, key, value)
	case "discardFromTier":
		return setInt(&l.DiscardFromTier, key, value)
	case "defaultTier":
		return setInt(&l.DefaultTier, key, value)
	case "precision":
		return setInt(&l.Precision, key, value)
	case "distanceMeasure":
		l.DistanceMeasure = value
	case "collection":
		l.Collection = value
	default:
		if cat, ok := strings.CutPrefix(key, "tier."); ok {
			var tier int
			if err := setInt(&tier, key, value); err != nil {
				return err
			}
			if l.PriorityTiers == nil {
				l.PriorityTiers = make(map[string]int)
			}
			l.PriorityTiers[tierKey(cat)] = tier
			return nil
		}
		if l.Scale == nil {
			l.Scale = make(map[string]any)
		}
		l.Scale[key] = value
	}
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errors.InvalidConfiguration("%s: %q is not a number", key, value)
	}
	*dst = f
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return errors.InvalidConfiguration("%s: %q is not an integer", key, value)
	}
	*dst = n
	return nil
}
