package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "ROPECORE_"

// envSetters maps variable names without the prefix to the setting they
// override.
var envSetters = map[string]func(s *Settings, val string) error{
	"TAB_WIDTH":        intSetter(func(s *Settings, n int) { s.TabWidth = n }),
	"INDENT_WIDTH":     intSetter(func(s *Settings, n int) { s.IndentWidth = n }),
	"MAX_UNDO_ENTRIES": intSetter(func(s *Settings, n int) { s.MaxUndoEntries = n }),
	"MAX_REVISIONS":    intSetter(func(s *Settings, n int) { s.MaxRevisions = n }),
	"EAST_ASIAN_WIDE": func(s *Settings, val string) error {
		b, err := parseBool(val)
		if err != nil {
			return err
		}
		s.EastAsianWide = b
		return nil
	},
	"LOG_LEVEL": func(s *Settings, val string) error {
		s.LogLevel = val
		return nil
	},
}

// FromEnv overrides base with ROPECORE_ environment variables and
// validates the result.
func FromEnv(base Settings) (Settings, error) {
	return FromLookup(base, os.LookupEnv)
}

// FromLookup is FromEnv with a custom variable lookup.
// Note: empty values are treated as set.
func FromLookup(base Settings, lookup func(string) (string, bool)) (Settings, error) {
	s := base
	var errs []error
	for name, set := range envSetters {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(&s, strings.TrimSpace(val)); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return base, err
	}
	if err := s.Validate(); err != nil {
		return base, fmt.Errorf("environment: %w", err)
	}
	return s, nil
}

func intSetter(set func(*Settings, int)) func(*Settings, string) error {
	return func(s *Settings, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		set(s, n)
		return nil
	}
}

// parseBool accepts the spellings shells commonly use.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
