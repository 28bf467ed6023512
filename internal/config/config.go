package config

import (
	"errors"

	"github.com/dshills/ropecore/internal/logging"
)

// Default values.
const (
	DefaultTabWidth       = 4
	DefaultIndentWidth    = 4
	DefaultMaxUndoEntries = 1000
	DefaultMaxRevisions   = 1000
	DefaultLogLevel       = "info"

	// MaxTabWidth bounds TabWidth and IndentWidth.
	MaxTabWidth = 16
)

// Settings configures an editing session.
type Settings struct {
	// TabWidth is the number of columns between tab stops.
	TabWidth int `toml:"tab_width" yaml:"tab_width"`

	// IndentWidth is the number of columns one indent level occupies.
	IndentWidth int `toml:"indent_width" yaml:"indent_width"`

	// MaxUndoEntries bounds the undo stack.
	MaxUndoEntries int `toml:"max_undo_entries" yaml:"max_undo_entries"`

	// MaxRevisions bounds the revision log used for rebasing.
	MaxRevisions int `toml:"max_revisions" yaml:"max_revisions"`

	// EastAsianWide measures ambiguous-width characters as two columns.
	EastAsianWide bool `toml:"east_asian_wide" yaml:"east_asian_wide"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		TabWidth:       DefaultTabWidth,
		IndentWidth:    DefaultIndentWidth,
		MaxUndoEntries: DefaultMaxUndoEntries,
		MaxRevisions:   DefaultMaxRevisions,
		LogLevel:       DefaultLogLevel,
	}
}

// Validate checks every setting and returns all problems joined.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, field string, value any, msg string) {
		if !ok {
			errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
		}
	}

	check(s.TabWidth >= 1 && s.TabWidth <= MaxTabWidth, "tab_width", s.TabWidth, "must be between 1 and 16")
	check(s.IndentWidth >= 1 && s.IndentWidth <= MaxTabWidth, "indent_width", s.IndentWidth, "must be between 1 and 16")
	check(s.MaxUndoEntries > 0, "max_undo_entries", s.MaxUndoEntries, "must be positive")
	check(s.MaxRevisions > 0, "max_revisions", s.MaxRevisions, "must be positive")
	_, ok := logging.ParseLevel(s.LogLevel)
	check(ok, "log_level", s.LogLevel, "must be debug, info, warn or error")

	return errors.Join(errs...)
}

// Level returns the parsed log level, or info when it is not valid.
func (s Settings) Level() logging.Level {
	level, _ := logging.ParseLevel(s.LogLevel)
	return level
}
