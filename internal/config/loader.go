package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Format is a settings file format.
type Format int

// Supported formats.
const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the settings file at path over the defaults and validates
// the result.
func Load(path string) (Settings, error) {
	return LoadFS(OSFS{}, path, Default())
}

// LoadFS reads the settings file at path from fsys over base. Keys absent
// from the file keep their base values.
func LoadFS(fsys FileSystem, path string, base Settings) (Settings, error) {
	format, err := FormatOf(path)
	if err != nil {
		return base, err
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return base, fmt.Errorf("reading config file %s: %w", path, err)
	}

	s, err := Decode(bytes.NewReader(data), format, path, base)
	if err != nil {
		return base, err
	}
	if err := s.Validate(); err != nil {
		return base, fmt.Errorf("config file %s: %w", path, err)
	}
	return s, nil
}

// Decode reads settings in format from r over base. source names r in
// errors. Unknown keys are rejected.
func Decode(r io.Reader, format Format, source string, base Settings) (Settings, error) {
	s := base
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return base, tomlError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return base, yamlError(source, err)
		}
	default:
		return base, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return s, nil
}

func tomlError(source string, err error) error {
	perr := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		perr.Line, perr.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		perr.Line, perr.Column = serr.Errors[0].Position()
		perr.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
	}
	return perr
}

// yamlError extracts the line number yaml.v3 embeds in its messages as
// "line N:".
func yamlError(source string, err error) error {
	perr := &ParseError{Path: source, Message: err.Error(), Err: err}

	msg := err.Error()
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		msg = terr.Errors[0]
		perr.Message = msg
	}
	if i := strings.Index(msg, "line "); i >= 0 {
		rest := msg[i+len("line "):]
		if j := strings.IndexByte(rest, ':'); j > 0 {
			if n, convErr := strconv.Atoi(rest[:j]); convErr == nil {
				perr.Line = n
			}
		}
	}
	return perr
}
