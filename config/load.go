// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates an options file extension that has no decoder.
var ErrUnsupportedFormat = errors.New("config: unsupported options format")

// Load reads path, overlays it on Default() and validates the result.
func Load(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}

	return Decode(raw, filepath.Ext(path))
}

// Decode overlays raw, encoded according to ext (".json", ".yaml", ".yml",
// ".toml"), on Default() and validates the result.
func Decode(raw []byte, ext string) (Options, error) {
	opts := Default()
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&opts)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&opts)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(raw), &opts)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys %v", undecoded)
			}
		}
	default:
		return Options{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Options{}, fmt.Errorf("%w: decode: %v", ErrInvalidOptions, err)
	}
	if err = opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// LoadOrDefault behaves like Load but returns Default() when the file is
// missing, unreadable or invalid. The failure is logged on logger.
func LoadOrDefault(path string, logger *slog.Logger) Options {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return Default()
	}
	opts, err := Load(path)
	if err != nil {
		logger.Warn("options file not usable, using defaults",
			slog.String("component", "config"),
			slog.String("path", path),
			slog.Any("error", err))

		return Default()
	}

	return opts
}

// Encode renders o in the format implied by ext.
func Encode(o Options, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(o, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(o)
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(o); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
