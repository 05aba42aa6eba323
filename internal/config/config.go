// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the settings of the zpipe command from a TOML or
// YAML file, the environment and an optional .env file.
package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/intel/fastzlib/compress/zlib"
)

const (
	EnvVarPrefix = "ZPIPE"

	DefaultFormat   = "gzip"
	DefaultStrategy = "default"
	DefaultLogLevel = "info"

	MinWindowBits = 9

	MinJobs = 1
	MaxJobs = 256
)

var strategies = map[string]zlib.Strategy{
	"default":  zlib.DefaultStrategy,
	"filtered": zlib.Filtered,
	"huffman":  zlib.HuffmanOnly,
	"rle":      zlib.RLE,
	"fixed":    zlib.Fixed,
}

// Settings are the codec and runtime options shared by the subcommands.
type Settings struct {
	Format     string `toml:"format" yaml:"format"`
	Level      int    `toml:"level" yaml:"level"`
	Strategy   string `toml:"strategy" yaml:"strategy"`
	WindowBits int    `toml:"window_bits" yaml:"window_bits"`
	MemLevel   int    `toml:"mem_level" yaml:"mem_level"`
	Jobs       int    `toml:"jobs" yaml:"jobs"`
	LogLevel   string `toml:"log_level" yaml:"log_level"`
}

// Default returns the settings used when nothing else is configured.
func Default() Settings {
	return Settings{
		Format:     DefaultFormat,
		Level:      zlib.DefaultCompression,
		Strategy:   DefaultStrategy,
		WindowBits: zlib.MaxWBits,
		MemLevel:   zlib.DefMemLevel,
		Jobs:       min(runtime.NumCPU(), MaxJobs),
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads a config file over the defaults. The syntax follows the file
// extension: .toml, or .yaml and .yml.
func Load(path string) (Settings, error) {
	s := Default()

	f, err := os.Open(path)
	if err != nil {
		return s, errors.Wrap(err, "error opening config file")
	}
	defer f.Close()

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		err = toml.NewDecoder(f).DisallowUnknownFields().Decode(&s)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err = dec.Decode(&s); err == io.EOF {
			err = nil
		}
	default:
		return s, errors.Errorf("config file %s: unknown extension %q", path, ext)
	}
	if err != nil {
		return s, errors.Wrapf(err, "error parsing config file %s", path)
	}

	if err := s.Validate(); err != nil {
		return s, errors.Wrapf(err, "error validating config file %s", path)
	}
	return s, nil
}

// LoadEnv adds the variables of the given .env files to the environment.
// Variables already set are kept, and missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "error loading %s", path)
		}
	}
	return nil
}

// Validate checks every field.
func (s Settings) Validate() error {
	if _, err := zlib.ParseFormat(s.Format); err != nil {
		return errors.Wrap(err, "format")
	}
	if s.Level < zlib.DefaultCompression || s.Level > zlib.BestCompression {
		return errors.Errorf("level must be between %d and %d", zlib.DefaultCompression, zlib.BestCompression)
	}
	if _, ok := strategies[s.Strategy]; !ok {
		return errors.Errorf("strategy %q is invalid", s.Strategy)
	}
	if s.WindowBits < MinWindowBits || s.WindowBits > zlib.MaxWBits {
		return errors.Errorf("window_bits must be between %d and %d", MinWindowBits, zlib.MaxWBits)
	}
	if s.MemLevel < 1 || s.MemLevel > zlib.MaxMemLevel {
		return errors.Errorf("mem_level must be between 1 and %d", zlib.MaxMemLevel)
	}
	if s.Jobs < MinJobs || s.Jobs > MaxJobs {
		return errors.Errorf("jobs must be between %d and %d", MinJobs, MaxJobs)
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// ValidateWriter is Validate for settings used to compress. FormatAuto and
// FormatDeflate64 can only be decompressed.
func (s Settings) ValidateWriter() error {
	if err := s.Validate(); err != nil {
		return err
	}
	switch f, _ := zlib.ParseFormat(s.Format); f {
	case zlib.FormatAuto, zlib.FormatDeflate64:
		return errors.Errorf("format %q cannot be used to compress", s.Format)
	}
	return nil
}

// Vars exposes the settings as kong variables, so that flag defaults
// such as ${level} come from them.
func (s Settings) Vars() kong.Vars {
	return kong.Vars{
		"format":      s.Format,
		"level":       strconv.Itoa(s.Level),
		"strategy":    s.Strategy,
		"window_bits": strconv.Itoa(s.WindowBits),
		"mem_level":   strconv.Itoa(s.MemLevel),
		"jobs":        strconv.Itoa(s.Jobs),
		"log_level":   s.LogLevel,
	}
}

// ReaderFormat returns the container to decompress.
func (s Settings) ReaderFormat() (zlib.Format, error) {
	return zlib.ParseFormat(s.Format)
}

// WriterOptions returns the compressor options.
func (s Settings) WriterOptions() (zlib.WriterOptions, error) {
	if err := s.ValidateWriter(); err != nil {
		return zlib.WriterOptions{}, err
	}
	f, _ := zlib.ParseFormat(s.Format)
	strategy, ok := strategies[s.Strategy]
	if !ok {
		return zlib.WriterOptions{}, errors.Errorf("strategy %q is invalid", s.Strategy)
	}
	return zlib.WriterOptions{
		Format:     f,
		Level:      s.Level,
		Strategy:   strategy,
		WindowBits: s.WindowBits,
		MemLevel:   s.MemLevel,
	}, nil
}
