// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intel/fastzlib/compress/zlib"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	opts, err := s.WriterOptions()
	require.NoError(t, err)
	assert.Equal(t, zlib.WriterOptions{
		Format:     zlib.FormatGzip,
		Level:      zlib.DefaultCompression,
		Strategy:   zlib.DefaultStrategy,
		WindowBits: zlib.MaxWBits,
		MemLevel:   zlib.DefMemLevel,
	}, opts)
}

func TestLoad(t *testing.T) {
	tomlPath := writeFile(t, "zpipe.toml", `
format = "zlib"
level = 9
strategy = "filtered"
window_bits = 12
jobs = 3
log_level = "debug"
`)
	yamlPath := writeFile(t, "zpipe.yaml", `
format: zlib
level: 9
strategy: filtered
window_bits: 12
jobs: 3
log_level: debug
`)
	want := Default()
	want.Format = "zlib"
	want.Level = 9
	want.Strategy = "filtered"
	want.WindowBits = 12
	want.Jobs = 3
	want.LogLevel = "debug"

	for _, path := range []string{tomlPath, yamlPath} {
		s, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, s, path)
	}

	s, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadErrors(t *testing.T) {
	for name, content := range map[string]string{
		"unknown.toml":  `colour = "blue"`,
		"level.toml":    `level = 10`,
		"format.yaml":   `format: lz4`,
		"strategy.yaml": `strategy: greedy`,
		"window.toml":   `window_bits = 16`,
		"mem.toml":      `mem_level = 0`,
		"jobs.yaml":     `jobs: 0`,
		"log.yaml":      `log_level: loud`,
		"syntax.toml":   `level = `,
		"config.json":   `{}`,
	} {
		_, err := Load(writeFile(t, name, content))
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "ZPIPE_TEST_LEVEL=4\nZPIPE_TEST_FORMAT=raw\n")
	t.Setenv("ZPIPE_TEST_FORMAT", "zlib")
	t.Setenv("ZPIPE_TEST_LEVEL", "")
	require.NoError(t, os.Unsetenv("ZPIPE_TEST_LEVEL"))

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "4", os.Getenv("ZPIPE_TEST_LEVEL"))
	// set variables win over the file
	assert.Equal(t, "zlib", os.Getenv("ZPIPE_TEST_FORMAT"))
}

func TestVars(t *testing.T) {
	s := Default()
	s.Level = 3
	vars := s.Vars()
	assert.Equal(t, "3", vars["level"])
	assert.Equal(t, "gzip", vars["format"])
	assert.Equal(t, "15", vars["window_bits"])
}

func TestStrategies(t *testing.T) {
	for name, want := range strategies {
		s := Default()
		s.Strategy = name
		opts, err := s.WriterOptions()
		require.NoError(t, err)
		assert.Equal(t, want, opts.Strategy)
	}

	s := Default()
	s.Format = "auto"
	f, err := s.ReaderFormat()
	require.NoError(t, err)
	assert.Equal(t, zlib.FormatAuto, f)
}

func TestValidateWriter(t *testing.T) {
	for _, format := range []string{"raw", "zlib", "gzip"} {
		s := Default()
		s.Format = format
		assert.NoError(t, s.ValidateWriter(), format)
	}
	for _, format := range []string{"auto", "deflate64"} {
		s := Default()
		s.Format = format
		// still fine for decompression
		require.NoError(t, s.Validate(), format)
		assert.Error(t, s.ValidateWriter(), format)
		_, err := s.WriterOptions()
		assert.Error(t, err, format)
	}

	s := Default()
	s.Level = 10
	assert.Error(t, s.ValidateWriter())
}
