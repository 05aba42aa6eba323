// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	stdflate "compress/flate"
	stdgzip "compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sample(n int) []byte {
	var b bytes.Buffer
	for i := 0; b.Len() < n; i++ {
		b.WriteString("zpipe moves bytes through deflate ")
		b.WriteString(strings.Repeat("x", i%17))
		b.WriteByte('\n')
	}
	return b.Bytes()[:n]
}

func zpipe(t *testing.T, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	var stdout, usage bytes.Buffer
	err := run(context.Background(), args, bytes.NewReader(stdin), &stdout,
		kong.Writers(&usage, &usage),
		kong.Exit(func(int) {}))
	return stdout.Bytes(), err
}

func TestStdinStdout(t *testing.T) {
	data := sample(100000)
	for _, format := range []string{"raw", "zlib", "gzip"} {
		comp, err := zpipe(t, data, "compress", "-f", format, "--level=9", "--strategy=filtered")
		require.NoError(t, err, format)
		assert.Less(t, len(comp), len(data))

		decFormat := format
		if format != "raw" {
			decFormat = "auto"
		}
		got, err := zpipe(t, comp, "decompress", "--format", decFormat)
		require.NoError(t, err, format)
		assert.Equal(t, data, got, format)
	}
}

func TestFiles(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	dir := t.TempDir()
	contents := map[string][]byte{}
	var names []string
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(dir, name)
		contents[path] = sample(20000 * (i + 1))
		require.NoError(t, os.WriteFile(path, contents[path], 0o644))
		names = append(names, path)
	}

	_, err := zpipe(t, nil, append([]string{"compress", "-j", "2"}, names...)...)
	require.NoError(t, err)

	var compressed []string
	for _, name := range names {
		f, err := os.Open(name + ".gz")
		require.NoError(t, err)
		r, err := stdgzip.NewReader(f)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, contents[name], got)
		require.NoError(t, f.Close())
		require.NoError(t, os.Remove(name))
		compressed = append(compressed, name+".gz")
	}

	var logged int
	for _, e := range hook.AllEntries() {
		if e.Message == "compressed" && e.Level == logrus.InfoLevel {
			logged++
		}
	}
	assert.Equal(t, len(names), logged)

	_, err = zpipe(t, nil, append([]string{"decompress"}, compressed...)...)
	require.NoError(t, err)
	for _, name := range names {
		got, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, contents[name], got)
	}

	// outputs are not overwritten without --force
	_, err = zpipe(t, nil, "decompress", compressed[0])
	require.Error(t, err)
	_, err = zpipe(t, nil, "decompress", "--force", compressed[0])
	require.NoError(t, err)

	// concatenated members on stdout
	out, err := zpipe(t, nil, append([]string{"decompress", "-c"}, compressed...)...)
	require.NoError(t, err)
	var want []byte
	for _, name := range names {
		want = append(want, contents[name]...)
	}
	assert.Equal(t, want, out)
}

func TestUnknownSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, sample(100), 0o644))
	_, err := zpipe(t, nil, "decompress", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown suffix")
}

func TestPrecedence(t *testing.T) {
	data := sample(5000)
	cfg := filepath.Join(t.TempDir(), "zpipe.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("format = \"zlib\"\nlevel = 1\n"), 0o644))

	// the file sets the default format
	comp, err := zpipe(t, data, "--config", cfg, "compress")
	require.NoError(t, err)
	assert.Equal(t, byte(0x78), comp[0])
	assert.Equal(t, byte(0x01), comp[1], "level 1 header")

	// the environment overrides the file
	t.Setenv("ZPIPE_FORMAT", "raw")
	comp, err = zpipe(t, data, "--config="+cfg, "compress")
	require.NoError(t, err)
	got, err := io.ReadAll(stdflate.NewReader(bytes.NewReader(comp)))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// flags override both
	comp, err = zpipe(t, data, "--config", cfg, "compress", "--format=gzip")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, comp[:2])

	t.Setenv("ZPIPE_CONFIG", cfg)
	t.Setenv("ZPIPE_FORMAT", "")
	require.NoError(t, os.Unsetenv("ZPIPE_FORMAT"))
	comp, err = zpipe(t, data, "compress")
	require.NoError(t, err)
	assert.Equal(t, byte(0x78), comp[0])
}

func TestInvalidSettings(t *testing.T) {
	_, err := zpipe(t, nil, "compress", "--level=12")
	require.Error(t, err)
	_, err = zpipe(t, nil, "compress", "--window-bits=20")
	require.Error(t, err)
	_, err = zpipe(t, nil, "compress", "--format=deflate64")
	require.ErrorContains(t, err, "cannot be used to compress")
	_, err = zpipe(t, nil, "compress", "--format=auto")
	require.ErrorContains(t, err, "cannot be used to compress")
	_, err = zpipe(t, []byte("not compressed"), "decompress", "--format=zlib")
	require.Error(t, err)

	cfg := filepath.Join(t.TempDir(), "zpipe.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("jobs: 0\n"), 0o644))
	_, err = zpipe(t, nil, "--config", cfg, "compress")
	require.Error(t, err)
}

func TestRatio(t *testing.T) {
	out, err := zpipe(t, sample(50000), "ratio", "--levels=1,9", "-j", "3")
	require.NoError(t, err)
	table := string(out)
	for _, name := range []string{"fastzlib-1", "fastzlib-9", "klauspost-flate", "zstd", "snappy", "lz4", "brotli"} {
		assert.Contains(t, table, name)
	}

	_, err = zpipe(t, sample(100), "ratio", "--levels=11")
	require.Error(t, err)
}
