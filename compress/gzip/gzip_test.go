// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package gzip

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	kgzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func text(n int, seed int64) []byte {
	words := []string{"member", "header", "trailer", "crc", "inflate", "deflate", "the", "and", "of", "\n"}
	rnd := rand.New(rand.NewSource(seed))
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rnd.Intn(len(words))])
		b.WriteByte(' ')
	}
	return b.Bytes()[:n]
}

func gzipData(t *testing.T, hdr Header, level int, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriterLevel(&buf, level)
	require.NoError(t, err)
	w.Header = hdr
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestHeaderRoundTrip(t *testing.T) {
	hdr := Header{
		Comment: "café au lait",
		Extra:   []byte("extra field"),
		ModTime: time.Unix(1234567890, 0),
		Name:    "résumé.txt",
		OS:      3,
	}
	data := text(40000, 1)
	comp := gzipData(t, hdr, DefaultCompression, data)

	r, err := NewReader(bytes.NewReader(comp))
	require.NoError(t, err)
	if diff := cmp.Diff(hdr, r.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, r.Close())

	sr, err := stdgzip.NewReader(bytes.NewReader(comp))
	require.NoError(t, err)
	stdHdr := Header{Comment: sr.Comment, Extra: sr.Extra, ModTime: sr.ModTime, Name: sr.Name, OS: sr.OS}
	if diff := cmp.Diff(hdr, stdHdr); diff != "" {
		t.Fatalf("standard library header mismatch (-want +got):\n%s", diff)
	}
}

func TestReadForeign(t *testing.T) {
	data := text(30000, 2)
	modTime := time.Unix(1700000000, 0)

	var std bytes.Buffer
	sw := stdgzip.NewWriter(&std)
	sw.Name, sw.ModTime = "std.txt", modTime
	sw.Write(data)
	require.NoError(t, sw.Close())

	var kp bytes.Buffer
	kw := kgzip.NewWriter(&kp)
	kw.Name, kw.ModTime = "klauspost.txt", modTime
	kw.Write(data)
	require.NoError(t, kw.Close())

	for name, comp := range map[string][]byte{"std.txt": std.Bytes(), "klauspost.txt": kp.Bytes()} {
		r, err := NewReader(bytes.NewReader(comp))
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Name)
		assert.True(t, r.ModTime.Equal(modTime), name)
		got, err := io.ReadAll(r)
		require.NoError(t, err, name)
		assert.Equal(t, data, got, name)
	}
}

func TestWriteForeign(t *testing.T) {
	data := text(50000, 3)
	for _, level := range []int{HuffmanOnly, NoCompression, BestSpeed, DefaultCompression, BestCompression} {
		comp := gzipData(t, Header{Name: "data"}, level, data)

		sr, err := stdgzip.NewReader(bytes.NewReader(comp))
		require.NoError(t, err)
		got, err := io.ReadAll(sr)
		require.NoError(t, err, "level %d", level)
		assert.Equal(t, data, got, "level %d", level)

		kr, err := kgzip.NewReader(bytes.NewReader(comp))
		require.NoError(t, err)
		got, err = io.ReadAll(kr)
		require.NoError(t, err, "level %d", level)
		assert.Equal(t, data, got, "level %d", level)
	}
}

func TestWriterDefaults(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Header{OS: unknownOS}, r.Header)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriterReset(t *testing.T) {
	data := text(10000, 4)
	var a, b bytes.Buffer
	w, err := NewWriterLevel(&a, BestSpeed)
	require.NoError(t, err)
	w.Name = "a"
	w.Write(data)
	require.NoError(t, w.Close())

	w.Reset(&b)
	assert.Empty(t, w.Name)
	w.Name = "a"
	w.Write(data)
	require.NoError(t, w.Close())
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriterFlush(t *testing.T) {
	data := text(10000, 5)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Write(data)
	require.NoError(t, w.Flush())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got := make([]byte, len(data))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, w.Close())
}

func TestWriterErrors(t *testing.T) {
	_, err := NewWriterLevel(io.Discard, 10)
	require.Error(t, err)
	_, err = NewWriterLevel(io.Discard, -3)
	require.Error(t, err)

	w := NewWriter(io.Discard)
	w.Name = "snow ☃"
	_, err = w.Write([]byte("data"))
	require.Error(t, err)
	require.Error(t, w.Close())
}

func TestReaderErrors(t *testing.T) {
	comp := gzipData(t, Header{Name: "x"}, DefaultCompression, text(5000, 6))

	bad := append([]byte(nil), comp...)
	bad[len(bad)-8] ^= 0xff
	r, err := NewReader(bytes.NewReader(bad))
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, ErrChecksum)

	bad = append([]byte(nil), comp...)
	bad[len(bad)-1] ^= 0xff
	r, err = NewReader(bytes.NewReader(bad))
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, ErrChecksum)

	bad = append([]byte(nil), comp...)
	bad[2] = 7
	_, err = NewReader(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrHeader)

	_, err = NewReader(bytes.NewReader([]byte("not a gzip file")))
	require.ErrorIs(t, err, ErrHeader)

	_, err = NewReader(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)

	_, err = NewReader(bytes.NewReader(comp[:5]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
