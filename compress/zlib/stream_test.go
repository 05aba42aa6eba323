// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"bufio"
	"bytes"
	stdflate "compress/flate"
	stdgzip "compress/gzip"
	"io"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeAll(t *testing.T, opts WriterOptions, data []byte, chunk int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriterOptions(&buf, opts)
	require.NoError(t, err)
	for len(data) > 0 {
		n := min(chunk, len(data))
		m, err := w.Write(data[:n])
		require.NoError(t, err)
		require.Equal(t, n, m)
		data = data[n:]
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, r io.Reader, f Format, dict []byte) ([]byte, error) {
	t.Helper()
	zr, err := NewReaderDict(r, f, dict)
	require.NoError(t, err)
	defer zr.Close()
	return io.ReadAll(zr)
}

func TestWriterReader(t *testing.T) {
	data := append(corpus(100000, 50), noise(10000, 51)...)
	for _, f := range containers {
		for _, level := range []int{NoCompression, BestSpeed, DefaultCompression, BestCompression} {
			comp := writeAll(t, WriterOptions{Format: f, Level: level}, data, 7000)
			assert.Equal(t, data, stdDecompress(t, f, comp), "%v level %d", f, level)

			for name, r := range map[string]io.Reader{
				"whole":    bytes.NewReader(comp),
				"one byte": iotest.OneByteReader(bytes.NewReader(comp)),
				"half":     iotest.HalfReader(bytes.NewReader(comp)),
			} {
				got, err := readAll(t, r, f, nil)
				require.NoError(t, err, "%v level %d %s", f, level, name)
				require.Equal(t, data, got, "%v level %d %s", f, level, name)
			}
		}
	}
}

func TestWriterOptions(t *testing.T) {
	data := corpus(20000, 52)
	head := &GzipHeader{Name: []byte("test-file"), Comment: []byte("a comment"), Time: 1234567890, OS: 3}
	comp := writeAll(t, WriterOptions{
		Format:     FormatGzip,
		Level:      BestCompression,
		WindowBits: 12,
		MemLevel:   MaxMemLevel,
		Strategy:   Filtered,
		Header:     head,
	}, data, len(data))

	r, err := stdgzip.NewReader(bytes.NewReader(comp))
	require.NoError(t, err)
	assert.Equal(t, "test-file", r.Name)
	assert.Equal(t, "a comment", r.Comment)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	zr, err := NewReader(bytes.NewReader(comp), FormatGzip)
	require.NoError(t, err)
	got, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	h := zr.Header()
	require.NotNil(t, h)
	assert.Equal(t, "test-file", string(h.Name[:fieldLen(h.Name)]))
	assert.Equal(t, uint32(1234567890), h.Time)
	require.NoError(t, zr.Close())
}

func TestWriterErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriterLevel(&buf, FormatZlib, 12)
	require.ErrorIs(t, err, ErrStream)

	_, err = NewWriter(&buf, FormatAuto)
	require.Error(t, err)
	_, err = NewWriter(&buf, FormatDeflate64)
	require.Error(t, err)

	_, err = NewWriterOptions(&buf, WriterOptions{Format: FormatZlib, Header: &GzipHeader{}})
	require.ErrorIs(t, err, ErrStream)

	w, err := NewWriter(&buf, FormatZlib)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, w.Close())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestWriterPropagatesWriteError(t *testing.T) {
	w, err := NewWriterLevel(failWriter{}, FormatRaw, NoCompression)
	require.NoError(t, err)
	_, err = w.Write(noise(100000, 53))
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.ErrorIs(t, w.Close(), io.ErrShortWrite)
}

func TestWriterFlush(t *testing.T) {
	data := corpus(10000, 54)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatRaw)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	// everything written so far is readable before Close
	got := make([]byte, len(data))
	_, err = io.ReadFull(stdflate.NewReader(bytes.NewReader(buf.Bytes())), got)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, w.Close())
}

func TestWriterReset(t *testing.T) {
	data := corpus(5000, 55)
	var a, b bytes.Buffer
	w, err := NewWriter(&a, FormatGzip)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, w.Reset(&b))
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestReaderMultistream(t *testing.T) {
	first, second := corpus(3000, 56), corpus(4000, 57)
	comp := writeAll(t, WriterOptions{Format: FormatGzip, Level: 6, Header: &GzipHeader{Name: []byte("first")}}, first, 1000)
	comp = append(comp, writeAll(t, WriterOptions{Format: FormatGzip, Level: 1, Header: &GzipHeader{Name: []byte("second")}}, second, 1000)...)

	got, err := readAll(t, bytes.NewReader(comp), FormatGzip, nil)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte(nil), first...), second...), got)

	zr, err := NewReader(bytes.NewReader(comp), FormatGzip)
	require.NoError(t, err)
	zr.Multistream(false)
	got, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	h := zr.Header()
	require.NotNil(t, h)
	assert.Equal(t, "first", string(h.Name[:fieldLen(h.Name)]))
	require.NoError(t, zr.Close())

	// a single zlib stream ignores trailing bytes
	zcomp := writeAll(t, WriterOptions{Format: FormatZlib, Level: 6}, first, len(first))
	got, err = readAll(t, bytes.NewReader(append(zcomp, "trailing"...)), FormatZlib, nil)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestReaderDictionary(t *testing.T) {
	dict := []byte("the quick brown fox jumps over a lazy dog")
	data := corpus(5000, 58)
	for _, f := range []Format{FormatZlib, FormatRaw} {
		comp := writeAll(t, WriterOptions{Format: f, Level: 6, Dict: dict}, data, len(data))
		got, err := readAll(t, bytes.NewReader(comp), f, dict)
		require.NoError(t, err, "%v", f)
		assert.Equal(t, data, got, "%v", f)
	}

	comp := writeAll(t, WriterOptions{Format: FormatZlib, Level: 6, Dict: dict}, data, len(data))
	_, err := readAll(t, bytes.NewReader(comp), FormatZlib, nil)
	require.ErrorIs(t, err, ErrDictionary)
	_, err = readAll(t, bytes.NewReader(comp), FormatZlib, dict[1:])
	require.ErrorIs(t, err, ErrData)
}

func TestReaderErrors(t *testing.T) {
	data := corpus(20000, 59)
	comp := writeAll(t, WriterOptions{Format: FormatZlib, Level: 6}, data, len(data))

	bad := append([]byte(nil), comp...)
	bad[len(bad)-1] ^= 0xff
	_, err := readAll(t, bytes.NewReader(bad), FormatZlib, nil)
	require.ErrorIs(t, err, ErrData)
	assert.Contains(t, err.Error(), "incorrect data check")

	_, err = readAll(t, bytes.NewReader(comp[:len(comp)/2]), FormatZlib, nil)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = readAll(t, iotest.ErrReader(io.ErrClosedPipe), FormatZlib, nil)
	require.ErrorIs(t, err, io.ErrClosedPipe)

	_, err = NewReader(bytes.NewReader(comp), Format(42))
	require.Error(t, err)
}

func TestReaderDeflate64(t *testing.T) {
	var w bitWriter
	w.fixedHeader(true)
	w.literal('a')
	w.symbol(285)
	w.bits(60000-4, 16)
	w.huff(0, 5)
	w.symbol(256)

	got, err := readAll(t, iotest.OneByteReader(bytes.NewReader(w.bytes())), FormatDeflate64, nil)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 60000), got)
}

func TestReaderAuto(t *testing.T) {
	data := corpus(8000, 60)
	for _, f := range []Format{FormatZlib, FormatGzip} {
		comp := writeAll(t, WriterOptions{Format: f, Level: 6}, data, len(data))
		got, err := readAll(t, bytes.NewReader(comp), FormatAuto, nil)
		require.NoError(t, err, "%v", f)
		assert.Equal(t, data, got)
	}
}

func TestReaderReset(t *testing.T) {
	data := corpus(8000, 61)
	zr, err := NewReader(bytes.NewReader(nil), FormatRaw)
	require.NoError(t, err)
	for _, f := range containers {
		comp := writeAll(t, WriterOptions{Format: f, Level: 6}, data, len(data))
		require.NoError(t, zr.Reset(bytes.NewReader(comp), f, nil))
		got, err := io.ReadAll(zr)
		require.NoError(t, err, "%v", f)
		assert.Equal(t, data, got)
	}
	require.NoError(t, zr.Close())
}

func TestFormat(t *testing.T) {
	for _, f := range []Format{FormatRaw, FormatZlib, FormatGzip, FormatDeflate64, FormatAuto} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("lz4")
	require.Error(t, err)
	assert.Equal(t, "format(9)", Format(9).String())
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "data error", DataError.String())
	assert.Equal(t, "need dictionary", NeedDict.String())
	assert.Equal(t, "status(7)", Status(7).String())
	assert.NoError(t, StreamEnd.Err())
	assert.ErrorIs(t, BufError.Err(), ErrBuf)
}

func TestReaderBufio(t *testing.T) {
	data := corpus(50000, 62)
	for _, f := range containers {
		comp := writeAll(t, WriterOptions{Format: f, Level: 6}, data, len(data))
		br := bufio.NewReaderSize(bytes.NewReader(append(comp, "rest"...)), 1000)
		zr, err := NewReader(br, f)
		require.NoError(t, err)
		zr.Multistream(false)
		got, err := io.ReadAll(zr)
		require.NoError(t, err, "%v", f)
		assert.Equal(t, data, got)
		assert.Equal(t, int64(len(comp)), zr.InputOffset(), "%v", f)
		require.NoError(t, zr.Close())

		rest, err := io.ReadAll(br)
		require.NoError(t, err)
		assert.Equal(t, "rest", string(rest), "%v", f)
	}
}

func TestReadHeader(t *testing.T) {
	data := corpus(3000, 63)
	comp := writeAll(t, WriterOptions{Format: FormatGzip, Level: 6, Header: &GzipHeader{Name: []byte("member"), Time: 42}}, data, len(data))

	zr, err := NewReader(iotest.OneByteReader(bytes.NewReader(comp)), FormatGzip)
	require.NoError(t, err)
	h, err := zr.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, "member", string(h.Name[:fieldLen(h.Name)]))
	assert.Equal(t, uint32(42), h.Time)
	assert.Equal(t, 1, zr.Members())
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, zr.Close())

	zr, err = NewReader(bytes.NewReader(nil), FormatGzip)
	require.NoError(t, err)
	_, err = zr.ReadHeader()
	require.ErrorIs(t, err, io.EOF)

	zr, err = NewReader(bytes.NewReader(comp[:4]), FormatGzip)
	require.NoError(t, err)
	_, err = zr.ReadHeader()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	zr, err = NewReader(bytes.NewReader(comp), FormatRaw)
	require.NoError(t, err)
	_, err = zr.ReadHeader()
	require.Error(t, err)
}

func TestErrorType(t *testing.T) {
	comp := writeAll(t, WriterOptions{Format: FormatZlib, Level: 6}, corpus(1000, 64), 1000)
	comp[0] = 0x79
	_, err := readAll(t, bytes.NewReader(comp), FormatZlib, nil)
	var zerr *Error
	require.True(t, errors.As(err, &zerr))
	assert.Equal(t, DataError, zerr.Status)
	assert.Equal(t, "incorrect header check", zerr.Msg)
	assert.Equal(t, "zlib: incorrect header check", zerr.Error())
	assert.ErrorIs(t, err, ErrData)
}
