// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package gzip

import (
	"io"

	"github.com/pkg/errors"

	"github.com/intel/fastzlib/compress/zlib"
)

// Writer compresses to a single gzip member. The Header fields are written
// with the first call to Write, Flush or Close.
type Writer struct {
	Header
	w     io.Writer
	level int
	zw    *zlib.Writer
	err   error
}

// NewWriter returns a Writer at the default compression level.
func NewWriter(w io.Writer) *Writer {
	z, _ := NewWriterLevel(w, DefaultCompression)
	return z
}

// NewWriterLevel returns a Writer at the given level, HuffmanOnly or
// between DefaultCompression and BestCompression.
func NewWriterLevel(w io.Writer, level int) (*Writer, error) {
	if level < HuffmanOnly || level > BestCompression {
		return nil, errors.Errorf("gzip: invalid compression level: %d", level)
	}
	z := new(Writer)
	z.init(w, level)
	return z, nil
}

func (z *Writer) init(w io.Writer, level int) {
	*z = Writer{
		Header: Header{OS: unknownOS},
		w:      w,
		level:  level,
	}
}

// Reset discards the state of z, including the header, and makes it
// write to w at the same level.
func (z *Writer) Reset(w io.Writer) {
	z.init(w, z.level)
}

// start creates the compressor once the header is final.
func (z *Writer) start() error {
	if z.zw != nil || z.err != nil {
		return z.err
	}
	h, err := z.Header.toZlib()
	if err != nil {
		z.err = err
		return err
	}
	opts := zlib.WriterOptions{Format: zlib.FormatGzip, Level: z.level, Header: h}
	if z.level == HuffmanOnly {
		opts.Level = BestSpeed
		opts.Strategy = zlib.HuffmanOnly
	}
	z.zw, z.err = zlib.NewWriterOptions(z.w, opts)
	return z.err
}

func (z *Writer) Write(p []byte) (int, error) {
	if err := z.start(); err != nil {
		return 0, err
	}
	n, err := z.zw.Write(p)
	if err != nil {
		z.err = err
	}
	return n, err
}

// Flush writes any pending data to the underlying writer, ending on a byte
// boundary so that a reader can decompress everything written so far.
func (z *Writer) Flush() error {
	if err := z.start(); err != nil {
		return err
	}
	if err := z.zw.Flush(); err != nil {
		z.err = err
	}
	return z.err
}

// Close writes the trailer. It does not close the underlying writer.
func (z *Writer) Close() error {
	if err := z.start(); err != nil {
		return err
	}
	if err := z.zw.Close(); err != nil {
		z.err = err
	}
	return z.err
}
