// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"io"

	"github.com/pkg/errors"
)

var errClosed = errors.New("zlib: writer is closed")

// WriterOptions configures a Writer. Zero WindowBits and MemLevel select
// the defaults; a zero Level means NoCompression.
type WriterOptions struct {
	Format     Format
	Level      int // 0..9 or DefaultCompression
	WindowBits int // 9..15, MaxWBits if zero
	MemLevel   int // 1..9, DefMemLevel if zero
	Strategy   Strategy
	Dict       []byte      // preset dictionary, raw and zlib only
	Header     *GzipHeader // gzip header, gzip only
}

// Writer compresses data written to it and writes the result to an
// underlying io.Writer.
type Writer struct {
	w      io.Writer
	z      Stream
	opts   WriterOptions
	out    *[]byte
	err    error
	closed bool
}

// NewWriter returns a Writer compressing to w at the default level.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	return NewWriterLevel(w, format, DefaultCompression)
}

// NewWriterLevel returns a Writer compressing to w at the given level.
func NewWriterLevel(w io.Writer, format Format, level int) (*Writer, error) {
	return NewWriterOptions(w, WriterOptions{Format: format, Level: level})
}

// NewWriterOptions returns a Writer compressing to w with opts.
func NewWriterOptions(w io.Writer, opts WriterOptions) (*Writer, error) {
	zw := &Writer{opts: opts}
	if err := zw.Reset(w); err != nil {
		return nil, err
	}
	return zw, nil
}

// Reset discards the state of zw and makes it compress a new stream to w
// with the same options.
func (zw *Writer) Reset(w io.Writer) error {
	if zw.z.dstate != nil {
		zw.z.DeflateEnd()
	}
	zw.z = Stream{}
	zw.w = w
	zw.err = nil
	zw.closed = false
	if zw.out == nil {
		zw.out = outPool.Get().(*[]byte)
	}

	o := zw.opts
	if o.Format != FormatRaw && o.Format != FormatZlib && o.Format != FormatGzip {
		return errors.Errorf("zlib: cannot compress to format %v", o.Format)
	}
	wbits := o.WindowBits
	if wbits == 0 {
		wbits = MaxWBits
	}
	memLevel := o.MemLevel
	if memLevel == 0 {
		memLevel = DefMemLevel
	}
	st := zw.z.DeflateInit2(o.Level, Deflated, o.Format.windowBits(wbits), memLevel, o.Strategy)
	if st != OK {
		return errors.Wrapf(statusError(&zw.z, st), "zlib: level %d, window bits %d, mem level %d", o.Level, wbits, memLevel)
	}
	if o.Header != nil {
		if st := zw.z.DeflateSetHeader(o.Header); st != OK {
			return errors.Wrap(statusError(&zw.z, st), "zlib: header needs the gzip format")
		}
	}
	if o.Dict != nil {
		if st := zw.z.DeflateSetDictionary(o.Dict); st != OK {
			return errors.Wrap(statusError(&zw.z, st), "zlib: dictionary")
		}
	}
	return nil
}

// deflate runs the compressor with flush until it needs more input, or
// until the stream ends for Finish, writing all output to zw.w.
func (zw *Writer) deflate(flush Flush) error {
	out := *zw.out
	for {
		zw.z.Out, zw.z.NextOut, zw.z.AvailOut = out, 0, len(out)
		st := zw.z.Deflate(flush)
		if st != OK && st != StreamEnd && st != BufError {
			return statusError(&zw.z, st)
		}
		if n := zw.z.NextOut; n > 0 {
			if _, err := zw.w.Write(out[:n]); err != nil {
				return errors.Wrap(err, "zlib: write")
			}
		}
		if st == StreamEnd {
			return nil
		}
		if zw.z.AvailOut != 0 && flush != Finish {
			return nil
		}
	}
}

// Write compresses p.
func (zw *Writer) Write(p []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}
	if zw.closed {
		return 0, errClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	zw.z.In, zw.z.NextIn, zw.z.AvailIn = p, 0, len(p)
	err := zw.deflate(NoFlush)
	n := zw.z.NextIn
	zw.z.In, zw.z.NextIn, zw.z.AvailIn = nil, 0, 0
	if err != nil {
		zw.err = err
		return n, err
	}
	return n, nil
}

// Flush writes out all pending data, ending on a byte boundary so that a
// reader can decompress everything written so far.
func (zw *Writer) Flush() error {
	if zw.err != nil {
		return zw.err
	}
	if zw.closed {
		return errClosed
	}
	if err := zw.deflate(SyncFlush); err != nil {
		zw.err = err
	}
	return zw.err
}

// Close finishes the stream and releases the compression state. It does
// not close the underlying writer.
func (zw *Writer) Close() error {
	if zw.closed {
		return zw.err
	}
	zw.closed = true
	if zw.err == nil {
		zw.err = zw.deflate(Finish)
	}
	if zw.z.dstate != nil {
		zw.z.DeflateEnd()
	}
	if zw.out != nil {
		outPool.Put(zw.out)
		zw.out = nil
	}
	return zw.err
}
