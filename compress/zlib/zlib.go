// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package zlib implements a resumable DEFLATE codec with the zlib (RFC 1950)
// and gzip (RFC 1952) containers and the deflate64 decoding variant.
//
// The low-level API mirrors the classic zlib stream interface: a Stream holds
// caller-provided input and output buffers with cursors, and Deflate or
// Inflate consume and produce as much as the buffers allow before returning a
// Status. Nothing blocks and nothing is buffered beyond the codec window, so
// a stream can be driven one byte at a time. Reader and Writer wrap the
// low-level API as io.Reader and io.WriteCloser.
package zlib

import (
	"strconv"

	"github.com/pkg/errors"
)

// Status is the result of a stream operation.
type Status int

const (
	OK           Status = 0
	StreamEnd    Status = 1
	NeedDict     Status = 2
	Errno        Status = -1
	StreamError  Status = -2
	DataError    Status = -3
	MemError     Status = -4
	BufError     Status = -5
	VersionError Status = -6
)

var statusText = [...]string{
	"need dictionary",      // NeedDict
	"stream end",           // StreamEnd
	"",                     // OK
	"file error",           // Errno
	"stream error",         // StreamError
	"data error",           // DataError
	"insufficient memory",  // MemError
	"buffer error",         // BufError
	"incompatible version", // VersionError
}

func (s Status) String() string {
	if i := 2 - int(s); i >= 0 && i < len(statusText) {
		if s == OK {
			return "ok"
		}
		return statusText[i]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// Sentinel errors for the failing statuses.
var (
	ErrErrno   = errors.New("zlib: file error")
	ErrStream  = errors.New("zlib: stream error")
	ErrData    = errors.New("zlib: data error")
	ErrMem     = errors.New("zlib: insufficient memory")
	ErrBuf     = errors.New("zlib: buffer error")
	ErrVersion = errors.New("zlib: incompatible version")
)

// Err returns the sentinel error for a failing status and nil otherwise.
func (s Status) Err() error {
	switch s {
	case Errno:
		return ErrErrno
	case StreamError:
		return ErrStream
	case DataError:
		return ErrData
	case MemError:
		return ErrMem
	case BufError:
		return ErrBuf
	case VersionError:
		return ErrVersion
	}
	return nil
}

// Flush controls how eagerly Deflate emits data and where Inflate stops.
type Flush int

const (
	NoFlush      Flush = 0
	PartialFlush Flush = 1
	SyncFlush    Flush = 2
	FullFlush    Flush = 3
	Finish       Flush = 4
	Block        Flush = 5
	Trees        Flush = 6
)

// Strategy tunes the match finder for the kind of input.
type Strategy int

const (
	DefaultStrategy Strategy = 0
	Filtered        Strategy = 1
	HuffmanOnly     Strategy = 2
	RLE             Strategy = 3
	Fixed           Strategy = 4
)

// Compression levels.
const (
	NoCompression      = 0
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = -1
)

// Data types reported in Stream.DataType by Deflate.
const (
	Binary  = 0
	Text    = 1
	Unknown = 2
)

const (
	// Deflated is the only compression method.
	Deflated = 8

	// MaxWBits is the largest window size exponent for standard deflate.
	MaxWBits = 15
	// Deflate64WBits is the window size exponent of deflate64.
	Deflate64WBits = 16

	DefMemLevel = 8
	MaxMemLevel = 9
)

// Stream is the caller-visible handle of a compression or decompression
// stream. The caller sets In/NextIn/AvailIn and Out/NextOut/AvailOut before
// each call; the codec advances the cursors and totals.
//
// A Stream is initialized for exactly one direction and must not be used
// from more than one goroutine at a time.
type Stream struct {
	In      []byte // input buffer
	NextIn  int    // next input byte
	AvailIn int    // number of bytes available at NextIn
	TotalIn int64  // total number of input bytes read so far

	Out      []byte // output buffer
	NextOut  int    // next output byte goes here
	AvailOut int    // remaining free space at NextOut
	TotalOut int64  // total number of bytes output so far

	Msg      string // last error message, empty if none
	DataType int    // best guess about the data type, or inflate position flags
	Adler    uint32 // Adler-32 or CRC-32 value of the uncompressed data

	dstate *deflateState
	istate *inflateState
}

// NewStream returns an uninitialized stream.
func NewStream() *Stream {
	return &Stream{}
}

// SetInput points the stream at p as its whole input.
func (z *Stream) SetInput(p []byte) {
	z.In, z.NextIn, z.AvailIn = p, 0, len(p)
}

// SetOutput points the stream at p as its whole output space.
func (z *Stream) SetOutput(p []byte) {
	z.Out, z.NextOut, z.AvailOut = p, 0, len(p)
}

// Input returns the unread part of the input.
func (z *Stream) Input() []byte {
	return z.In[z.NextIn : z.NextIn+z.AvailIn]
}

// Output returns the bytes written to Out so far.
func (z *Stream) Output() []byte {
	return z.Out[:z.NextOut]
}

// buffersValid reports whether the cursors lie within their buffers.
func (z *Stream) buffersValid() bool {
	return z.NextIn >= 0 && z.AvailIn >= 0 && z.NextIn+z.AvailIn <= len(z.In) &&
		z.NextOut >= 0 && z.AvailOut >= 0 && z.NextOut+z.AvailOut <= len(z.Out)
}

func (z *Stream) errReturn(s Status) Status {
	z.Msg = statusText[2-int(s)]
	return s
}
