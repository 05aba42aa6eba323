// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"io"

	"github.com/pkg/errors"
)

// Space for the gzip header fields captured by Reader. Longer fields are
// truncated.
const (
	headerNameMax  = 1024
	headerExtraMax = 4096
)

// ErrDictionary is returned by Reader when the stream needs a preset
// dictionary and none was given.
var ErrDictionary = errors.New("zlib: dictionary required")

// peeker is implemented by *bufio.Reader. Input read through it is
// consumed only up to the end of the stream, so the bytes after it stay
// available to the caller.
type peeker interface {
	io.Reader
	Buffered() int
	Peek(n int) ([]byte, error)
	Discard(n int) (int, error)
}

// Reader decompresses a stream read from an underlying io.Reader.
type Reader struct {
	r      io.Reader
	pr     peeker
	z      Stream
	format Format
	dict   []byte
	in     *[]byte
	eof    bool // r is exhausted
	err    error

	multistream bool
	members     int

	head    GzipHeader
	name    []byte
	comment []byte
	extra   []byte
}

// NewReader returns a Reader decompressing data of the given format from r.
func NewReader(r io.Reader, format Format) (*Reader, error) {
	return NewReaderDict(r, format, nil)
}

// NewReaderDict is like NewReader with a preset dictionary. For raw
// streams the dictionary primes the window; for zlib streams it is used
// when the header asks for it.
func NewReaderDict(r io.Reader, format Format, dict []byte) (*Reader, error) {
	zr := &Reader{}
	if err := zr.Reset(r, format, dict); err != nil {
		return nil, err
	}
	return zr, nil
}

// Reset discards the state of zr and makes it read a new stream from r.
func (zr *Reader) Reset(r io.Reader, format Format, dict []byte) error {
	if zr.z.istate != nil {
		zr.z.InflateEnd()
	}
	zr.z = Stream{}
	zr.r = r
	zr.pr, _ = r.(peeker)
	zr.members = 0
	zr.format = format
	zr.dict = dict
	zr.eof = false
	zr.err = nil
	zr.multistream = format == FormatGzip
	if zr.in == nil {
		zr.in = inPool.Get().(*[]byte)
	}

	var st Status
	switch format {
	case FormatRaw, FormatZlib, FormatGzip, FormatAuto:
		st = zr.z.InflateInit2(format.windowBits(MaxWBits))
	case FormatDeflate64:
		st = zr.z.InflateInit64()
	default:
		return errors.Errorf("zlib: unknown format %d", format)
	}
	if st != OK {
		return statusError(&zr.z, st)
	}
	return zr.start()
}

// start prepares the stream for a new member.
func (zr *Reader) start() error {
	zr.members++
	if zr.format == FormatGzip || zr.format == FormatAuto {
		if zr.name == nil {
			zr.name = make([]byte, headerNameMax)
			zr.comment = make([]byte, headerNameMax)
			zr.extra = make([]byte, headerExtraMax)
		}
		zr.head = GzipHeader{
			Name: zr.name, NameMax: len(zr.name),
			Comment: zr.comment, CommMax: len(zr.comment),
			Extra: zr.extra, ExtraMax: len(zr.extra),
		}
		if st := zr.z.InflateGetHeader(&zr.head); st != OK {
			return statusError(&zr.z, st)
		}
	}
	if zr.dict != nil && (zr.format == FormatRaw || zr.format == FormatDeflate64) {
		if st := zr.z.InflateSetDictionary(zr.dict); st != OK {
			return statusError(&zr.z, st)
		}
	}
	return nil
}

// Multistream controls whether concatenated gzip members are read as one
// stream. It is enabled by default for FormatGzip.
func (zr *Reader) Multistream(ok bool) {
	zr.multistream = ok
}

// Header returns the gzip header of the current member once it has been
// read, and nil otherwise.
func (zr *Reader) Header() *GzipHeader {
	if zr.head.Done != 1 {
		return nil
	}
	return &zr.head
}

// Members returns the number of streams started so far, counting the
// current one.
func (zr *Reader) Members() int {
	return zr.members
}

// InputOffset returns the number of bytes of the current stream consumed.
func (zr *Reader) InputOffset() int64 {
	return zr.z.TotalIn
}

// ReadHeader reads input until the gzip header of the current member is
// complete, without producing output. It returns io.EOF if the input ends
// before the first byte of the member.
func (zr *Reader) ReadHeader() (*GzipHeader, error) {
	if zr.err != nil {
		return nil, zr.err
	}
	if zr.format != FormatGzip && zr.format != FormatAuto {
		return nil, errors.Errorf("zlib: no header in %v stream", zr.format)
	}
	for zr.head.Done == 0 {
		more, err := zr.fill()
		if err != nil {
			zr.err = err
			return nil, err
		}
		if !more {
			zr.err = io.ErrUnexpectedEOF
			if zr.z.TotalIn == 0 {
				zr.err = io.EOF
			}
			return nil, zr.err
		}
		zr.z.Out, zr.z.NextOut, zr.z.AvailOut = nil, 0, 0
		next := zr.z.NextIn
		st := zr.z.Inflate(Block)
		if err := zr.consume(next); err != nil {
			zr.err = err
			return nil, err
		}
		if st != OK && st != BufError {
			zr.err = statusError(&zr.z, st)
			return nil, zr.err
		}
	}
	return zr.Header(), nil
}

// fill reads more input. It reports false if there was none.
func (zr *Reader) fill() (bool, error) {
	if zr.z.AvailIn != 0 {
		return true, nil
	}
	if zr.eof {
		return false, nil
	}
	if zr.pr != nil {
		return zr.peek()
	}
	buf := *zr.in
	n, err := zr.r.Read(buf)
	zr.z.In, zr.z.NextIn, zr.z.AvailIn = buf, 0, n
	if err == io.EOF {
		zr.eof = true
	} else if err != nil {
		return n > 0, errors.Wrap(err, "zlib: read")
	}
	return n > 0, nil
}

// peek exposes the buffered bytes of zr.pr as input without consuming
// them. consume discards what Inflate used.
func (zr *Reader) peek() (bool, error) {
	if zr.pr.Buffered() == 0 {
		if _, err := zr.pr.Peek(1); err == io.EOF {
			zr.eof = true
			return false, nil
		} else if err != nil {
			return false, errors.Wrap(err, "zlib: read")
		}
	}
	buf, err := zr.pr.Peek(zr.pr.Buffered())
	if err != nil {
		return false, errors.Wrap(err, "zlib: read")
	}
	zr.z.In, zr.z.NextIn, zr.z.AvailIn = buf, 0, len(buf)
	return len(buf) > 0, nil
}

func (zr *Reader) consume(from int) error {
	if zr.pr == nil || zr.z.NextIn <= from {
		return nil
	}
	if _, err := zr.pr.Discard(zr.z.NextIn - from); err != nil {
		return errors.Wrap(err, "zlib: discard")
	}
	return nil
}

// Read decompresses into p.
func (zr *Reader) Read(p []byte) (int, error) {
	if zr.err != nil {
		return 0, zr.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	zr.z.Out, zr.z.NextOut, zr.z.AvailOut = p, 0, len(p)
	defer func() { zr.z.Out = nil }()

	for zr.z.NextOut == 0 {
		if _, err := zr.fill(); err != nil {
			zr.err = err
			return 0, err
		}
		next := zr.z.NextIn
		st := zr.z.Inflate(NoFlush)
		if err := zr.consume(next); err != nil {
			zr.err = err
			return zr.z.NextOut, err
		}
		switch st {
		case OK:
		case StreamEnd:
			if zr.multistream {
				more, err := zr.fill()
				if err != nil {
					zr.err = err
					return zr.z.NextOut, err
				}
				if more {
					zr.z.InflateReset()
					if err := zr.start(); err != nil {
						zr.err = err
						return zr.z.NextOut, err
					}
					continue
				}
			}
			zr.err = io.EOF
			return zr.z.NextOut, io.EOF
		case NeedDict:
			if zr.dict == nil {
				zr.err = ErrDictionary
				return 0, zr.err
			}
			if st := zr.z.InflateSetDictionary(zr.dict); st != OK {
				zr.err = statusError(&zr.z, st)
				return 0, zr.err
			}
		case BufError:
			// no progress: the input is exhausted before the end
			if zr.eof && zr.z.AvailIn == 0 {
				zr.err = io.ErrUnexpectedEOF
				return zr.z.NextOut, zr.err
			}
		default:
			zr.err = statusError(&zr.z, st)
			return zr.z.NextOut, zr.err
		}
	}
	return zr.z.NextOut, nil
}

// Close releases the decompression state. It does not close the
// underlying reader.
func (zr *Reader) Close() error {
	if zr.in != nil {
		inPool.Put(zr.in)
		zr.in = nil
	}
	zr.z.In = nil
	if zr.z.istate != nil {
		zr.z.InflateEnd()
	}
	if zr.err == io.EOF {
		return nil
	}
	return zr.err
}
