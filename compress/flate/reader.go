// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"compress/flate"
	"io"

	"github.com/pkg/errors"

	"github.com/intel/fastzlib/compress/zlib"
)

type (
	Reader            = flate.Reader
	Resetter          = flate.Resetter
	CorruptInputError = flate.CorruptInputError
)

// NewReader returns a ReadCloser decompressing the raw DEFLATE stream read
// from r. When r is a *bufio.Reader, only the bytes of the stream are
// consumed from it.
func NewReader(r io.Reader) io.ReadCloser {
	return newDecompressor(r, zlib.FormatRaw, nil)
}

// NewReader64 is like NewReader for deflate64 streams, which use a 64K
// window and longer matches.
func NewReader64(r io.Reader) io.ReadCloser {
	return newDecompressor(r, zlib.FormatDeflate64, nil)
}

// NewReaderDict is like NewReader with the window preset to dict.
func NewReaderDict(r io.Reader, dict []byte) io.ReadCloser {
	return newDecompressor(r, zlib.FormatRaw, dict)
}

type decompressor struct {
	zr     *zlib.Reader
	format zlib.Format
	err    error
}

func newDecompressor(r io.Reader, format zlib.Format, dict []byte) *decompressor {
	f := &decompressor{format: format}
	f.err = f.Reset(r, dict)
	return f
}

func (f *decompressor) Reset(under io.Reader, dict []byte) error {
	f.err = nil
	if f.zr == nil {
		zr, err := zlib.NewReaderDict(under, f.format, dict)
		if err != nil {
			return err
		}
		f.zr = zr
		return nil
	}
	return f.zr.Reset(under, f.format, dict)
}

func (f *decompressor) Close() error {
	if f.zr == nil {
		return f.err
	}
	return f.corrupt(f.zr.Close())
}

func (f *decompressor) Read(b []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.zr.Read(b)
	return n, f.corrupt(err)
}

// corrupt reports malformed input as a CorruptInputError at the offset the
// decoder reached.
func (f *decompressor) corrupt(err error) error {
	var zerr *zlib.Error
	if errors.As(err, &zerr) && zerr.Status == zlib.DataError {
		return errors.WithMessage(CorruptInputError(f.zr.InputOffset()), zerr.Msg)
	}
	return err
}
