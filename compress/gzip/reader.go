// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package gzip

import (
	"io"

	"github.com/pkg/errors"

	"github.com/intel/fastzlib/compress/zlib"
)

// Reader decompresses a gzip file. Concatenated members are read as one
// stream unless Multistream(false) is called; Header always describes the
// member being read.
//
// When the underlying reader is a *bufio.Reader, only the bytes of the
// members read are consumed from it.
type Reader struct {
	Header
	zr      *zlib.Reader
	members int
}

// NewReader reads the header of the first member from r and returns a
// Reader for the data.
func NewReader(r io.Reader) (*Reader, error) {
	z := new(Reader)
	if err := z.Reset(r); err != nil {
		return nil, err
	}
	return z, nil
}

// Reset discards the state of z and reads the header of the next member
// from r. It returns io.EOF when r holds no more data.
func (z *Reader) Reset(r io.Reader) error {
	z.Header = Header{}
	if z.zr == nil {
		zr, err := zlib.NewReader(r, zlib.FormatGzip)
		if err != nil {
			return err
		}
		z.zr = zr
	} else if err := z.zr.Reset(r, zlib.FormatGzip, nil); err != nil {
		return err
	}
	h, err := z.zr.ReadHeader()
	if err != nil {
		return convert(err)
	}
	z.Header = fromZlib(h)
	z.members = z.zr.Members()
	return nil
}

// Multistream controls whether the members following the current one are
// read. With ok false, Read returns io.EOF at the end of the member and
// Reset continues with the next one.
func (z *Reader) Multistream(ok bool) {
	if z.zr != nil {
		z.zr.Multistream(ok)
	}
}

func (z *Reader) Read(p []byte) (int, error) {
	if z.zr == nil {
		return 0, ErrHeader
	}
	n, err := z.zr.Read(p)
	if m := z.zr.Members(); m != z.members {
		if h := z.zr.Header(); h != nil {
			z.members = m
			z.Header = fromZlib(h)
		}
	}
	return n, convert(err)
}

// Close releases the decompression state. It does not close the
// underlying reader.
func (z *Reader) Close() error {
	if z.zr == nil {
		return nil
	}
	return convert(z.zr.Close())
}

// convert maps data errors to ErrChecksum and ErrHeader.
func convert(err error) error {
	var zerr *zlib.Error
	if !errors.As(err, &zerr) || zerr.Status != zlib.DataError {
		return err
	}
	switch zerr.Msg {
	case "incorrect data check", "incorrect length check":
		return errors.WithMessage(ErrChecksum, zerr.Msg)
	case "incorrect header check", "unknown compression method",
		"unknown header flags set", "header crc mismatch":
		return errors.WithMessage(ErrHeader, zerr.Msg)
	}
	return err
}
