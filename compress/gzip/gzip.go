// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package gzip reads and writes gzip files (RFC 1952) with the fastzlib
// codec. The API follows the standard library compress/gzip package.
package gzip

import (
	"time"

	"github.com/pkg/errors"

	"github.com/intel/fastzlib/compress/zlib"
)

const (
	NoCompression      = zlib.NoCompression
	BestSpeed          = zlib.BestSpeed
	BestCompression    = zlib.BestCompression
	DefaultCompression = zlib.DefaultCompression
	HuffmanOnly        = -2
)

var (
	// ErrChecksum is returned when the CRC-32 or the length in the trailer
	// does not match the data.
	ErrChecksum = errors.New("gzip: invalid checksum")
	// ErrHeader is returned when the member header is malformed.
	ErrHeader = errors.New("gzip: invalid header")
)

// Header holds the metadata of a gzip member. Strings are UTF-8 and are
// stored as Latin-1 in the file.
type Header struct {
	Comment string
	Extra   []byte
	ModTime time.Time
	Name    string
	OS      byte
}

// unknownOS is the OS byte written when none is set.
const unknownOS = 255

func latin1Decode(b []byte) string {
	s := make([]rune, len(b))
	for i, c := range b {
		s[i] = rune(c)
	}
	return string(s)
}

func latin1Encode(s string) ([]byte, error) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r == 0 || r > 0xff {
			return nil, errors.Errorf("gzip: cannot store %q in a header string", r)
		}
		b = append(b, byte(r))
	}
	return b, nil
}

// fromZlib copies a parsed member header.
func fromZlib(h *zlib.GzipHeader) Header {
	hdr := Header{OS: byte(h.OS)}
	if h.Name != nil {
		hdr.Name = latin1Decode(cstring(h.Name))
	}
	if h.Comment != nil {
		hdr.Comment = latin1Decode(cstring(h.Comment))
	}
	if h.Extra != nil {
		hdr.Extra = append([]byte{}, h.Extra[:min(h.ExtraLen, h.ExtraMax)]...)
	}
	if h.Time > 0 {
		hdr.ModTime = time.Unix(int64(h.Time), 0)
	}
	return hdr
}

// toZlib converts hdr to the header written by the compressor.
func (hdr *Header) toZlib() (*zlib.GzipHeader, error) {
	h := &zlib.GzipHeader{OS: int(hdr.OS)}
	var err error
	if hdr.Name != "" {
		if h.Name, err = latin1Encode(hdr.Name); err != nil {
			return nil, err
		}
	}
	if hdr.Comment != "" {
		if h.Comment, err = latin1Encode(hdr.Comment); err != nil {
			return nil, err
		}
	}
	if hdr.Extra != nil {
		if len(hdr.Extra) > 0xffff {
			return nil, errors.New("gzip: extra data is too large")
		}
		h.Extra, h.ExtraLen = hdr.Extra, len(hdr.Extra)
	}
	if hdr.ModTime.After(time.Unix(0, 0)) {
		h.Time = uint32(hdr.ModTime.Unix())
	}
	return h, nil
}

func cstring(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
