// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Format selects the container around the DEFLATE data.
type Format int

const (
	FormatRaw       Format = iota // bare DEFLATE
	FormatZlib                    // RFC 1950
	FormatGzip                    // RFC 1952
	FormatDeflate64               // bare deflate64, decompression only
	FormatAuto                    // zlib or gzip, detected on decompression
)

var formatNames = [...]string{"raw", "zlib", "gzip", "deflate64", "auto"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, errors.Errorf("zlib: unknown format %q", name)
}

// windowBits returns the windowBits argument selecting format f with a
// 2^bits window.
func (f Format) windowBits(bits int) int {
	switch f {
	case FormatRaw:
		return -bits
	case FormatGzip:
		return bits + 16
	case FormatAuto:
		return bits + 32
	}
	return bits
}

const (
	inChunk  = 32 << 10
	outChunk = 64 << 10
)

var (
	inPool = sync.Pool{New: func() any {
		b := make([]byte, inChunk)
		return &b
	}}
	outPool = sync.Pool{New: func() any {
		b := make([]byte, outChunk)
		return &b
	}}
)

// Error is a failing status together with the stream message. It unwraps
// to the sentinel of the status.
type Error struct {
	Status Status
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Status.Err().Error()
	}
	return "zlib: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Status.Err()
}

// statusError converts a failing status to an error carrying the stream
// message. It returns nil for OK and StreamEnd.
func statusError(z *Stream, st Status) error {
	if st.Err() == nil {
		return nil
	}
	msg := z.Msg
	if msg == statusText[2-int(st)] {
		msg = ""
	}
	return errors.WithStack(&Error{Status: st, Msg: msg})
}
