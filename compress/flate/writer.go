// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"io"

	"github.com/intel/fastzlib/compress/zlib"
)

const (
	NoCompression      = zlib.NoCompression
	BestSpeed          = zlib.BestSpeed
	BestCompression    = zlib.BestCompression
	DefaultCompression = zlib.DefaultCompression
	HuffmanOnly        = -2
)

// Writer compresses to a raw DEFLATE stream.
type Writer = zlib.Writer

// NewWriter returns a Writer compressing at the given level. HuffmanOnly
// encodes literals only.
func NewWriter(under io.Writer, level int) (*Writer, error) {
	return NewWriterDict(under, level, nil)
}

// NewWriterWith4KWindow is like NewWriter with a 4K history window, which
// keeps the compressor state small.
func NewWriterWith4KWindow(under io.Writer, level int) (*Writer, error) {
	return newWriter(under, level, 12, nil)
}

// NewWriterDict is like NewWriter with the history preset to dict. The
// stream can be read with NewReaderDict and the same dictionary.
func NewWriterDict(under io.Writer, level int, dict []byte) (*Writer, error) {
	return newWriter(under, level, zlib.MaxWBits, dict)
}

func newWriter(under io.Writer, level, windowBits int, dict []byte) (*Writer, error) {
	opts := zlib.WriterOptions{
		Format:     zlib.FormatRaw,
		Level:      level,
		WindowBits: windowBits,
		Dict:       dict,
	}
	if level == HuffmanOnly {
		opts.Level = BestSpeed
		opts.Strategy = zlib.HuffmanOnly
	}
	return zlib.NewWriterOptions(under, opts)
}
