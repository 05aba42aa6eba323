// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash/v2"
	"github.com/containerd/log"
	"github.com/golang/snappy"
	kflate "github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/intel/fastzlib/compress/flate"
	"github.com/intel/fastzlib/compress/zlib"
)

type ratioCmd struct {
	Levels []int  `help:"fastzlib levels to measure." default:"1,6,9"`
	Jobs   int    `help:"Codecs measured concurrently." short:"j" default:"${jobs}"`
	File   string `arg:"" optional:"" type:"existingfile" help:"Sample file; stdin when omitted."`
}

// codec compresses and decompresses whole buffers.
type codec struct {
	name       string
	compress   func([]byte) ([]byte, error)
	decompress func([]byte) ([]byte, error)
}

type ratioResult struct {
	name     string
	size     int
	duration time.Duration
}

func fastzlibCodec(level int) codec {
	return codec{
		name: fmt.Sprintf("fastzlib-%d", level),
		compress: func(data []byte) ([]byte, error) {
			var buf bytes.Buffer
			w, err := flate.NewWriter(&buf, level)
			if err != nil {
				return nil, err
			}
			return closeWriter(&buf, w, data)
		},
		decompress: func(comp []byte) ([]byte, error) {
			return readAll(flate.NewReader(bytes.NewReader(comp)))
		},
	}
}

func otherCodecs() []codec {
	return []codec{
		{
			name: "klauspost-flate",
			compress: func(data []byte) ([]byte, error) {
				var buf bytes.Buffer
				w, err := kflate.NewWriter(&buf, zlib.DefaultCompression)
				if err != nil {
					return nil, err
				}
				return closeWriter(&buf, w, data)
			},
			decompress: func(comp []byte) ([]byte, error) {
				return readAll(kflate.NewReader(bytes.NewReader(comp)))
			},
		},
		{
			name: "zstd",
			compress: func(data []byte) ([]byte, error) {
				enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
				if err != nil {
					return nil, err
				}
				defer enc.Close()
				return enc.EncodeAll(data, nil), nil
			},
			decompress: func(comp []byte) ([]byte, error) {
				dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
				if err != nil {
					return nil, err
				}
				defer dec.Close()
				return dec.DecodeAll(comp, nil)
			},
		},
		{
			name: "snappy",
			compress: func(data []byte) ([]byte, error) {
				return snappy.Encode(nil, data), nil
			},
			decompress: func(comp []byte) ([]byte, error) {
				return snappy.Decode(nil, comp)
			},
		},
		{
			name: "lz4",
			compress: func(data []byte) ([]byte, error) {
				var buf bytes.Buffer
				return closeWriter(&buf, lz4.NewWriter(&buf), data)
			},
			decompress: func(comp []byte) ([]byte, error) {
				return io.ReadAll(lz4.NewReader(bytes.NewReader(comp)))
			},
		},
		{
			name: "brotli",
			compress: func(data []byte) ([]byte, error) {
				var buf bytes.Buffer
				return closeWriter(&buf, brotli.NewWriterLevel(&buf, brotli.DefaultCompression), data)
			},
			decompress: func(comp []byte) ([]byte, error) {
				return io.ReadAll(brotli.NewReader(bytes.NewReader(comp)))
			},
		},
	}
}

func closeWriter(buf *bytes.Buffer, w io.WriteCloser, data []byte) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readAll(r io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return data, err
}

// measure compresses data with c and checks the round trip against the
// digest of the input.
func measure(c codec, data []byte, digest uint64) (ratioResult, error) {
	start := time.Now()
	comp, err := c.compress(data)
	if err != nil {
		return ratioResult{}, errors.Wrapf(err, "%s: compress", c.name)
	}
	elapsed := time.Since(start)

	got, err := c.decompress(comp)
	if err != nil {
		return ratioResult{}, errors.Wrapf(err, "%s: decompress", c.name)
	}
	if xxhash.Sum64(got) != digest {
		return ratioResult{}, errors.Errorf("%s: round trip mismatch", c.name)
	}
	return ratioResult{name: c.name, size: len(comp), duration: elapsed}, nil
}

func (c *ratioCmd) Run(rc *runContext) error {
	if c.Jobs < 1 {
		return errors.New("jobs must be positive")
	}
	var (
		data []byte
		err  error
	)
	if c.File == "" {
		data, err = io.ReadAll(rc.stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return errors.Wrap(err, "error reading sample")
	}
	digest := xxhash.Sum64(data)
	log.G(rc.ctx).WithField("bytes", len(data)).WithField("xxhash", fmt.Sprintf("%016x", digest)).Debug("sample loaded")

	var codecs []codec
	for _, level := range c.Levels {
		codecs = append(codecs, fastzlibCodec(level))
	}
	codecs = append(codecs, otherCodecs()...)

	results := make([]ratioResult, len(codecs))
	g, ctx := errgroup.WithContext(rc.ctx)
	g.SetLimit(c.Jobs)
	for i, cd := range codecs {
		i, cd := i, cd
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := measure(cd, data, digest)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(rc.stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "codec\tsize\tratio\tMB/s\t\n")
	for _, res := range results {
		ratio, speed := 0.0, 0.0
		if res.size > 0 {
			ratio = float64(len(data)) / float64(res.size)
		}
		if s := res.duration.Seconds(); s > 0 {
			speed = float64(len(data)) / s / 1e6
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.1f\t\n", res.name, res.size, ratio, speed)
	}
	return tw.Flush()
}
