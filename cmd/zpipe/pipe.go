// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/containerd/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/intel/fastzlib/compress/zlib"
)

// suffixes are the file name extensions of each container, the first one
// being written on compression.
var suffixes = map[zlib.Format][]string{
	zlib.FormatRaw:       {".deflate"},
	zlib.FormatZlib:      {".zz", ".zlib"},
	zlib.FormatGzip:      {".gz", ".tgz"},
	zlib.FormatDeflate64: {".deflate64"},
	zlib.FormatAuto:      {".gz", ".zz", ".zlib", ".tgz"},
}

type FileFlags struct {
	Stdout bool     `help:"Write to stdout, concatenating the outputs." short:"c"`
	Force  bool     `help:"Overwrite existing output files." short:"F"`
	Files  []string `arg:"" optional:"" type:"existingfile" help:"Input files; stdin when none."`
}

type compressCmd struct {
	CodecFlags `embed:""`
	FileFlags  `embed:""`
}

type decompressCmd struct {
	CodecFlags `embed:""`
	FileFlags  `embed:""`
}

// filter transforms one stream into another.
type filter func(dst io.Writer, src io.Reader) (int64, error)

func (c *compressCmd) Run(rc *runContext) error {
	s, err := c.settings(rc.logLevel)
	if err != nil {
		return err
	}
	opts, err := s.WriterOptions()
	if err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	// fail before touching any file
	if _, err := zlib.NewWriterOptions(io.Discard, opts); err != nil {
		return err
	}

	compress := func(dst io.Writer, src io.Reader) (int64, error) {
		w, err := zlib.NewWriterOptions(dst, opts)
		if err != nil {
			return 0, err
		}
		n, err := io.Copy(w, src)
		if err != nil {
			w.Close()
			return n, err
		}
		return n, w.Close()
	}
	outName := func(name string) (string, error) {
		return name + suffixes[opts.Format][0], nil
	}
	return c.FileFlags.run(rc, s.Jobs, "compressed", compress, outName)
}

func (c *decompressCmd) Run(rc *runContext) error {
	s, err := c.settings(rc.logLevel)
	if err != nil {
		return err
	}
	format, err := s.ReaderFormat()
	if err != nil {
		return err
	}

	decompress := func(dst io.Writer, src io.Reader) (int64, error) {
		r, err := zlib.NewReader(src, format)
		if err != nil {
			return 0, err
		}
		n, err := io.Copy(dst, r)
		if cerr := r.Close(); err == nil {
			err = cerr
		}
		return n, err
	}
	outName := func(name string) (string, error) {
		for _, suffix := range suffixes[format] {
			if base, ok := strings.CutSuffix(name, suffix); ok && base != "" {
				return base, nil
			}
		}
		return "", errors.Errorf("%s: unknown suffix for %v", name, format)
	}
	return c.FileFlags.run(rc, s.Jobs, "decompressed", decompress, outName)
}

// run applies fn to stdin, to each file with its output on stdout, or to
// each file with its output in the file named by outName.
func (f *FileFlags) run(rc *runContext, jobs int, verb string, fn filter, outName func(string) (string, error)) error {
	if len(f.Files) == 0 {
		n, err := fn(rc.stdout, rc.stdin)
		if err != nil {
			return errors.Wrap(err, "stdin")
		}
		log.G(rc.ctx).WithField("bytes", n).Debugf("%s stdin", verb)
		return nil
	}

	if f.Stdout {
		for _, name := range f.Files {
			if err := filterFile(rc.ctx, name, rc.stdout, fn, verb); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(rc.ctx)
	g.SetLimit(jobs)
	for _, name := range f.Files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := outName(name)
			if err != nil {
				return err
			}
			return f.toFile(ctx, name, out, fn, verb)
		})
	}
	return g.Wait()
}

// toFile writes the output for name to out, removing it on failure.
func (f *FileFlags) toFile(ctx context.Context, name, out string, fn filter, verb string) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if f.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	dst, err := os.OpenFile(out, flags, 0o644)
	if err != nil {
		return errors.Wrap(err, "error creating output file")
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = errors.Wrap(cerr, "error closing output file")
		}
		if err != nil {
			os.Remove(out)
		}
	}()
	return filterFile(log.WithLogger(ctx, log.G(ctx).WithField("output", out)), name, dst, fn, verb)
}

func filterFile(ctx context.Context, name string, dst io.Writer, fn filter, verb string) error {
	src, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "error opening input file")
	}
	defer src.Close()

	n, err := fn(dst, src)
	if err != nil {
		return errors.Wrap(err, name)
	}
	entry := log.G(ctx).WithField("file", name).WithField("bytes", n)
	if info, err := src.Stat(); err == nil && info.Size() > 0 {
		entry = entry.WithField("size", info.Size())
	}
	entry.Infof("%s", verb)
	return nil
}
