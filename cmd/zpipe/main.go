// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Command zpipe compresses and decompresses raw DEFLATE, zlib and gzip
// streams with fastzlib, and compares its compression ratios with other
// codecs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/containerd/log"
	"github.com/pkg/errors"

	"github.com/intel/fastzlib/internal/config"
)

// VERSION gets set during build
var VERSION = "0.0.0"

type CLI struct {
	Config   string           `help:"TOML or YAML config file." type:"path" placeholder:"FILE"`
	LogLevel string           `help:"Log level (${enum})." default:"${log_level}" enum:"trace,debug,info,warn,warning,error,fatal,panic"`
	Version  kong.VersionFlag `help:"Show version and exit." short:"v" env:"-"`

	Compress   compressCmd   `cmd:"" help:"Compress files, or stdin to stdout."`
	Decompress decompressCmd `cmd:"" help:"Decompress files, or stdin to stdout."`
	Ratio      ratioCmd      `cmd:"" help:"Compare compression ratios with other codecs."`
}

// CodecFlags are the codec settings of a subcommand. Their defaults come
// from the config file.
type CodecFlags struct {
	Format     string `help:"Container format (${enum})." short:"f" default:"${format}" enum:"raw,zlib,gzip,deflate64,auto"`
	Level      int    `help:"Compression level, -1 for the default." short:"l" default:"${level}"`
	Strategy   string `help:"Compression strategy (${enum})." default:"${strategy}" enum:"default,filtered,huffman,rle,fixed"`
	WindowBits int    `help:"Base-two logarithm of the window size." default:"${window_bits}"`
	MemLevel   int    `help:"Memory used for the match finder, 1 to 9." default:"${mem_level}"`
	Jobs       int    `help:"Files processed concurrently." short:"j" default:"${jobs}"`
}

func (f CodecFlags) settings(logLevel string) (config.Settings, error) {
	s := config.Settings{
		Format:     f.Format,
		Level:      f.Level,
		Strategy:   f.Strategy,
		WindowBits: f.WindowBits,
		MemLevel:   f.MemLevel,
		Jobs:       f.Jobs,
		LogLevel:   logLevel,
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

// runContext is bound to the Run methods of the subcommands.
type runContext struct {
	ctx      context.Context
	logLevel string
	stdin    io.Reader
	stdout   io.Writer
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "zpipe:", err)
		os.Exit(1)
	}
}

// configPath finds the --config flag ahead of parsing, since the file
// provides the flag defaults.
func configPath(args []string) string {
	path := os.Getenv(config.EnvVarPrefix + "_CONFIG")
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			path = v
		} else if arg == "--config" && i+1 < len(args) {
			path = args[i+1]
		}
	}
	return path
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, options ...kong.Option) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}

	settings := config.Default()
	if path := configPath(args); path != "" {
		var err error
		if settings, err = config.Load(path); err != nil {
			return err
		}
	}

	vars := settings.Vars()
	vars["version"] = VERSION
	cli := &CLI{}
	parser, err := kong.New(cli, append([]kong.Option{
		kong.Name("zpipe"),
		kong.Description("Compress and decompress DEFLATE, zlib and gzip streams."),
		kong.UsageOnError(),
		kong.DefaultEnvars(config.EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	}, options...)...)
	if err != nil {
		return errors.Wrap(err, "error building CLI")
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return errors.Wrap(err, "error parsing CLI args")
	}

	if err := log.SetLevel(cli.LogLevel); err != nil {
		return errors.Wrap(err, "error setting log level")
	}
	if err := log.SetFormat(log.TextFormat); err != nil {
		return errors.Wrap(err, "error setting log format")
	}

	return kctx.Run(&runContext{
		ctx:      ctx,
		logLevel: cli.LogLevel,
		stdin:    stdin,
		stdout:   stdout,
	})
}
