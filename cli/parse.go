package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opal-lang/cherri/runtime/parser"
)

// parseOptions are the flags of cherri parse
type parseOptions struct {
	format   string
	recover  bool
	maxDepth int
	validate bool
	watch    bool
	digest   bool
}

func newParseCmd(global *globalOptions) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a file and print its syntax tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(cmd, global.config)
			if !isFormat(opts.format) {
				return &CLIError{
					Message: fmt.Sprintf("unknown format %q", opts.format),
					Hint:    fmt.Sprintf("Use one of %v", formats),
				}
			}

			logger := newLogger(cmd.ErrOrStderr(), global.debug)
			useColor := global.useColor(cmd.ErrOrStderr())

			if opts.watch {
				if len(args) == 0 || args[0] == "-" {
					return &CLIError{
						Message: "--watch needs a file",
						Hint:    "Pass the path of the file to watch: cherri parse --watch main.cherri",
					}
				}
				return watchAndParse(cmd.Context(), cmd, args[0], opts, logger, useColor)
			}

			source, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runParse(cmd.OutOrStdout(), source, name, opts, logger, global.debug)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", FormatSexp, "Output format: sexp, dump, json or cbor")
	cmd.Flags().BoolVar(&opts.recover, "recover", false, "Keep parsing after syntax errors and print the partial tree")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum nesting depth")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Validate JSON output against the tree schema")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Parse again whenever the file changes")
	cmd.Flags().BoolVar(&opts.digest, "digest", false, "Print the structural digest of the tree instead of the tree")
	return cmd
}

// applyConfig fills options the user did not set on the command line.
func (o *parseOptions) applyConfig(cmd *cobra.Command, config *Config) {
	if config == nil {
		return
	}
	flags := cmd.Flags()
	if config.Format != "" && !flags.Changed("format") {
		o.format = config.Format
	}
	if config.MaxDepth > 0 && !flags.Changed("max-depth") {
		o.maxDepth = config.MaxDepth
	}
	if config.Recover && !flags.Changed("recover") {
		o.recover = true
	}
}

// runParse parses source and prints the tree. With recovery the partial tree
// is printed before the errors are returned.
func runParse(w io.Writer, source []byte, name string, opts *parseOptions, logger *slog.Logger, debug bool) error {
	parserOpts := []parser.ParserOpt{
		parser.WithFilename(name),
		parser.WithMaxDepth(opts.maxDepth),
		parser.WithLogger(logger),
	}
	if opts.recover {
		parserOpts = append(parserOpts, parser.WithRecovery())
	}
	if debug {
		parserOpts = append(parserOpts, parser.WithTelemetryTiming(), parser.WithDebugDetailed())
	}

	tree, err := parser.Parse(source, parserOpts...)
	if tree == nil {
		return err
	}
	if tree.Telemetry != nil {
		logger.Debug("parsed",
			"file", name,
			"tokens", tree.Telemetry.TokenCount,
			"nodes", tree.Telemetry.NodeCount,
			"errors", tree.Telemetry.ErrorCount,
			"max_depth", tree.Telemetry.MaxDepth,
			"duration", tree.Telemetry.TotalTime)
	}

	if opts.digest {
		if derr := DisplayDigest(w, tree.Root); derr != nil {
			return derr
		}
		return err
	}
	if derr := DisplayTree(w, tree.Root, opts.format, opts.validate); derr != nil {
		return derr
	}
	return err
}

// watchAndParse parses path now and again on every change until ctx ends.
// Parse errors are reported without stopping the watch.
func watchAndParse(ctx context.Context, cmd *cobra.Command, path string, opts *parseOptions, logger *slog.Logger, useColor bool) error {
	parseOnce := func() {
		source, name, err := readInput(cmd, []string{path})
		if err == nil {
			err = runParse(cmd.OutOrStdout(), source, name, opts, logger, false)
		}
		if err != nil {
			FormatError(cmd.ErrOrStderr(), err, useColor)
		}
	}

	watcher, err := newFileWatcher(path, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	parseOnce()
	return watcher.Run(ctx, parseOnce)
}
