package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	configPath string
	debug      bool
	noColor    bool

	// config is loaded before any subcommand runs; nil when loading failed
	config *Config
}

// useColor reports whether output written to w should be colored.
func (o *globalOptions) useColor(w io.Writer) bool {
	return ShouldUseColor(w, o.noColor, o.config)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and prints any error to stderr,
// honoring --no-color and the config file. It returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &globalOptions{}
	rootCmd := buildRootCmd(opts, stdin, stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		FormatError(stderr, err, opts.useColor(stderr))
		return 1
	}
	return 0
}

// newRootCmd builds the cherri command tree over the given streams.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return buildRootCmd(&globalOptions{}, stdin, stdout, stderr)
}

func buildRootCmd(opts *globalOptions, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cherri",
		Short:         "Parse Cherri source files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.config = config
			return nil
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Add flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default .cherri.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newParseCmd(opts), newTokensCmd(opts))
	return rootCmd
}

// getInputReader handles the 2 modes of input:
// 1. Explicit stdin with "-" (or no argument)
// 2. File input
func getInputReader(cmd *cobra.Command, file string) (io.Reader, func() error, error) {
	// Mode 1: Explicit stdin
	if file == "-" || file == "" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}

	// Mode 2: File input
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return f, f.Close, nil
}

// readInput reads the whole input named by args and returns it with the
// name used in diagnostics.
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	file := ""
	if len(args) > 0 {
		file = args[0]
	}

	reader, closeFunc, err := getInputReader(cmd, file)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = closeFunc() }()

	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("error reading input: %w", err)
	}

	name := file
	if name == "" || name == "-" {
		name = "<stdin>"
	}
	return source, name, nil
}
