package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/cherri/runtime/lexer"
	"github.com/opal-lang/cherri/runtime/parser"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Message string
	Hint    string // How to fix it
	Err     error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// FormatError formats an error for CLI output with colors. Joined errors
// from a recovering parse are printed one after another.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for i, e := range joined.Unwrap() {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			FormatError(w, e, useColor)
		}
		return
	}

	var perr *parser.ParseError
	var lexErr *lexer.Error
	var cliErr *CLIError
	switch {
	case errors.As(err, &perr):
		formatParseError(w, perr, useColor)
	case errors.As(err, &lexErr):
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("lex error: ", ColorRed, useColor), lexErr.Error())
		if lexErr.Suggestion != "" {
			_, _ = fmt.Fprintf(w, "   %s%s\n", Colorize("= help: ", ColorCyan, useColor), lexErr.Suggestion)
		}
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	default:
		// Generic error
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatParseError prints the rendered parse error, coloring the header,
// the location arrow, the caret and the help lines.
func formatParseError(w io.Writer, err *parser.ParseError, useColor bool) {
	lines := strings.Split(err.Error(), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case i == 0:
			kind := err.Kind.String()
			line = Colorize(kind, ColorRed, useColor) + strings.TrimPrefix(line, kind)
		case strings.HasPrefix(trimmed, "-->"):
			line = Colorize(line, ColorBlue, useColor)
		case strings.HasSuffix(line, "^") && strings.Contains(line, "|"):
			line = strings.TrimSuffix(line, "^") + Colorize("^", ColorYellow, useColor)
		case strings.HasPrefix(trimmed, "= help:"), strings.HasPrefix(trimmed, "= example:"), strings.HasPrefix(trimmed, "= note:"):
			line = Colorize(line, ColorCyan, useColor)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	msg := err.Message
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), msg)

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}
