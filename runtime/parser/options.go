package parser

import (
	"log/slog"
	"time"
)

// DefaultMaxDepth bounds statement and expression nesting unless
// overridden with WithMaxDepth.
const DefaultMaxDepth = 256

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Token, node and error counts
	TelemetryTiming                      // Counts + total parse time
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Method call tracing
	DebugDetailed                   // Event-level tracing
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	telemetry TelemetryMode
	debug     DebugLevel
	maxDepth  int
	recovery  bool
	filename  string
	logger    *slog.Logger
}

func newConfig(opts []ParserOpt) *ParserConfig {
	config := &ParserConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithTelemetryBasic enables basic telemetry (counts only)
func WithTelemetryBasic() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + parse time)
func WithTelemetryTiming() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugPaths enables debug path tracing (development only)
func WithDebugPaths() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = DebugPaths
	}
}

// WithDebugDetailed enables detailed debug tracing (development only)
func WithDebugDetailed() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = DebugDetailed
	}
}

// WithMaxDepth sets the nesting limit. Values below 1 keep the default.
func WithMaxDepth(depth int) ParserOpt {
	return func(c *ParserConfig) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithRecovery turns on statement-level error recovery: a statement that
// fails to parse becomes an ERROR node and parsing resumes at the next
// statement boundary. Every syntax error is reported.
func WithRecovery() ParserOpt {
	return func(c *ParserConfig) {
		c.recovery = true
	}
}

// WithFilename names the source in error messages.
func WithFilename(name string) ParserOpt {
	return func(c *ParserConfig) {
		c.filename = name
	}
}

// WithLogger sets the logger for debug output; it is also handed to the
// lexer. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// ParseTelemetry holds parser performance metrics (production-safe)
type ParseTelemetry struct {
	TotalTime  time.Duration // Total parse time (TelemetryTiming only)
	TokenCount int           // Tokens consumed, EOF included
	NodeCount  int           // Nodes in the final tree
	ErrorCount int           // Errors reported
	MaxDepth   int           // Deepest nesting reached
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_if", "exit_if", etc.
	Position  Position
	Context   string // Additional context
}
