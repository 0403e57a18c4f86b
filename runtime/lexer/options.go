package lexer

import "log/slog"

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff   TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                      // Token counts per type
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Scanner entry tracing
	DebugDetailed                   // Every token is logged
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	telemetry TelemetryMode
	debug     DebugLevel
	logger    *slog.Logger
	start     *Position
}

// WithTelemetryBasic enables per-type token counts
func WithTelemetryBasic() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithDebugPaths enables scanner entry tracing
func WithDebugPaths() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugPaths
	}
}

// WithDebugDetailed enables scanner tracing plus per-token debug logs
func WithDebugDetailed() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugDetailed
	}
}

// WithLogger sets the logger used for debug output. Defaults to a discarding
// logger.
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		c.logger = logger
	}
}

// WithStart begins scanning at pos instead of the start of the input. The
// bytes before pos.Offset are never read; positions continue from pos. Used
// to lex a region of a larger source, such as a string interpolation.
func WithStart(pos Position) LexerOpt {
	return func(c *LexerConfig) {
		c.start = &pos
	}
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Event    string   // "enter_string", "found_EOF", ...
	Position Position // Lexer position when the event was recorded
	Context  string
}
