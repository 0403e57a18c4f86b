package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opal-lang/cherri/runtime/lexer"
)

// Position is a source location (1-based line and rune column, byte offset).
type Position = lexer.Position

// Sentinels matched by ParseError through errors.Is.
var (
	ErrLex            = errors.New("lex error")
	ErrSyntax         = errors.New("syntax error")
	ErrRecursionLimit = errors.New("recursion limit exceeded")
)

// ErrorKind is the category of a ParseError
type ErrorKind int

const (
	ErrorSyntax ErrorKind = iota
	ErrorLex
	ErrorRecursionLimit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorLex:
		return "lex error"
	case ErrorRecursionLimit:
		return "recursion limit"
	default:
		return "syntax error"
	}
}

// ParseError represents a parsing error with location and context information
type ParseError struct {
	Kind       ErrorKind
	Filename   string
	Position   Position
	Message    string            // "expected '}', got end of input"
	Context    string            // "if statement", "dictionary", ...
	Expected   []lexer.TokenType // Token types that would have been accepted
	Got        lexer.TokenType   // Token type found (syntax errors)
	Suggestion string            // "Add '}' to close the block"
	Example    string            // Valid syntax example
	Note       string            // Additional explanation

	// Source is the full input, used to render the snippet.
	Source []byte

	cause error
}

// Error returns the formatted error message with location and code snippet
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if snippet := e.createCodeSnippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}
	if e.Suggestion != "" {
		b.WriteString("\n   = help: ")
		b.WriteString(e.Suggestion)
	}
	if e.Example != "" {
		b.WriteString("\n   = example: ")
		b.WriteString(e.Example)
	}
	if e.Note != "" {
		b.WriteString("\n   = note: ")
		b.WriteString(e.Note)
	}
	return b.String()
}

// Summary renders the error on a single line: "file:3:7: syntax error: ...".
func (e *ParseError) Summary() string {
	return fmt.Sprintf("%s: %s: %s", e.location(), e.Kind, e.Message)
}

// Is matches the sentinel of the error's kind.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrLex:
		return e.Kind == ErrorLex
	case ErrSyntax:
		return e.Kind == ErrorSyntax
	case ErrRecursionLimit:
		return e.Kind == ErrorRecursionLimit
	}
	return false
}

// Unwrap returns the underlying *lexer.Error of a lex error.
func (e *ParseError) Unwrap() error {
	return e.cause
}

func (e *ParseError) location() string {
	loc := e.Position.String()
	if e.Filename != "" {
		return e.Filename + ":" + loc
	}
	return loc
}

// createCodeSnippet creates a code snippet showing the error location
func (e *ParseError) createCodeSnippet() string {
	if len(e.Source) == 0 || e.Position.Line == 0 {
		return ""
	}

	lines := strings.Split(string(e.Source), "\n")
	if e.Position.Line > len(lines) {
		return ""
	}
	lineContent := strings.TrimRight(lines[e.Position.Line-1], "\r")

	gutter := len(fmt.Sprint(e.Position.Line))
	pad := strings.Repeat(" ", gutter)

	// Create the snippet in Rust/Clang style
	var snippet strings.Builder
	fmt.Fprintf(&snippet, "%s--> %s\n", pad, e.location())
	fmt.Fprintf(&snippet, "%s |\n", pad)
	fmt.Fprintf(&snippet, "%d | %s\n", e.Position.Line, lineContent)
	fmt.Fprintf(&snippet, "%s | ", pad)
	if e.Position.Column > 0 {
		// Tabs are kept so the caret lines up with the source line
		runes := []rune(lineContent)
		for i := 0; i < e.Position.Column-1 && i < len(runes); i++ {
			if runes[i] == '\t' {
				snippet.WriteByte('\t')
			} else {
				snippet.WriteByte(' ')
			}
		}
		snippet.WriteString("^")
	}
	return snippet.String()
}

// describeExpected renders an expected set: "'}' or identifier".
func describeExpected(expected []lexer.TokenType) string {
	parts := make([]string, len(expected))
	for i, t := range expected {
		parts[i] = t.Describe()
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
	}
}

// describeToken names a token for messages: "'}'", "identifier 'foo'",
// "end of input".
func describeToken(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.ILLEGAL:
		return fmt.Sprintf("illegal character %q", tok.Text)
	}
	if tok.Type.Symbol() != "" {
		return tok.Type.Describe()
	}
	text := tok.Text
	if len([]rune(text)) > 24 {
		text = string([]rune(text)[:21]) + "..."
	}
	return fmt.Sprintf("%s '%s'", tok.Type.Describe(), text)
}

// help attaches a suggestion and an example to a syntax error. Lex errors
// keep the lexer's own suggestion.
func (e *ParseError) help(suggestion, example string) *ParseError {
	if e.Kind != ErrorSyntax {
		return e
	}
	e.Suggestion = suggestion
	e.Example = example
	return e
}

// syntaxError builds a syntax error at pos. When the lexer has failed and
// the parser is looking at the padded end of the stream, the lex error is
// returned instead since it is the actual cause.
func (p *parser) syntaxError(pos Position, message, context string, expected ...lexer.TokenType) *ParseError {
	if p.lexErr != nil && p.at(lexer.EOF) {
		return p.lexError()
	}
	return &ParseError{
		Kind:     ErrorSyntax,
		Filename: p.config.filename,
		Position: pos,
		Message:  message,
		Context:  context,
		Expected: expected,
		Got:      p.current().Type,
		Source:   p.source,
	}
}

// lexError converts the lexer failure into a ParseError
func (p *parser) lexError() *ParseError {
	return &ParseError{
		Kind:       ErrorLex,
		Filename:   p.config.filename,
		Position:   p.lexErr.Position,
		Message:    p.lexErr.Message,
		Got:        lexer.EOF,
		Suggestion: p.lexErr.Suggestion,
		Source:     p.source,
		cause:      p.lexErr,
	}
}

// errorExpected reports a missing token at the current position
func (p *parser) errorExpected(context string, expected ...lexer.TokenType) *ParseError {
	cur := p.current()
	message := fmt.Sprintf("expected %s, got %s", describeExpected(expected), describeToken(cur))
	err := p.syntaxError(cur.Pos(), message, context, expected...)

	// Add helpful suggestions based on context
	if len(expected) == 1 {
		switch expected[0] {
		case lexer.RPAREN:
			err.help("Add ')' to close the "+context, "")
		case lexer.RBRACE:
			err.help("Add '}' to close the "+context, "")
		case lexer.LBRACE:
			err.help("Add '{' to start the "+context, "")
		}
	}
	return err
}

// errorUnexpected reports an error for unexpected token
func (p *parser) errorUnexpected(context string, expected ...lexer.TokenType) *ParseError {
	cur := p.current()
	message := fmt.Sprintf("unexpected %s in %s", describeToken(cur), context)
	return p.syntaxError(cur.Pos(), message, context, expected...)
}
