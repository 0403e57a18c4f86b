package lexer

import (
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opal-lang/cherri/core/invariant"
)

// ASCII character lookup tables for fast classification
var (
	isWhitespace [128]bool // space, tab, carriage return, newline, form feed
	isDigit      [128]bool // 0-9
	isIdentStart [128]bool // a-z, A-Z, _
	isIdentPart  [128]bool // identifier start or digit

	// isNameStop marks characters that end an @variable name
	isNameStop [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
		isNameStop[i] = isWhitespace[i]
	}
	for _, ch := range []byte(`:=(){},"'+-*/<>!&|`) {
		isNameStop[ch] = true
	}
}

// Lexer scans Cherri source text into tokens, one token per NextToken call.
// A Lexer is not safe for concurrent use; independent inputs need
// independent lexers.
type Lexer struct {
	input  []byte
	offset int // byte offset of the next unread character
	line   int
	column int

	err  error // sticky error, returned by every call after a failure
	done bool  // EOF already produced

	logger      *slog.Logger
	debugLevel  DebugLevel
	debugEvents []DebugEvent
	telemetry   TelemetryMode
	counts      map[TokenType]int
}

// NewLexer creates a lexer over source. The source is not copied and must
// not be modified while the lexer is in use.
func NewLexer(source []byte, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := Position{Line: 1, Column: 1}
	if config.start != nil {
		start = *config.start
	}
	invariant.InRange(start.Offset, 0, len(source), "start offset")
	invariant.Positive(start.Line, "start line")
	invariant.Positive(start.Column, "start column")

	l := &Lexer{
		input:      source,
		offset:     start.Offset,
		line:       start.Line,
		column:     start.Column,
		logger:     logger,
		debugLevel: config.debug,
		telemetry:  config.telemetry,
	}
	if config.debug > DebugOff {
		l.debugEvents = make([]DebugEvent, 0, 64)
	}
	if config.telemetry > TelemetryOff {
		l.counts = make(map[TokenType]int)
	}
	return l
}

// Tokenize scans the whole source. On failure the tokens scanned so far are
// returned together with the error.
func Tokenize(source []byte, opts ...LexerOpt) ([]Token, error) {
	l := NewLexer(source, opts...)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// Reconstruct concatenates the trivia and lexemes of tokens. For a complete
// token stream (ending in EOF) the result equals the original source.
func Reconstruct(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		for _, tr := range tok.Leading {
			b.WriteString(tr.Text)
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// NextToken returns the next token. After the input is exhausted every call
// returns an EOF token carrying any trailing trivia the first time.
func (l *Lexer) NextToken() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	if l.done {
		pos := l.pos()
		return Token{Type: EOF, Span: Span{Start: pos, End: pos}}, nil
	}

	tok, err := l.lexToken()
	if err != nil {
		l.err = err
		l.logger.Debug("lex error", "error", err)
		return Token{}, err
	}
	if tok.Type == EOF {
		l.done = true
	}
	if l.counts != nil {
		l.counts[tok.Type]++
	}
	if l.debugLevel >= DebugDetailed {
		l.logger.Debug("token", "type", tok.Type, "text", tok.Text, "pos", tok.Pos())
	}
	return tok, nil
}

// Telemetry returns per-type token counts, or nil when telemetry is off.
func (l *Lexer) Telemetry() map[TokenType]int {
	if l.counts == nil {
		return nil
	}
	out := make(map[TokenType]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// DebugEvents returns recorded debug events, or nil when debugging is off.
func (l *Lexer) DebugEvents() []DebugEvent {
	if l.debugEvents == nil {
		return nil
	}
	return append([]DebugEvent(nil), l.debugEvents...)
}

func (l *Lexer) recordDebugEvent(event, context string) {
	if l.debugLevel == DebugOff {
		return
	}
	l.debugEvents = append(l.debugEvents, DebugEvent{
		Event:    event,
		Position: l.pos(),
		Context:  context,
	})
}

// lexToken performs the actual tokenization work
func (l *Lexer) lexToken() (Token, error) {
	trivia, err := l.scanTrivia()
	if err != nil {
		return Token{}, err
	}

	start := l.pos()
	if l.offset >= len(l.input) {
		l.recordDebugEvent("found_EOF", "end of input")
		return Token{Type: EOF, Span: Span{Start: start, End: start}, Leading: trivia}, nil
	}

	ch := l.input[l.offset]
	var typ TokenType

	switch {
	case ch < 128 && isIdentStart[ch]:
		l.recordDebugEvent("enter_identifier", string(ch))
		typ = l.scanIdentifier()
	case ch < 128 && isDigit[ch]:
		l.recordDebugEvent("enter_number", string(ch))
		l.scanNumber()
		typ = NUMBER
	case ch == '"':
		l.recordDebugEvent("enter_string", "double-quoted")
		if err := l.scanString(start); err != nil {
			return Token{}, err
		}
		typ = STRING
	case ch == '\'':
		l.recordDebugEvent("enter_string", "single-quoted")
		if err := l.scanRawString(start); err != nil {
			return Token{}, err
		}
		typ = RAW_STRING
	case ch == '@':
		if err := l.scanVariable(start); err != nil {
			return Token{}, err
		}
		typ = VARIABLE
	case ch == '#':
		if err := l.scanPragma(start); err != nil {
			return Token{}, err
		}
		typ = PRAGMA
	default:
		typ = l.scanPunctuation()
	}

	return Token{
		Type:    typ,
		Text:    string(l.input[start.Offset:l.offset]),
		Span:    Span{Start: start, End: l.pos()},
		Leading: trivia,
	}, nil
}

// scanTrivia consumes whitespace and comments before the next token.
func (l *Lexer) scanTrivia() ([]Trivia, error) {
	var trivia []Trivia
	for l.offset < len(l.input) {
		start := l.pos()
		ch, size := l.peekRune(0)

		switch {
		case ch == '/' && l.peekByte(1) == '/':
			for l.offset < len(l.input) && l.input[l.offset] != '\n' {
				l.advance()
			}
			trivia = append(trivia, l.trivia(TriviaLineComment, start))

		case ch == '/' && l.peekByte(1) == '*':
			l.advance()
			l.advance()
			closed := false
			for l.offset < len(l.input) {
				if l.input[l.offset] == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return nil, &Error{
					Position:   start,
					Message:    "unterminated block comment",
					Suggestion: "Add '*/' to close the comment",
				}
			}
			trivia = append(trivia, l.trivia(TriviaBlockComment, start))

		case (ch < 128 && isWhitespace[ch]) || (ch >= 128 && size > 0 && unicode.IsSpace(ch)):
			for l.offset < len(l.input) {
				r, n := l.peekRune(0)
				if (r < 128 && isWhitespace[r]) || (r >= 128 && n > 0 && unicode.IsSpace(r)) {
					l.advance()
					continue
				}
				break
			}
			trivia = append(trivia, l.trivia(TriviaWhitespace, start))

		default:
			return trivia, nil
		}
	}
	return trivia, nil
}

func (l *Lexer) trivia(kind TriviaKind, start Position) Trivia {
	return Trivia{
		Kind: kind,
		Text: string(l.input[start.Offset:l.offset]),
		Span: Span{Start: start, End: l.pos()},
	}
}

// scanIdentifier reads [A-Za-z_][A-Za-z0-9_]* and classifies reserved words.
func (l *Lexer) scanIdentifier() TokenType {
	start := l.offset
	for l.offset < len(l.input) {
		ch := l.input[l.offset]
		if ch >= 128 || !isIdentPart[ch] {
			break
		}
		l.advance()
	}
	return LookupKeyword(string(l.input[start:l.offset]))
}

// scanNumber reads digits with an optional fractional part. A '.' not
// followed by a digit is left for the next token.
func (l *Lexer) scanNumber() {
	l.skipDigits()
	if l.peekByte(0) == '.' {
		next := l.peekByte(1)
		if next < 128 && isDigit[next] {
			l.advance()
			l.skipDigits()
		}
	}
}

func (l *Lexer) skipDigits() {
	for l.offset < len(l.input) {
		ch := l.input[l.offset]
		if ch >= 128 || !isDigit[ch] {
			return
		}
		l.advance()
	}
}

// scanString reads a double-quoted string. Interpolation spans run from '{'
// to the first '}' and may not contain another '{'.
func (l *Lexer) scanString(start Position) error {
	l.advance() // opening quote
	for {
		if l.offset >= len(l.input) {
			return unterminatedString(start)
		}
		switch l.input[l.offset] {
		case '"':
			l.advance()
			return nil
		case '\\':
			if err := l.scanEscape(); err != nil {
				return err
			}
		case '{':
			open := l.pos()
			l.advance()
			for {
				if l.offset >= len(l.input) {
					return &Error{
						Position:   open,
						Message:    "unterminated interpolation in string",
						Suggestion: "Add '}' to close the interpolation",
					}
				}
				ch := l.input[l.offset]
				if ch == '}' {
					l.advance()
					break
				}
				if ch == '{' {
					return &Error{
						Position:   l.pos(),
						Message:    "nested '{' inside string interpolation",
						Suggestion: "Assign the inner value to a variable and interpolate the variable",
					}
				}
				l.advance()
			}
		default:
			l.advance()
		}
	}
}

// scanRawString reads a single-quoted string: escapes but no interpolation.
func (l *Lexer) scanRawString(start Position) error {
	l.advance() // opening quote
	for {
		if l.offset >= len(l.input) {
			return unterminatedString(start)
		}
		switch l.input[l.offset] {
		case '\'':
			l.advance()
			return nil
		case '\\':
			if err := l.scanEscape(); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

// scanEscape consumes '\' and the character it escapes.
func (l *Lexer) scanEscape() error {
	escape := l.pos()
	l.advance()
	if l.offset >= len(l.input) {
		return &Error{
			Position:   escape,
			Message:    "escape sequence at end of input",
			Suggestion: "Close the string after the escaped character",
		}
	}
	l.advance()
	return nil
}

func unterminatedString(start Position) *Error {
	return &Error{
		Position:   start,
		Message:    "unterminated string",
		Suggestion: "Add a closing quote",
	}
}

// scanVariable reads '@' followed by one or more name characters.
func (l *Lexer) scanVariable(start Position) error {
	l.advance() // '@'
	nameStart := l.offset
	for l.offset < len(l.input) {
		ch, size := l.peekRune(0)
		if ch < 128 && isNameStop[ch] {
			break
		}
		if ch >= 128 && (size == 0 || invalidByte(ch, size) || unicode.IsSpace(ch)) {
			break
		}
		l.advance()
	}
	if l.offset == nameStart {
		return &Error{
			Position:   start,
			Message:    "expected variable name after '@'",
			Suggestion: "Write the variable name directly after '@'",
		}
	}
	return nil
}

// scanPragma reads '#' and a directive name from the closed pragma set.
func (l *Lexer) scanPragma(start Position) error {
	l.advance() // '#'
	for l.offset < len(l.input) {
		ch := l.input[l.offset]
		if ch >= 128 || !isIdentPart[ch] {
			break
		}
		l.advance()
	}
	word := string(l.input[start.Offset:l.offset])
	if isPragma(word) {
		return nil
	}

	err := &Error{
		Position: start,
		Message:  "unknown pragma directive '" + word + "'",
	}
	if s := Suggest(word, pragmas); s != "" {
		err.Suggestion = "Did you mean '" + s + "'?"
	} else {
		err.Suggestion = "Valid directives are " + strings.Join(pragmas, ", ")
	}
	return err
}

// scanPunctuation reads an operator or punctuation token. Unknown
// characters become ILLEGAL tokens and are reported by the parser.
func (l *Lexer) scanPunctuation() TokenType {
	ch := l.input[l.offset]
	next := l.peekByte(1)

	two := func(t TokenType) TokenType {
		l.advance()
		l.advance()
		return t
	}
	one := func(t TokenType) TokenType {
		l.advance()
		return t
	}

	switch ch {
	case '=':
		if next == '=' {
			return two(EQ_EQ)
		}
		return one(EQUALS)
	case '!':
		if next == '=' {
			return two(NOT_EQ)
		}
		return one(ILLEGAL)
	case '<':
		if next == '=' {
			return two(LT_EQ)
		}
		return one(LT)
	case '>':
		if next == '=' {
			return two(GT_EQ)
		}
		return one(GT)
	case '&':
		if next == '&' {
			return two(AND_AND)
		}
		return one(ILLEGAL)
	case '|':
		if next == '|' {
			return two(OR_OR)
		}
		return one(ILLEGAL)
	case ':':
		return one(COLON)
	case ',':
		return one(COMMA)
	case '(':
		return one(LPAREN)
	case ')':
		return one(RPAREN)
	case '{':
		return one(LBRACE)
	case '}':
		return one(RBRACE)
	case '+':
		return one(PLUS)
	case '-':
		return one(MINUS)
	case '*':
		return one(MULTIPLY)
	case '/':
		return one(DIVIDE)
	default:
		return one(ILLEGAL)
	}
}

// pos returns the current position.
func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.offset}
}

// peekByte returns the byte n positions ahead, or 0 past the end.
func (l *Lexer) peekByte(n int) byte {
	if l.offset+n >= len(l.input) {
		return 0
	}
	return l.input[l.offset+n]
}

// peekRune decodes the rune n bytes ahead. An invalid UTF-8 byte decodes as
// utf8.RuneError with size 1, so it is never mistaken for a space or name
// character and ends up in an ILLEGAL token.
func (l *Lexer) peekRune(n int) (rune, int) {
	if l.offset+n >= len(l.input) {
		return 0, 0
	}
	ch := l.input[l.offset+n]
	if ch < utf8.RuneSelf {
		return rune(ch), 1
	}
	return utf8.DecodeRune(l.input[l.offset+n:])
}

// invalidByte reports whether peekRune hit a byte that is not UTF-8.
func invalidByte(r rune, size int) bool {
	return r == utf8.RuneError && size == 1
}

// advance moves past one rune, tracking line and column.
func (l *Lexer) advance() {
	if l.offset >= len(l.input) {
		return
	}
	ch, size := l.peekRune(0)
	l.offset += size
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}
