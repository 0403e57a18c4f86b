// Package parser implements the recursive-descent, precedence-climbing
// parser for Cherri source text. It pulls tokens lazily from the lexer with
// at most two tokens of lookahead and builds an immutable ast.Node tree
// bottom-up.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/core/invariant"
	"github.com/opal-lang/cherri/runtime/lexer"
)

// Tree represents the result of parsing
type Tree struct {
	Root        *ast.Node       // source_file node
	Source      []byte          // Original source (for reference)
	Filename    string          // Name given with WithFilename
	Errors      []*ParseError   // Recovered errors (WithRecovery only)
	Telemetry   *ParseTelemetry // Performance metrics (nil if disabled)
	DebugEvents []DebugEvent    // Debug events (nil if disabled)
}

// Parse parses the input bytes and returns a parse tree.
//
// Without WithRecovery the first error aborts the parse and Parse returns a
// nil tree. With it, syntax errors are collected in Tree.Errors, the tree
// contains ERROR nodes where statements failed, and the returned error joins
// every collected error. Lex errors and recursion-limit errors always abort.
func Parse(source []byte, opts ...ParserOpt) (*Tree, error) {
	config := newConfig(opts)

	var startTotal time.Time
	if config.telemetry >= TelemetryTiming {
		startTotal = time.Now()
	}

	p := newParser(source, config)
	root, err := p.sourceFile()
	if err != nil {
		return nil, p.joinErrors(err)
	}

	tree := &Tree{
		Root:        root,
		Source:      source,
		Filename:    config.filename,
		Errors:      p.errors,
		DebugEvents: p.debugEvents,
	}
	if config.telemetry >= TelemetryBasic {
		tree.Telemetry = &ParseTelemetry{
			TokenCount: p.tokenCount,
			NodeCount:  ast.Count(root),
			ErrorCount: len(p.errors),
			MaxDepth:   p.maxSeen,
		}
		if config.telemetry >= TelemetryTiming {
			tree.Telemetry.TotalTime = time.Since(startTotal)
		}
	}
	return tree, p.joinErrors(nil)
}

// ParseString is a convenience wrapper for tests
func ParseString(input string, opts ...ParserOpt) (*Tree, error) {
	return Parse([]byte(input), opts...)
}

// ParseExpression parses source as a single expression, for callers that
// only hold expression-position text (editor tooling, REPL input).
func ParseExpression(source []byte, opts ...ParserOpt) (*ast.Node, error) {
	p := newParser(source, newConfig(opts))
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, p.errorUnexpected("expression", operatorTokens...)
	}
	if p.lexErr != nil {
		return nil, p.lexError()
	}
	return expr, nil
}

// parser is the internal parser state
type parser struct {
	source []byte
	lex    *lexer.Lexer
	buf    []lexer.Token // lookahead; buf[0] is the current token

	prevEnd lexer.Position // end of the last consumed token
	lexErr  *lexer.Error   // set once the lexer fails; the stream then ends

	config *ParserConfig
	logger *slog.Logger

	depth      int
	maxSeen    int
	tokenCount int

	errors      []*ParseError
	debugEvents []DebugEvent
}

func newParser(source []byte, config *ParserConfig) *parser {
	logger := config.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	lexOpts := []lexer.LexerOpt{lexer.WithLogger(logger)}
	if config.debug >= DebugDetailed {
		lexOpts = append(lexOpts, lexer.WithDebugDetailed())
	}

	p := &parser{
		source:  source,
		lex:     lexer.NewLexer(source, lexOpts...),
		buf:     make([]lexer.Token, 0, 4),
		prevEnd: lexer.Position{Line: 1, Column: 1},
		config:  config,
		logger:  logger,
	}
	if config.debug > DebugOff {
		p.debugEvents = make([]DebugEvent, 0, 64)
	}
	return p
}

// subParser creates a parser over source[start.Offset:end] that shares
// configuration and nesting depth with p.
func (p *parser) subParser(start lexer.Position, end int) *parser {
	sub := &parser{
		source:  p.source,
		lex:     lexer.NewLexer(p.source[:end], lexer.WithStart(start), lexer.WithLogger(p.logger)),
		buf:     make([]lexer.Token, 0, 4),
		prevEnd: start,
		config:  p.config,
		logger:  p.logger,
		depth:   p.depth,
		maxSeen: p.maxSeen,
	}
	if p.debugEvents != nil {
		sub.debugEvents = make([]DebugEvent, 0, 8)
	}
	return sub
}

// absorb folds the counters and debug events of a finished sub-parser back
// into p.
func (p *parser) absorb(sub *parser) {
	invariant.Invariant(sub.depth == p.depth, "sub-parser depth %d != parent depth %d", sub.depth, p.depth)
	p.tokenCount += sub.tokenCount
	if sub.maxSeen > p.maxSeen {
		p.maxSeen = sub.maxSeen
	}
	p.debugEvents = append(p.debugEvents, sub.debugEvents...)
}

// recordDebugEvent records debug events when debug tracing is enabled
func (p *parser) recordDebugEvent(event, context string) {
	if p.config.debug == DebugOff {
		return
	}
	pos := p.current().Pos()
	p.debugEvents = append(p.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Position:  pos,
		Context:   context,
	})
	if p.config.debug >= DebugDetailed {
		p.logger.Debug(event, "pos", pos.String(), "context", context)
	}
}

// sourceFile parses the whole input: statements until end of input.
func (p *parser) sourceFile() (*ast.Node, error) {
	p.recordDebugEvent("enter_source", "parsing source")

	start := p.current().Pos()
	stmts, err := p.statements(false)
	if err != nil {
		return nil, err
	}
	if p.lexErr != nil {
		return nil, p.lexError()
	}

	invariant.Postcondition(p.at(lexer.EOF), "source parsing stopped before end of input at %s", p.current().Pos())
	end := p.current().Pos()

	p.recordDebugEvent("exit_source", fmt.Sprintf("%d statements", len(stmts)))
	return ast.New(ast.KindSourceFile, ast.Span{Start: ast.Position(start), End: ast.Position(end)}, "", stmts...), nil
}

// statements parses statements until end of input, or until '}' inside a
// block. Failing statements are replaced by ERROR nodes when recovery is on.
func (p *parser) statements(inBlock bool) ([]ast.Child, error) {
	var stmts []ast.Child
	for !p.at(lexer.EOF) && !(inBlock && p.at(lexer.RBRACE)) {
		start := p.current()
		prevCount := p.tokenCount

		if p.config.debug >= DebugDetailed {
			p.recordDebugEvent("statement_loop_iteration", start.String())
		}

		stmt, err := p.statement()
		if err != nil {
			perr, ok := p.recoverable(err)
			if !ok {
				return nil, err
			}
			p.errors = append(p.errors, perr)
			stmt = p.recover(start, prevCount)
		}

		// INVARIANT: every iteration consumes at least one token
		invariant.Invariant(p.tokenCount > prevCount, "statement at %s made no progress", start.Pos())
		stmts = append(stmts, ast.Unnamed(stmt))
	}
	return stmts, nil
}

// recoverable reports whether err may be replaced by an ERROR node.
func (p *parser) recoverable(err error) (*ParseError, bool) {
	if !p.config.recovery {
		return nil, false
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrorSyntax {
		return nil, false
	}
	return perr, true
}

// recover skips tokens until we reach a synchronization point and returns
// an ERROR node covering the skipped source. At least one token is skipped.
func (p *parser) recover(start lexer.Token, prevCount int) *ast.Node {
	p.recordDebugEvent("error_recovery_start", start.String())

	if p.tokenCount == prevCount {
		p.advance()
	}
	for !p.isSyncToken() {
		p.advance()
	}

	p.recordDebugEvent("recovery_sync_found", p.current().String())

	span := ast.Span{Start: ast.Position(start.Span.Start), End: ast.Position(p.prevEnd)}
	text := string(p.source[start.Span.Start.Offset:p.prevEnd.Offset])
	return ast.Leaf(ast.KindError, span, text)
}

// isSyncToken checks if current token is a synchronization point
func (p *parser) isSyncToken() bool {
	switch p.current().Type {
	case lexer.RBRACE, // End of block
		lexer.EOF,    // End of file
		lexer.PRAGMA, // Directive line
		lexer.CONST, lexer.IF, lexer.FOR, lexer.REPEAT, lexer.MENU, lexer.ITEM:
		return true
	case lexer.VARIABLE:
		// Start of an assignment or declaration
		next := p.peek(1).Type
		return next == lexer.EQUALS || next == lexer.COLON
	case lexer.IDENTIFIER:
		return p.peek(1).Type == lexer.EQUALS
	}
	return false
}

// enter tracks nesting depth and enforces the configured limit.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxSeen {
		p.maxSeen = p.depth
	}
	if p.depth <= p.config.maxDepth {
		return nil
	}
	p.depth--

	tok := p.current()
	return &ParseError{
		Kind:       ErrorRecursionLimit,
		Filename:   p.config.filename,
		Position:   tok.Pos(),
		Message:    "nesting too deep",
		Got:        tok.Type,
		Suggestion: fmt.Sprintf("Reduce nesting below %d levels or extract parts into variables", p.config.maxDepth),
		Source:     p.source,
	}
}

func (p *parser) leave() {
	p.depth--
	invariant.Invariant(p.depth >= 0, "unbalanced parser depth")
}

// joinErrors combines the collected recovery errors with a final error.
func (p *parser) joinErrors(final error) error {
	if len(p.errors) == 0 {
		return final
	}
	errs := make([]error, 0, len(p.errors)+1)
	for _, e := range p.errors {
		errs = append(errs, e)
	}
	if final != nil {
		errs = append(errs, final)
	}
	return errors.Join(errs...)
}

// fill makes sure the lookahead buffer holds at least n+1 tokens. After a
// lex error the stream is padded with EOF tokens at the error position.
func (p *parser) fill(n int) {
	for len(p.buf) <= n {
		if p.lexErr != nil {
			p.buf = append(p.buf, lexer.Token{Type: lexer.EOF, Span: lexer.Span{Start: p.lexErr.Position, End: p.lexErr.Position}})
			continue
		}
		tok, err := p.lex.NextToken()
		if err != nil {
			var lexErr *lexer.Error
			if !errors.As(err, &lexErr) {
				lexErr = &lexer.Error{Position: p.prevEnd, Message: err.Error()}
			}
			p.lexErr = lexErr
			continue
		}
		p.buf = append(p.buf, tok)
	}
}

// peek returns the token n positions ahead of the current one (n <= 2).
func (p *parser) peek(n int) lexer.Token {
	invariant.InRange(n, 0, 2, "lookahead")
	p.fill(n)
	return p.buf[n]
}

// current returns the current token
func (p *parser) current() lexer.Token {
	return p.peek(0)
}

// at checks if current token is of given type
func (p *parser) at(typ lexer.TokenType) bool {
	return p.current().Type == typ
}

// advance consumes and returns the current token. EOF is never consumed.
func (p *parser) advance() lexer.Token {
	tok := p.current()
	if tok.Type == lexer.EOF {
		return tok
	}
	p.buf = append(p.buf[:0], p.buf[1:]...)
	p.prevEnd = tok.Span.End
	p.tokenCount++
	return tok
}

// expect consumes a token of the expected type or reports what was found
func (p *parser) expect(expected lexer.TokenType, context string) (lexer.Token, error) {
	if p.at(expected) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorExpected(context, expected)
}

// leaf builds a childless node from a token.
func (p *parser) leaf(kind ast.Kind, tok lexer.Token) *ast.Node {
	return ast.Leaf(kind, toSpan(tok.Span), tok.Text)
}

// spanFrom returns the span from the start of tok to the end of the last
// consumed token.
func (p *parser) spanFrom(tok lexer.Token) ast.Span {
	return ast.Span{Start: ast.Position(tok.Span.Start), End: ast.Position(p.prevEnd)}
}

func toSpan(s lexer.Span) ast.Span {
	return ast.Span{Start: ast.Position(s.Start), End: ast.Position(s.End)}
}
