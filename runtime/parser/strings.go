package parser

import (
	"unicode/utf8"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/core/invariant"
	"github.com/opal-lang/cherri/runtime/lexer"
)

// stringCursor walks the text of a string token while tracking source
// positions the same way the lexer does.
type stringCursor struct {
	text string
	i    int
	pos  lexer.Position
}

func (c *stringCursor) next() {
	if c.i >= len(c.text) {
		return
	}
	r, size := utf8.DecodeRuneInString(c.text[c.i:])
	c.i += size
	c.pos.Offset += size
	if r == '\n' {
		c.pos.Line++
		c.pos.Column = 1
	} else {
		c.pos.Column++
	}
}

// stringLiteral parses a string token into fragments and interpolations.
//
// Interpolation content is parsed eagerly as an expression, so a malformed
// interpolation is reported at parse time with its exact position. Fragment
// text is kept raw (escapes included); ast.Unescape decodes it.
func (p *parser) stringLiteral() (*ast.Node, error) {
	tok := p.advance()
	interpolate := tok.Type == lexer.STRING

	if p.config.debug >= DebugDetailed {
		p.recordDebugEvent("enter_string_literal", tok.Text)
	}

	text := tok.Text
	invariant.Precondition(len(text) >= 2, "string token %q is missing its quotes", text)

	c := &stringCursor{text: text, pos: tok.Span.Start}
	c.next() // opening quote
	end := len(text) - 1

	var parts []ast.Child
	fragIdx, fragPos := c.i, c.pos
	flush := func() {
		if c.i > fragIdx {
			span := ast.Span{Start: ast.Position(fragPos), End: ast.Position(c.pos)}
			parts = append(parts, ast.Unnamed(ast.Leaf(ast.KindStringFragment, span, text[fragIdx:c.i])))
		}
	}

	for c.i < end {
		switch {
		case text[c.i] == '\\':
			c.next()
			c.next()

		case text[c.i] == '{' && interpolate:
			flush()
			open := c.pos
			c.next()
			contentStart := c.pos
			for c.i < end && text[c.i] != '}' {
				c.next()
			}
			invariant.Invariant(c.i < end, "interpolation in %q is not closed", text)
			contentEnd := c.pos
			c.next() // '}'

			expr, err := p.interpolation(contentStart, contentEnd)
			if err != nil {
				return nil, err
			}
			span := ast.Span{Start: ast.Position(open), End: ast.Position(c.pos)}
			parts = append(parts, ast.Unnamed(ast.New(ast.KindInterpolation, span, "", ast.Unnamed(expr))))
			fragIdx, fragPos = c.i, c.pos

		default:
			c.next()
		}
	}
	flush()

	return ast.New(ast.KindString, toSpan(tok.Span), text, parts...), nil
}

// interpolation parses the source between start and end as exactly one
// expression. The nested parser shares the depth limit of its parent.
func (p *parser) interpolation(start, end lexer.Position) (*ast.Node, error) {
	sub := p.subParser(start, end.Offset)

	if sub.at(lexer.EOF) {
		if sub.lexErr != nil {
			return nil, sub.lexError()
		}
		err := sub.syntaxError(start, "empty interpolation", "string interpolation", expressionStarts...)
		return nil, err.help(
			"Put an expression between the braces, or escape the brace as '\\{'",
			`"Hello {@name}"`)
	}

	expr, err := sub.expression()
	if err != nil {
		return nil, err
	}
	if !sub.at(lexer.EOF) {
		return nil, sub.errorUnexpected("string interpolation", operatorTokens...).help(
			"An interpolation holds a single expression",
			`"Total: {@price * @count}"`)
	}
	if sub.lexErr != nil {
		return nil, sub.lexError()
	}

	p.absorb(sub)
	return expr, nil
}
