package parser

import (
	"fmt"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/runtime/lexer"
)

// expressionStarts lists the token types that can begin an expression, in
// atom dispatch order.
var expressionStarts = []lexer.TokenType{
	lexer.LPAREN, lexer.LBRACE, lexer.IDENTIFIER, lexer.VARIABLE, lexer.NUMBER,
	lexer.STRING, lexer.RAW_STRING, lexer.BOOLEAN, lexer.CONSTANT,
	lexer.KEYWORD, lexer.TYPE,
}

// operatorTokens lists the binary operators, reported when an expression
// is followed by something that cannot continue it.
var operatorTokens = []lexer.TokenType{
	lexer.OR_OR, lexer.AND_AND, lexer.EQ_EQ, lexer.NOT_EQ, lexer.LT, lexer.GT,
	lexer.LT_EQ, lexer.GT_EQ, lexer.PLUS, lexer.MINUS, lexer.MULTIPLY, lexer.DIVIDE,
}

// startsExpression reports whether a token of type t can begin an expression
func startsExpression(t lexer.TokenType) bool {
	switch t {
	case lexer.LPAREN, lexer.LBRACE, lexer.IDENTIFIER, lexer.VARIABLE,
		lexer.NUMBER, lexer.STRING, lexer.RAW_STRING, lexer.BOOLEAN,
		lexer.CONSTANT, lexer.KEYWORD, lexer.TYPE:
		return true
	}
	return false
}

// expression parses an expression in value position, where '{' opens a
// dictionary.
func (p *parser) expression() (*ast.Node, error) {
	return p.binaryExpr(PrecAssignment)
}

// binaryExpr parses binary expressions with precedence climbing. Operators
// binding at least as tightly as minPrec are folded into the left operand;
// the right operand is parsed one level higher, which makes every operator
// left-associative.
func (p *parser) binaryExpr(minPrec Precedence) (*ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := BinaryPrecedence(p.current().Type)
		if !ok || prec < minPrec {
			break
		}

		opTok := p.advance()
		if p.config.debug >= DebugDetailed {
			p.recordDebugEvent("binary_operator", fmt.Sprintf("%s at %s", opTok.Text, prec))
		}

		right, err := p.binaryExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		left = ast.New(ast.KindBinaryExpression, left.Span().Cover(right.Span()), "",
			ast.Named(ast.FieldLeft, left),
			ast.Named(ast.FieldOperator, p.leaf(ast.KindOperator, opTok)),
			ast.Named(ast.FieldRight, right),
		)
	}
	return left, nil
}

// primary parses an atom
func (p *parser) primary() (*ast.Node, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.LPAREN:
		return p.parenthesized()
	case lexer.LBRACE:
		return p.dictionary()
	case lexer.IDENTIFIER, lexer.KEYWORD, lexer.TYPE:
		if p.peek(1).Type == lexer.LPAREN {
			return p.call()
		}
		return p.leaf(wordKind(tok.Type), p.advance()), nil
	case lexer.VARIABLE:
		return p.leaf(ast.KindVariable, p.advance()), nil
	case lexer.NUMBER:
		return p.leaf(ast.KindNumber, p.advance()), nil
	case lexer.STRING, lexer.RAW_STRING:
		return p.stringLiteral()
	case lexer.BOOLEAN:
		return p.leaf(ast.KindBoolean, p.advance()), nil
	case lexer.CONSTANT:
		return p.leaf(ast.KindBuiltinConstant, p.advance()), nil
	case lexer.MINUS:
		return nil, p.errorExpectedExpression("expression").help(
			"There is no unary minus; subtract from zero instead",
			"@delta = 0 - 5")
	}
	return nil, p.errorExpectedExpression("expression")
}

func wordKind(t lexer.TokenType) ast.Kind {
	switch t {
	case lexer.KEYWORD:
		return ast.KindKeyword
	case lexer.TYPE:
		return ast.KindType
	default:
		return ast.KindIdentifier
	}
}

// errorExpectedExpression reports a token that cannot start an expression
func (p *parser) errorExpectedExpression(context string) *ParseError {
	cur := p.current()
	message := fmt.Sprintf("expected expression, got %s", describeToken(cur))
	return p.syntaxError(cur.Pos(), message, context, expressionStarts...)
}

// call parses name(arg, ...). The callee is an identifier, builtin keyword
// or type keyword; the list may be empty but may not end with a comma.
func (p *parser) call() (*ast.Node, error) {
	calleeTok := p.advance()
	callee := p.leaf(wordKind(calleeTok.Type), calleeTok)

	p.recordDebugEvent("enter_call", calleeTok.Text)

	open := p.advance() // '('
	var args []ast.Child
	if !p.at(lexer.RPAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Unnamed(arg))

			if !p.at(lexer.COMMA) {
				break
			}
			p.advance()
			if p.at(lexer.RPAREN) {
				return nil, p.syntaxError(p.current().Pos(), "trailing comma in argument list", "argument list", expressionStarts...).help(
					"Remove the ',' before ')'",
					calleeTok.Text+"(a, b)")
			}
		}
	}

	if !p.at(lexer.RPAREN) {
		if p.at(lexer.EOF) {
			err := p.syntaxError(open.Pos(), "unterminated argument list", "argument list", lexer.RPAREN)
			return nil, err.help("Add ')' to close the call to "+calleeTok.Text, "")
		}
		return nil, p.errorExpected("argument list", lexer.COMMA, lexer.RPAREN).help(
			"Separate arguments with ',' and close the list with ')'",
			calleeTok.Text+"(a, b)")
	}
	p.advance()

	arguments := ast.New(ast.KindArguments, p.spanFrom(open), "", args...)
	return ast.New(ast.KindCallExpression, p.spanFrom(calleeTok), "",
		ast.Named(ast.FieldFunction, callee),
		ast.Named(ast.FieldArguments, arguments),
	), nil
}

// parenthesized parses ( expression )
func (p *parser) parenthesized() (*ast.Node, error) {
	open := p.advance()

	inner, err := p.expression()
	if err != nil {
		return nil, err
	}

	if !p.at(lexer.RPAREN) {
		if p.at(lexer.EOF) {
			err := p.syntaxError(open.Pos(), "unterminated parenthesized expression", "parenthesized expression", lexer.RPAREN)
			return nil, err.help("Add ')' to close the group", "")
		}
		return nil, p.errorExpected("parenthesized expression", lexer.RPAREN)
	}
	p.advance()

	return ast.New(ast.KindParenthesizedExpression, p.spanFrom(open), "", ast.Unnamed(inner)), nil
}

// dictionary parses { key: value, ... }. Pairs keep source order and keys
// may repeat.
func (p *parser) dictionary() (*ast.Node, error) {
	open := p.advance()
	p.recordDebugEvent("enter_dictionary", "parsing dictionary")

	var pairs []ast.Child
	if !p.at(lexer.RBRACE) {
		for {
			key, err := p.expression()
			if err != nil {
				return nil, err
			}

			if !p.at(lexer.COLON) {
				return nil, p.errorExpected("dictionary", lexer.COLON).help(
					"Separate each key from its value with ':'",
					`{"name": "Cherri", "count": 2}`)
			}
			p.advance()

			value, err := p.expression()
			if err != nil {
				return nil, err
			}

			pairs = append(pairs, ast.Unnamed(ast.New(ast.KindDictionaryPair, key.Span().Cover(value.Span()), "",
				ast.Named(ast.FieldKey, key),
				ast.Named(ast.FieldValue, value),
			)))

			if !p.at(lexer.COMMA) {
				break
			}
			p.advance()
			if p.at(lexer.RBRACE) {
				return nil, p.syntaxError(p.current().Pos(), "trailing comma in dictionary", "dictionary", expressionStarts...).help(
					"Remove the ',' before '}'",
					`{"a": 1, "b": 2}`)
			}
		}
	}

	if !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			err := p.syntaxError(open.Pos(), "unterminated dictionary", "dictionary", lexer.RBRACE)
			return nil, err.help("Add '}' to close the dictionary", "")
		}
		return nil, p.errorExpected("dictionary", lexer.COMMA, lexer.RBRACE).help(
			"Separate pairs with ',' and close the dictionary with '}'",
			`{"a": 1, "b": 2}`)
	}
	p.advance()

	return ast.New(ast.KindDictionary, p.spanFrom(open), "", pairs...), nil
}
