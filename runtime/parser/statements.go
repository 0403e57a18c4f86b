package parser

import (
	"fmt"
	"strings"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/runtime/lexer"
)

// statementStarts is the expected set reported when no statement matches.
var statementStarts = []lexer.TokenType{
	lexer.PRAGMA, lexer.VARIABLE, lexer.IDENTIFIER, lexer.CONST, lexer.IF,
	lexer.FOR, lexer.REPEAT, lexer.MENU, lexer.ITEM, lexer.LBRACE,
}

// pragmaValues are the token types accepted after a directive.
var pragmaValues = []lexer.TokenType{
	lexer.STRING, lexer.RAW_STRING, lexer.IDENTIFIER, lexer.KEYWORD, lexer.TYPE,
}

// statement parses one statement, dispatching on the leading token
func (p *parser) statement() (*ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.current()
	switch tok.Type {
	case lexer.PRAGMA:
		return p.pragma()
	case lexer.CONST:
		return p.assignment()
	case lexer.VARIABLE:
		switch p.peek(1).Type {
		case lexer.COLON:
			return p.declaration()
		case lexer.EQUALS:
			return p.assignment()
		}
	case lexer.IDENTIFIER:
		if p.peek(1).Type == lexer.EQUALS {
			return p.assignment()
		}
	case lexer.IF:
		return p.ifStmt()
	case lexer.FOR:
		return p.forStmt()
	case lexer.REPEAT:
		return p.repeatStmt()
	case lexer.MENU:
		return p.menuStmt()
	case lexer.ITEM:
		return p.itemStmt()
	case lexer.LBRACE:
		return p.block("block")
	case lexer.ELSE:
		// Else without matching if
		return nil, p.errorUnexpected("statement", statementStarts...).help(
			"else must directly follow the body of an if statement",
			`if @ready { alert("go") } else { stop() }`)
	case lexer.RBRACE:
		return nil, p.errorUnexpected("statement", statementStarts...).help(
			"Remove the '}' or add the matching '{'", "")
	case lexer.EQUALS:
		return nil, p.errorUnexpected("statement", statementStarts...).help(
			"Only identifiers and @variables can be assigned to",
			"@total = 0")
	case lexer.COLON:
		return nil, p.errorUnexpected("statement", statementStarts...).help(
			"Type annotations follow an @variable",
			"@count: number")
	}

	if startsExpression(tok.Type) {
		return p.expressionStatement()
	}
	return nil, p.errorUnexpected("statement", statementStarts...)
}

// pragma parses a directive and its value: #include 'actions/scripting'
func (p *parser) pragma() (*ast.Node, error) {
	p.recordDebugEvent("enter_pragma", p.current().Text)

	directive := p.advance()

	var value *ast.Node
	tok := p.current()
	switch tok.Type {
	case lexer.STRING, lexer.RAW_STRING:
		str, err := p.stringLiteral()
		if err != nil {
			return nil, err
		}
		value = str
	case lexer.IDENTIFIER:
		value = p.leaf(ast.KindIdentifier, p.advance())
	case lexer.KEYWORD:
		value = p.leaf(ast.KindKeyword, p.advance())
	case lexer.TYPE:
		value = p.leaf(ast.KindType, p.advance())
	default:
		return nil, p.errorExpected(directive.Text+" directive", pragmaValues...).help(
			"Give the directive a value",
			directive.Text+" 'value'")
	}

	return ast.New(ast.KindPragma, p.spanFrom(directive), "",
		ast.Named(ast.FieldName, p.leaf(ast.KindDirective, directive)),
		ast.Named(ast.FieldValue, value),
	), nil
}

// assignment parses [const] (@name | name) = expression
func (p *parser) assignment() (*ast.Node, error) {
	p.recordDebugEvent("enter_assignment", "parsing assignment")

	start := p.current()

	var modifier *ast.Node
	if p.at(lexer.CONST) {
		modifier = p.leaf(ast.KindModifier, p.advance())
	}

	var name *ast.Node
	switch p.current().Type {
	case lexer.VARIABLE:
		name = p.leaf(ast.KindVariable, p.advance())
	case lexer.IDENTIFIER:
		name = p.leaf(ast.KindIdentifier, p.advance())
	default:
		return nil, p.errorExpected("const assignment", lexer.VARIABLE, lexer.IDENTIFIER).help(
			"Name the constant after 'const'",
			"const @limit = 10")
	}

	if _, err := p.expect(lexer.EQUALS, "assignment"); err != nil {
		return nil, err
	}

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	return ast.New(ast.KindAssignment, p.spanFrom(start), "",
		ast.Named(ast.FieldModifier, modifier),
		ast.Named(ast.FieldName, name),
		ast.Named(ast.FieldValue, value),
	), nil
}

// declaration parses @name: type
func (p *parser) declaration() (*ast.Node, error) {
	p.recordDebugEvent("enter_declaration", "parsing declaration")

	nameTok := p.advance()
	p.advance() // ':'

	typeTok := p.current()
	if typeTok.Type != lexer.TYPE {
		err := p.errorExpected("declaration", lexer.TYPE)
		types := lexer.Types()
		if s := lexer.Suggest(typeTok.Text, types); s != "" && typeTok.Type == lexer.IDENTIFIER {
			return nil, err.help(fmt.Sprintf("Did you mean '%s'?", s), nameTok.Text+": "+s)
		}
		return nil, err.help("Valid types are "+strings.Join(types, ", "), nameTok.Text+": text")
	}
	p.advance()

	if p.at(lexer.EQUALS) {
		err := p.syntaxError(p.current().Pos(), "a declaration cannot have a value", "declaration")
		return nil, err.help(
			"Declare the type alone, or assign without a type annotation",
			nameTok.Text+" = ...")
	}

	return ast.New(ast.KindDeclaration, p.spanFrom(nameTok), "",
		ast.Named(ast.FieldName, p.leaf(ast.KindVariable, nameTok)),
		ast.Named(ast.FieldType, p.leaf(ast.KindType, typeTok)),
	), nil
}

// ifStmt parses if condition body [else body]. The else is consumed by the
// innermost if that is still open, which binds it to the nearest unmatched
// if.
func (p *parser) ifStmt() (*ast.Node, error) {
	p.recordDebugEvent("enter_if", "parsing if statement")

	ifTok := p.advance()

	if !startsExpression(p.current().Type) {
		return nil, p.errorExpectedExpression("if condition").help(
			"Add a condition after 'if'",
			`if @count > 0 { alert("positive") }`)
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}

	consequence, err := p.body("if statement")
	if err != nil {
		return nil, err
	}

	var alternative *ast.Node
	if p.at(lexer.ELSE) {
		p.advance()
		alternative, err = p.body("else clause")
		if err != nil {
			return nil, err
		}
	}

	p.recordDebugEvent("exit_if", "if statement complete")
	return ast.New(ast.KindIfStatement, p.spanFrom(ifTok), "",
		ast.Named(ast.FieldCondition, condition),
		ast.Named(ast.FieldConsequence, consequence),
		ast.Named(ast.FieldAlternative, alternative),
	), nil
}

// forStmt parses for name in iterable body
func (p *parser) forStmt() (*ast.Node, error) {
	p.recordDebugEvent("enter_for", "parsing for loop")

	forTok := p.advance()

	if !p.at(lexer.IDENTIFIER) {
		err := p.errorExpected("for loop", lexer.IDENTIFIER)
		if p.at(lexer.VARIABLE) {
			return nil, err.help("Loop variables are bare identifiers", "for entry in @list { alert(entry) }")
		}
		return nil, err.help("Name the loop variable after 'for'", "for entry in @list { alert(entry) }")
	}
	variable := p.leaf(ast.KindIdentifier, p.advance())

	if _, err := p.expect(lexer.IN, "for loop"); err != nil {
		return nil, err
	}

	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}

	body, err := p.body("for loop")
	if err != nil {
		return nil, err
	}

	return ast.New(ast.KindForStatement, p.spanFrom(forTok), "",
		ast.Named(ast.FieldVariable, variable),
		ast.Named(ast.FieldIterable, iterable),
		ast.Named(ast.FieldBody, body),
	), nil
}

// repeatStmt parses the three repeat forms with at most two tokens of
// lookahead:
//
//	repeat i for count body
//	repeat count body
//	repeat { ... }
//
// An identifier directly followed by '{' is rejected: it is either a count
// or a loop variable missing its 'for'.
func (p *parser) repeatStmt() (*ast.Node, error) {
	p.recordDebugEvent("enter_repeat", "parsing repeat")

	repeatTok := p.advance()

	var variable, count *ast.Node
	cur := p.current()
	switch {
	case cur.Type == lexer.IDENTIFIER && p.peek(1).Type == lexer.FOR:
		variable = p.leaf(ast.KindIdentifier, p.advance())
		p.advance() // 'for'
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		count = c

	case cur.Type == lexer.IDENTIFIER && p.peek(1).Type == lexer.LBRACE:
		next := p.peek(1)
		err := p.syntaxError(next.Pos(),
			fmt.Sprintf("expected 'for' after repeat variable '%s', got '{'", cur.Text),
			"repeat statement", lexer.FOR)
		err.Got = lexer.LBRACE
		return nil, err.help(
			"Add 'for' and a count, or use an @variable as the count",
			fmt.Sprintf("repeat %s for 5 { ... }", cur.Text))

	case cur.Type == lexer.LBRACE:
		// Bare form: the braces are the body

	case startsExpression(cur.Type):
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		count = c

	default:
		return nil, p.errorExpected("repeat statement", lexer.IDENTIFIER, lexer.NUMBER, lexer.LBRACE).help(
			"Give repeat a count, a variable and count, or just a body",
			"repeat i for 3 { alert(i) }")
	}

	body, err := p.body("repeat statement")
	if err != nil {
		return nil, err
	}

	return ast.New(ast.KindRepeatStatement, p.spanFrom(repeatTok), "",
		ast.Named(ast.FieldVariable, variable),
		ast.Named(ast.FieldCount, count),
		ast.Named(ast.FieldBody, body),
	), nil
}

// menuStmt parses menu [title] { items }. The body always uses braces, so
// '{' right after 'menu' starts the body, never a dictionary title.
func (p *parser) menuStmt() (*ast.Node, error) {
	p.recordDebugEvent("enter_menu", "parsing menu")

	menuTok := p.advance()

	var title *ast.Node
	if !p.at(lexer.LBRACE) {
		if !startsExpression(p.current().Type) {
			return nil, p.errorExpected("menu statement", lexer.STRING, lexer.LBRACE).help(
				"Follow 'menu' with an optional title and a braced body",
				`menu "Choose" { item "A": alert("a") }`)
		}
		t, err := p.expression()
		if err != nil {
			return nil, err
		}
		title = t
	}

	if !p.at(lexer.LBRACE) {
		return nil, p.errorExpected("menu body", lexer.LBRACE).help(
			"Menu bodies are always enclosed in braces",
			`menu "Choose" { item "A": alert("a") }`)
	}
	body, err := p.block("menu body")
	if err != nil {
		return nil, err
	}

	return ast.New(ast.KindMenuStatement, p.spanFrom(menuTok), "",
		ast.Named(ast.FieldTitle, title),
		ast.Named(ast.FieldBody, body),
	), nil
}

// itemStmt parses item title: body
func (p *parser) itemStmt() (*ast.Node, error) {
	p.recordDebugEvent("enter_item", "parsing menu item")

	itemTok := p.advance()

	if !startsExpression(p.current().Type) {
		return nil, p.errorExpected("menu item", lexer.STRING, lexer.RAW_STRING).help(
			"Every menu item needs a title",
			`item "Cancel": stop()`)
	}
	title, err := p.expression()
	if err != nil {
		return nil, err
	}

	if !p.at(lexer.COLON) {
		return nil, p.errorExpected("menu item", lexer.COLON).help(
			"Separate the item title from its body with ':'",
			`item "Cancel": stop()`)
	}
	p.advance()

	body, err := p.body("menu item")
	if err != nil {
		return nil, err
	}

	return ast.New(ast.KindItemStatement, p.spanFrom(itemTok), "",
		ast.Named(ast.FieldTitle, title),
		ast.Named(ast.FieldBody, body),
	), nil
}

// body parses the body of a control construct: a braced block, or a single
// statement. Braces here always open a block, never a dictionary.
func (p *parser) body(context string) (*ast.Node, error) {
	switch {
	case p.at(lexer.LBRACE):
		return p.block(context)
	case p.at(lexer.EOF), p.at(lexer.RBRACE):
		return nil, p.errorExpected(context+" body", lexer.LBRACE)
	default:
		return p.statement()
	}
}

// block parses { statements }
func (p *parser) block(context string) (*ast.Node, error) {
	p.recordDebugEvent("enter_block", context)

	open := p.advance() // '{'

	stmts, err := p.statements(true)
	if err != nil {
		return nil, err
	}

	if !p.at(lexer.RBRACE) {
		err := p.syntaxError(open.Pos(), "unterminated block", context, lexer.RBRACE)
		err.Note = fmt.Sprintf("the block opened at %s reaches the end of input", open.Pos())
		return nil, err.help("Add '}' to close the "+context, "")
	}
	p.advance()

	p.recordDebugEvent("exit_block", context)
	return ast.New(ast.KindBlock, p.spanFrom(open), "", stmts...), nil
}

// expressionStatement wraps an expression evaluated for its effect
func (p *parser) expressionStatement() (*ast.Node, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.KindExpressionStatement, expr.Span(), "", ast.Unnamed(expr)), nil
}
