package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/cherri/runtime/lexer"
)

// parseError parses input, requires a *ParseError and returns it
func parseError(t *testing.T, input string, opts ...ParserOpt) *ParseError {
	t.Helper()
	tree, err := ParseString(input, opts...)
	require.Error(t, err, "input: %q", input)
	require.Nil(t, tree, "a failed parse without recovery returns no tree")

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	return perr
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		line       int
		column     int
		message    string
		suggestion string
	}{
		{
			name:    "unterminated block",
			input:   "{",
			line:    1,
			column:  1,
			message: "unterminated block",
		},
		{
			name:    "unterminated block on a later line",
			input:   "@a = 1\nif @a {\n  stop()\n",
			line:    2,
			column:  7,
			message: "unterminated block",
		},
		{
			name:    "repeat variable without for",
			input:   "repeat x { }",
			line:    1,
			column:  10,
			message: "expected 'for' after repeat variable 'x', got '{'",
		},
		{
			name:    "item without title",
			input:   "item : stop()",
			line:    1,
			column:  6,
			message: "expected string or single-quoted string, got ':'",
		},
		{
			name:    "item without colon",
			input:   `item "A" stop()`,
			line:    1,
			column:  10,
			message: "expected ':', got keyword 'stop'",
		},
		{
			name:    "trailing comma in call",
			input:   "f(1,)",
			line:    1,
			column:  5,
			message: "trailing comma in argument list",
		},
		{
			name:    "unterminated argument list",
			input:   "f(1, 2",
			line:    1,
			column:  2,
			message: "unterminated argument list",
		},
		{
			name:    "trailing comma in dictionary",
			input:   `@d = {"a": 1,}`,
			line:    1,
			column:  14,
			message: "trailing comma in dictionary",
		},
		{
			name:    "dictionary pair without colon",
			input:   `@d = {"a" 1}`,
			line:    1,
			column:  11,
			message: "expected ':', got number '1'",
		},
		{
			name:       "declaration type typo",
			input:      "@x: numbr",
			line:       1,
			column:     5,
			message:    "expected type name, got identifier 'numbr'",
			suggestion: "Did you mean 'number'?",
		},
		{
			name:    "declaration with value",
			input:   "@x: number = 5",
			line:    1,
			column:  12,
			message: "a declaration cannot have a value",
		},
		{
			name:       "else without if",
			input:      "else { }",
			line:       1,
			column:     1,
			message:    "unexpected 'else' in statement",
			suggestion: "else must directly follow the body of an if statement",
		},
		{
			name:       "unary minus",
			input:      "x = -5",
			line:       1,
			column:     5,
			message:    "expected expression, got '-'",
			suggestion: "There is no unary minus; subtract from zero instead",
		},
		{
			name:    "if without condition",
			input:   "if = 1 { }",
			line:    1,
			column:  4,
			message: "expected expression, got '='",
		},
		{
			name:    "for with variable loop name",
			input:   "for @x in list { }",
			line:    1,
			column:  5,
			message: "expected identifier, got @variable '@x'",
		},
		{
			name:    "missing body at end of input",
			input:   "for x in list",
			line:    1,
			column:  14,
			message: "expected '{', got end of input",
		},
		{
			name:    "menu without braces",
			input:   `menu "Pick" item "A": stop()`,
			line:    1,
			column:  13,
			message: "expected '{', got 'item'",
		},
		{
			name:    "empty interpolation",
			input:   `"a{}b"`,
			line:    1,
			column:  4,
			message: "empty interpolation",
		},
		{
			name:    "two expressions in one interpolation",
			input:   `"a{1 2}"`,
			line:    1,
			column:  6,
			message: "unexpected number '2' in string interpolation",
		},
		{
			name:    "interpolation error on a later line",
			input:   "@a = 1\n@s = \"x{@a +}\"",
			line:    2,
			column:  13,
			message: "expected expression, got end of input",
		},
		{
			name:    "dictionary in body position",
			input:   `if true { "k": 1 }`,
			line:    1,
			column:  14,
			message: "unexpected ':' in statement",
		},
		{
			name:    "illegal character",
			input:   "@x = 5 $",
			line:    1,
			column:  8,
			message: `unexpected illegal character "$" in statement`,
		},
		{
			name:    "stray closing brace",
			input:   "stop() }",
			line:    1,
			column:  8,
			message: "unexpected '}' in statement",
		},
		{
			name:    "pragma without value",
			input:   "#include 5",
			line:    1,
			column:  10,
			message: "expected string, single-quoted string, identifier, keyword or type name, got number '5'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseError(t, tt.input)
			assert.Equal(t, ErrorSyntax, perr.Kind)
			assert.ErrorIs(t, perr, ErrSyntax)
			assert.NotErrorIs(t, perr, ErrLex)
			assert.Equal(t, tt.line, perr.Position.Line, "line")
			assert.Equal(t, tt.column, perr.Position.Column, "column")
			assert.Equal(t, tt.message, perr.Message)
			if tt.suggestion != "" {
				assert.Equal(t, tt.suggestion, perr.Suggestion)
			}
		})
	}
}

func TestExpectedSets(t *testing.T) {
	perr := parseError(t, "repeat x { }")
	assert.Equal(t, []lexer.TokenType{lexer.FOR}, perr.Expected)
	assert.Equal(t, lexer.LBRACE, perr.Got)

	perr = parseError(t, "if true {")
	assert.Equal(t, []lexer.TokenType{lexer.RBRACE}, perr.Expected)
	assert.Equal(t, "if statement", perr.Context)
	assert.NotEmpty(t, perr.Note)

	perr = parseError(t, "x = )")
	assert.Contains(t, perr.Expected, lexer.NUMBER)
	assert.Contains(t, perr.Expected, lexer.LBRACE)
	assert.Equal(t, lexer.RPAREN, perr.Got)
}

func TestLexErrorsSurface(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		column  int
		message string
	}{
		{
			name:    "unterminated string at start",
			input:   `"abc`,
			line:    1,
			column:  1,
			message: "unterminated string",
		},
		{
			name:    "unterminated string in assignment",
			input:   `x = "abc`,
			line:    1,
			column:  5,
			message: "unterminated string",
		},
		{
			name:    "unterminated string behind lookahead",
			input:   `@a = 1 + 2` + "\n" + `@b = "open`,
			line:    2,
			column:  6,
			message: "unterminated string",
		},
		{
			name:    "unknown pragma",
			input:   "#inclde 'x'",
			line:    1,
			column:  1,
			message: "unknown pragma directive '#inclde'",
		},
		{
			name:    "broken string inside interpolation",
			input:   `"{"open}"`,
			line:    1,
			column:  3,
			message: "unterminated string",
		},
		{
			name:    "nested brace in interpolation",
			input:   `"a{ {} }"`,
			line:    1,
			column:  5,
			message: "nested '{' inside string interpolation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseError(t, tt.input)
			assert.Equal(t, ErrorLex, perr.Kind)
			assert.ErrorIs(t, perr, ErrLex)
			assert.NotErrorIs(t, perr, ErrSyntax)
			assert.Equal(t, tt.line, perr.Position.Line, "line")
			assert.Equal(t, tt.column, perr.Position.Column, "column")
			assert.Equal(t, tt.message, perr.Message)

			var lexErr *lexer.Error
			require.True(t, errors.As(perr, &lexErr), "lex errors unwrap to *lexer.Error")
			assert.Equal(t, perr.Position, lexErr.Position)
		})
	}

	perr := parseError(t, "#inclde 'x'")
	assert.Equal(t, "Did you mean '#include'?", perr.Suggestion)
}

func TestIllegalCharactersAreSyntaxErrors(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("$"))
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, lexer.ILLEGAL, tokens[0].Type)

	perr := parseError(t, "@a = 1 $ 2")
	assert.Equal(t, ErrorSyntax, perr.Kind)
	assert.ErrorIs(t, perr, ErrSyntax)
	assert.NotErrorIs(t, perr, ErrLex)
	assert.Equal(t, 8, perr.Position.Column)
	assert.Equal(t, lexer.ILLEGAL, perr.Got)

	// Unlike lex errors they are recoverable
	tree, err := ParseString("@a = 1 $ 2\n@b = 3", WithRecovery())
	require.Error(t, err)
	require.NotNil(t, tree)
	require.Len(t, tree.Errors, 1)
	assert.Equal(t, "(source_file (assignment name: (variable) value: (number)) (ERROR) (assignment name: (variable) value: (number)))", tree.Root.String())
	assert.Equal(t, "$ 2", tree.Root.Child(1).Text())
}

func TestRecursionLimit(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)

	perr := parseError(t, "@x = "+deep)
	assert.Equal(t, ErrorRecursionLimit, perr.Kind)
	assert.ErrorIs(t, perr, ErrRecursionLimit)
	assert.Equal(t, "nesting too deep", perr.Message)

	perr = parseError(t, "@x = "+strings.Repeat("(", 20)+"1"+strings.Repeat(")", 20), WithMaxDepth(10))
	assert.ErrorIs(t, perr, ErrRecursionLimit)
	assert.Contains(t, perr.Suggestion, "10")

	// Recovery never swallows the limit
	_, err := ParseString("@x = "+deep, WithRecovery())
	assert.ErrorIs(t, err, ErrRecursionLimit)

	nested := strings.Repeat("if true { ", 300) + strings.Repeat("}", 300)
	_, err = ParseString(nested)
	assert.ErrorIs(t, err, ErrRecursionLimit)

	shallow := strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50)
	tree, err := ParseString("@x = " + shallow)
	require.NoError(t, err)
	assert.Greater(t, tree.Root.ChildCount(), 0)
}

func TestErrorFormatting(t *testing.T) {
	perr := parseError(t, "x = )", WithFilename("main.cherri"))

	expected := "syntax error: expected expression, got ')'\n" +
		" --> main.cherri:1:5\n" +
		"  |\n" +
		"1 | x = )\n" +
		"  |     ^"
	assert.Equal(t, expected, perr.Error())
	assert.Equal(t, "main.cherri:1:5: syntax error: expected expression, got ')'", perr.Summary())
	assert.Equal(t, "main.cherri", perr.Filename)
}

func TestErrorFormattingWithHelp(t *testing.T) {
	perr := parseError(t, "@a = 1\n\tf(1,)")

	msg := perr.Error()
	assert.True(t, strings.HasPrefix(msg, "syntax error: trailing comma in argument list\n --> 2:6\n"), msg)
	assert.Contains(t, msg, "2 | \tf(1,)\n  | \t    ^")
	assert.Contains(t, msg, "\n   = help: Remove the ',' before ')'")
	assert.Contains(t, msg, "\n   = example: f(a, b)")
	assert.Equal(t, "2:6: syntax error: trailing comma in argument list", perr.Summary())
}

func TestErrorFormattingWideGutter(t *testing.T) {
	input := strings.Repeat("stop()\n", 11) + "@x = )"
	perr := parseError(t, input)

	assert.Equal(t, 12, perr.Position.Line)
	assert.Contains(t, perr.Error(), "\n  --> 12:6\n   |\n12 | @x = )\n   |      ^")
}

func TestParseExpressionErrors(t *testing.T) {
	_, err := ParseExpression([]byte("1 2"))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unexpected number '2' in expression", perr.Message)
	assert.Equal(t, 3, perr.Position.Column)

	_, err = ParseExpression([]byte(`1 + "x`))
	assert.ErrorIs(t, err, ErrLex)

	_, err = ParseExpression([]byte(""))
	assert.ErrorIs(t, err, ErrSyntax)
}
