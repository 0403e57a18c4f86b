package lexer

import (
	"fmt"
	"slices"
)

// TokenType represents lexical tokens of the Cherri surface grammar
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals and names
	IDENTIFIER // [A-Za-z_][A-Za-z0-9_]*
	VARIABLE   // @name
	NUMBER     // 12, 3.5
	STRING     // "text {interpolation}"
	RAW_STRING // 'text'
	BOOLEAN    // true, false

	// Reserved vocabulary
	KEYWORD  // action, nil, stop, askfor, ...
	TYPE     // text, number, bool, dictionary, ...
	CONSTANT // CurrentDate, Device, ShortcutInput, ...
	PRAGMA   // #include, #define, #import, #question

	// Structural keywords
	CONST  // const
	IF     // if
	ELSE   // else
	FOR    // for
	IN     // in
	REPEAT // repeat
	MENU   // menu
	ITEM   // item

	// Punctuation
	EQUALS // =
	COLON  // :
	COMMA  // ,
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }

	// Operators
	PLUS     // +
	MINUS    // -
	MULTIPLY // *
	DIVIDE   // /
	EQ_EQ    // ==
	NOT_EQ   // !=
	LT       // <
	GT       // >
	LT_EQ    // <=
	GT_EQ    // >=
	AND_AND  // &&
	OR_OR    // ||

	// Comments never reach the parser; they only appear as trivia.
	COMMENT
)

var tokenNames = [...]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	IDENTIFIER: "IDENTIFIER",
	VARIABLE:   "VARIABLE",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	RAW_STRING: "RAW_STRING",
	BOOLEAN:    "BOOLEAN",
	KEYWORD:    "KEYWORD",
	TYPE:       "TYPE",
	CONSTANT:   "CONSTANT",
	PRAGMA:     "PRAGMA",
	CONST:      "CONST",
	IF:         "IF",
	ELSE:       "ELSE",
	FOR:        "FOR",
	IN:         "IN",
	REPEAT:     "REPEAT",
	MENU:       "MENU",
	ITEM:       "ITEM",
	EQUALS:     "EQUALS",
	COLON:      "COLON",
	COMMA:      "COMMA",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	MULTIPLY:   "MULTIPLY",
	DIVIDE:     "DIVIDE",
	EQ_EQ:      "EQ_EQ",
	NOT_EQ:     "NOT_EQ",
	LT:         "LT",
	GT:         "GT",
	LT_EQ:      "LT_EQ",
	GT_EQ:      "GT_EQ",
	AND_AND:    "AND_AND",
	OR_OR:      "OR_OR",
	COMMENT:    "COMMENT",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Symbol returns the fixed spelling of punctuation, operators and structural
// keywords, or "" for tokens whose text varies.
func (t TokenType) Symbol() string {
	switch t {
	case CONST:
		return "const"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case FOR:
		return "for"
	case IN:
		return "in"
	case REPEAT:
		return "repeat"
	case MENU:
		return "menu"
	case ITEM:
		return "item"
	case EQUALS:
		return "="
	case COLON:
		return ":"
	case COMMA:
		return ","
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case MULTIPLY:
		return "*"
	case DIVIDE:
		return "/"
	case EQ_EQ:
		return "=="
	case NOT_EQ:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LT_EQ:
		return "<="
	case GT_EQ:
		return ">="
	case AND_AND:
		return "&&"
	case OR_OR:
		return "||"
	default:
		return ""
	}
}

// Describe returns a human-readable name for diagnostics: the quoted symbol
// for fixed tokens, a noun phrase otherwise.
func (t TokenType) Describe() string {
	if s := t.Symbol(); s != "" {
		return "'" + s + "'"
	}
	switch t {
	case EOF:
		return "end of input"
	case ILLEGAL:
		return "illegal character"
	case IDENTIFIER:
		return "identifier"
	case VARIABLE:
		return "@variable"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case RAW_STRING:
		return "single-quoted string"
	case BOOLEAN:
		return "boolean"
	case KEYWORD:
		return "keyword"
	case TYPE:
		return "type name"
	case CONSTANT:
		return "builtin constant"
	case PRAGMA:
		return "pragma directive"
	case COMMENT:
		return "comment"
	default:
		return t.String()
	}
}

// TokenClass is the coarse lexical category of a token.
type TokenClass int

const (
	ClassNone TokenClass = iota
	ClassIdentifier
	ClassAtVariable
	ClassNumber
	ClassStringLiteral
	ClassSingleQuotedString
	ClassKeyword
	ClassTypeKeyword
	ClassBuiltinConstant
	ClassBooleanLiteral
	ClassPunctuation
	ClassPragmaDirective
	ClassComment
)

func (c TokenClass) String() string {
	switch c {
	case ClassIdentifier:
		return "identifier"
	case ClassAtVariable:
		return "at-variable"
	case ClassNumber:
		return "number"
	case ClassStringLiteral:
		return "string-literal"
	case ClassSingleQuotedString:
		return "single-quoted-string"
	case ClassKeyword:
		return "keyword"
	case ClassTypeKeyword:
		return "type-keyword"
	case ClassBuiltinConstant:
		return "builtin-constant"
	case ClassBooleanLiteral:
		return "boolean-literal"
	case ClassPunctuation:
		return "punctuation"
	case ClassPragmaDirective:
		return "pragma-directive"
	case ClassComment:
		return "comment"
	default:
		return "none"
	}
}

// Class maps the token type onto its lexical category.
func (t TokenType) Class() TokenClass {
	switch t {
	case IDENTIFIER:
		return ClassIdentifier
	case VARIABLE:
		return ClassAtVariable
	case NUMBER:
		return ClassNumber
	case STRING:
		return ClassStringLiteral
	case RAW_STRING:
		return ClassSingleQuotedString
	case BOOLEAN:
		return ClassBooleanLiteral
	case KEYWORD, CONST, IF, ELSE, FOR, IN, REPEAT, MENU, ITEM:
		return ClassKeyword
	case TYPE:
		return ClassTypeKeyword
	case CONSTANT:
		return ClassBuiltinConstant
	case PRAGMA:
		return ClassPragmaDirective
	case COMMENT:
		return ClassComment
	case EOF, ILLEGAL:
		return ClassNone
	default:
		return ClassPunctuation
	}
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number (runes)
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

// TriviaKind classifies skipped source text.
type TriviaKind int

const (
	TriviaWhitespace TriviaKind = iota
	TriviaLineComment
	TriviaBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaLineComment:
		return "line_comment"
	case TriviaBlockComment:
		return "block_comment"
	default:
		return "whitespace"
	}
}

// Trivia is whitespace or a comment preceding a token.
type Trivia struct {
	Kind TriviaKind
	Text string
	Span Span
}

// Token represents a lexical token. Tokens are values and never modified
// after the lexer returns them.
type Token struct {
	Type TokenType
	Text string // exact lexeme, quotes included for strings
	Span Span

	// Leading holds the whitespace and comments between the previous token
	// and this one.
	Leading []Trivia
}

// Pos returns the start position of the token.
func (t Token) Pos() Position {
	return t.Span.Start
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}

// keywords holds the reserved spellings that are not plain identifiers.
var keywords = map[string]TokenType{
	// Builtin keywords
	"name":         KEYWORD,
	"glyph":        KEYWORD,
	"from":         KEYWORD,
	"mac":          KEYWORD,
	"inputs":       KEYWORD,
	"noinput":      KEYWORD,
	"askfor":       KEYWORD,
	"getclipboard": KEYWORD,
	"list":         KEYWORD,
	"nil":          KEYWORD,
	"action":       KEYWORD,
	"stop":         KEYWORD,
	"makeVCard":    KEYWORD,
	"rawAction":    KEYWORD,
	"embedFile":    KEYWORD,
	"nothing":      KEYWORD,

	// Structural keywords
	"const":  CONST,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"repeat": REPEAT,
	"menu":   MENU,
	"item":   ITEM,
	"true":   BOOLEAN,
	"false":  BOOLEAN,

	// Type names
	"text":       TYPE,
	"number":     TYPE,
	"bool":       TYPE,
	"dictionary": TYPE,
	"array":      TYPE,
	"variable":   TYPE,
	"color":      TYPE,
	"float":      TYPE,

	// Builtin constants
	"CurrentDate":   CONSTANT,
	"Device":        CONSTANT,
	"RepeatIndex":   CONSTANT,
	"RepeatItem":    CONSTANT,
	"ShortcutInput": CONSTANT,
	"Ask":           CONSTANT,
}

// pragmas lists the directive spellings, '#' included.
var pragmas = []string{"#include", "#define", "#import", "#question"}

// LookupKeyword returns the token type for a word: a reserved type when the
// spelling is in the closed vocabulary, IDENTIFIER otherwise.
func LookupKeyword(word string) TokenType {
	if t, ok := keywords[word]; ok {
		return t
	}
	return IDENTIFIER
}

// Words returns the reserved spellings lexed as the given token type.
func Words(t TokenType) []string {
	var out []string
	for w, typ := range keywords {
		if typ == t {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// Keywords returns every keyword spelling, structural ones and the boolean
// literals included.
func Keywords() []string {
	var out []string
	for w, typ := range keywords {
		if typ.Class() == ClassKeyword || typ == BOOLEAN {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// Types returns the type-name vocabulary.
func Types() []string { return Words(TYPE) }

// Constants returns the builtin-constant vocabulary.
func Constants() []string { return Words(CONSTANT) }

// Pragmas returns the pragma directive spellings.
func Pragmas() []string {
	return append([]string(nil), pragmas...)
}

func isPragma(word string) bool {
	for _, p := range pragmas {
		if p == word {
			return true
		}
	}
	return false
}
