package parser

import "github.com/opal-lang/cherri/runtime/lexer"

// Precedence is the binding strength of an operator class, low to high.
type Precedence int

const (
	PrecLowest Precedence = iota
	PrecAssignment
	PrecLogicalOr
	PrecLogicalAnd
	PrecEquality
	PrecRelational
	PrecSum
	PrecProduct
	PrecCall
)

func (p Precedence) String() string {
	switch p {
	case PrecLowest:
		return "lowest"
	case PrecAssignment:
		return "assignment"
	case PrecLogicalOr:
		return "logical-or"
	case PrecLogicalAnd:
		return "logical-and"
	case PrecEquality:
		return "equality"
	case PrecRelational:
		return "relational"
	case PrecSum:
		return "sum"
	case PrecProduct:
		return "product"
	case PrecCall:
		return "call"
	}
	return "unknown"
}

// BinaryPrecedence returns the precedence of a binary operator token. '='
// is not a binary operator: assignment only exists at statement level, and
// PrecAssignment is the floor expression parsing starts from.
func BinaryPrecedence(t lexer.TokenType) (Precedence, bool) {
	switch t {
	case lexer.OR_OR:
		return PrecLogicalOr, true
	case lexer.AND_AND:
		return PrecLogicalAnd, true
	case lexer.EQ_EQ, lexer.NOT_EQ:
		return PrecEquality, true
	case lexer.LT, lexer.LT_EQ, lexer.GT, lexer.GT_EQ:
		return PrecRelational, true
	case lexer.PLUS, lexer.MINUS:
		return PrecSum, true
	case lexer.MULTIPLY, lexer.DIVIDE:
		return PrecProduct, true
	default:
		return PrecLowest, false
	}
}
