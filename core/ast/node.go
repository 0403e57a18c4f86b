// Package ast defines the immutable syntax tree produced by the Cherri parser.
//
// The tree is a compact tagged union: every node carries a Kind, a source
// Span, the source text for leaves, and an ordered list of children, each
// optionally labeled with a Field. Nodes are built bottom-up with New and
// never change afterwards; consumers traverse them through the read-only
// accessors.
package ast

import "fmt"

// Kind identifies the grammar rule a node was produced by
//
// IMPORTANT: add new kinds at the END of the enum. Encoded trees store kind
// names, but tests and tooling index tables by the numeric value.
type Kind uint16

const (
	KindInvalid Kind = iota

	KindSourceFile

	// Statements
	KindPragma
	KindAssignment
	KindDeclaration
	KindIfStatement
	KindForStatement
	KindRepeatStatement
	KindMenuStatement
	KindItemStatement
	KindBlock
	KindExpressionStatement

	// Expressions
	KindBinaryExpression
	KindCallExpression
	KindParenthesizedExpression
	KindDictionary
	KindDictionaryPair
	KindArguments

	// Literals and names
	KindIdentifier
	KindVariable
	KindNumber
	KindString
	KindStringFragment
	KindInterpolation
	KindBoolean
	KindBuiltinConstant
	KindKeyword
	KindType

	// Anonymous leaves: printed as their quoted text
	KindDirective
	KindOperator
	KindModifier

	// Error recovery
	KindError
)

var kindNames = [...]string{
	KindInvalid:                 "invalid",
	KindSourceFile:              "source_file",
	KindPragma:                  "pragma",
	KindAssignment:              "assignment",
	KindDeclaration:             "declaration",
	KindIfStatement:             "if_statement",
	KindForStatement:            "for_statement",
	KindRepeatStatement:         "repeat_statement",
	KindMenuStatement:           "menu_statement",
	KindItemStatement:           "item_statement",
	KindBlock:                   "block",
	KindExpressionStatement:     "expression_statement",
	KindBinaryExpression:        "binary_expression",
	KindCallExpression:          "call_expression",
	KindParenthesizedExpression: "parenthesized_expression",
	KindDictionary:              "dictionary",
	KindDictionaryPair:          "dictionary_pair",
	KindArguments:               "arguments",
	KindIdentifier:              "identifier",
	KindVariable:                "variable",
	KindNumber:                  "number",
	KindString:                  "string",
	KindStringFragment:          "string_fragment",
	KindInterpolation:           "interpolation",
	KindBoolean:                 "boolean",
	KindBuiltinConstant:         "builtin_constant",
	KindKeyword:                 "keyword",
	KindType:                    "type",
	KindDirective:               "directive",
	KindOperator:                "operator",
	KindModifier:                "modifier",
	KindError:                   "ERROR",
}

// String returns the grammar name of the kind ("if_statement").
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Anonymous reports whether the kind is a fixed-spelling leaf that prints as
// its quoted text rather than as a named node.
func (k Kind) Anonymous() bool {
	return k == KindDirective || k == KindOperator || k == KindModifier
}

// IsStatement reports whether nodes of this kind appear in statement
// position (source_file and block children).
func (k Kind) IsStatement() bool {
	switch k {
	case KindPragma, KindAssignment, KindDeclaration, KindIfStatement,
		KindForStatement, KindRepeatStatement, KindMenuStatement,
		KindItemStatement, KindBlock, KindExpressionStatement, KindError:
		return true
	}
	return false
}

// ParseKind returns the kind with the given grammar name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name && Kind(i) != KindInvalid {
			return Kind(i), true
		}
	}
	return KindInvalid, false
}

// Field labels a child's role within its parent
type Field uint8

const (
	FieldNone Field = iota
	FieldName
	FieldValue
	FieldCondition
	FieldConsequence
	FieldAlternative
	FieldVariable
	FieldIterable
	FieldCount
	FieldBody
	FieldTitle
	FieldKey
	FieldFunction
	FieldArguments
	FieldLeft
	FieldOperator
	FieldRight
	FieldType
	FieldModifier
)

var fieldNames = [...]string{
	FieldNone:        "",
	FieldName:        "name",
	FieldValue:       "value",
	FieldCondition:   "condition",
	FieldConsequence: "consequence",
	FieldAlternative: "alternative",
	FieldVariable:    "variable",
	FieldIterable:    "iterable",
	FieldCount:       "count",
	FieldBody:        "body",
	FieldTitle:       "title",
	FieldKey:         "key",
	FieldFunction:    "function",
	FieldArguments:   "arguments",
	FieldLeft:        "left",
	FieldOperator:    "operator",
	FieldRight:       "right",
	FieldType:        "type",
	FieldModifier:    "modifier",
}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField returns the field with the given label; "" is FieldNone.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return FieldNone, false
}

// Position is a source location.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, in runes
	Offset int // 0-based byte offset
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

// Cover returns the smallest span containing s and other.
func (s Span) Cover(other Span) Span {
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}
	return out
}

// Child is a construction-time pairing of a node with its field label.
type Child struct {
	Field Field
	Node  *Node
}

// Named labels n with field f.
func Named(f Field, n *Node) Child {
	return Child{Field: f, Node: n}
}

// Unnamed wraps n as an unlabeled child.
func Unnamed(n *Node) Child {
	return Child{Node: n}
}

// Node is an immutable syntax tree node.
type Node struct {
	kind     Kind
	span     Span
	text     string
	children []*Node
	fields   []Field // parallel to children
}

// New builds a node. Nil child nodes are skipped so optional parts can be
// passed unconditionally.
func New(kind Kind, span Span, text string, children ...Child) *Node {
	n := &Node{kind: kind, span: span, text: text}
	if len(children) > 0 {
		n.children = make([]*Node, 0, len(children))
		n.fields = make([]Field, 0, len(children))
		for _, c := range children {
			if c.Node == nil {
				continue
			}
			n.children = append(n.children, c.Node)
			n.fields = append(n.fields, c.Field)
		}
	}
	return n
}

// Leaf builds a childless node carrying its source text.
func Leaf(kind Kind, span Span, text string) *Node {
	return &Node{kind: kind, span: span, text: text}
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Span returns the node's source range.
func (n *Node) Span() Span { return n.span }

// Text returns the source text of a leaf: the identifier spelling, number
// lexeme, operator symbol, raw string fragment or full string lexeme.
func (n *Node) Text() string { return n.text }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FieldOf returns the label of the i-th child.
func (n *Node) FieldOf(i int) Field {
	if i < 0 || i >= len(n.fields) {
		return FieldNone
	}
	return n.fields[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildByField returns the first child labeled f, or nil.
func (n *Node) ChildByField(f Field) *Node {
	for i, cf := range n.fields {
		if cf == f {
			return n.children[i]
		}
	}
	return nil
}

// ChildrenByField returns every child labeled f in source order.
func (n *Node) ChildrenByField(f Field) []*Node {
	var out []*Node
	for i, cf := range n.fields {
		if cf == f {
			out = append(out, n.children[i])
		}
	}
	return out
}

// IsConst reports whether an assignment carries the const modifier.
func (n *Node) IsConst() bool {
	m := n.ChildByField(FieldModifier)
	return m != nil && m.text == "const"
}

// Operator returns the operator symbol of a binary expression, or "".
func (n *Node) Operator() string {
	if op := n.ChildByField(FieldOperator); op != nil {
		return op.text
	}
	return ""
}
