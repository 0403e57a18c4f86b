package ast

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, col, off int) Position {
	return Position{Line: line, Column: col, Offset: off}
}

func span(startOff, endOff int) Span {
	return Span{Start: pos(1, startOff+1, startOff), End: pos(1, endOff+1, endOff)}
}

// sampleTree builds the tree of "const @x = 1 + 2"
func sampleTree() *Node {
	left := Leaf(KindNumber, span(11, 12), "1")
	op := Leaf(KindOperator, span(13, 14), "+")
	right := Leaf(KindNumber, span(15, 16), "2")
	sum := New(KindBinaryExpression, span(11, 16), "",
		Named(FieldLeft, left), Named(FieldOperator, op), Named(FieldRight, right))
	assign := New(KindAssignment, span(0, 16), "",
		Named(FieldModifier, Leaf(KindModifier, span(0, 5), "const")),
		Named(FieldName, Leaf(KindVariable, span(6, 8), "@x")),
		Named(FieldValue, sum))
	return New(KindSourceFile, span(0, 16), "", Unnamed(assign))
}

func TestKindNames(t *testing.T) {
	for k := KindSourceFile; k <= KindError; k++ {
		name := k.String()
		require.NotEmpty(t, name, "kind %d has no name", int(k))
		parsed, ok := ParseKind(name)
		require.True(t, ok, "ParseKind(%q)", name)
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseKind("invalid")
	assert.False(t, ok, "the invalid kind is never parsed")
	_, ok = ParseKind("while_statement")
	assert.False(t, ok)
	assert.Equal(t, "Kind(999)", Kind(999).String())

	assert.True(t, KindOperator.Anonymous())
	assert.False(t, KindNumber.Anonymous())
	assert.True(t, KindError.IsStatement())
	assert.False(t, KindDictionary.IsStatement())
}

func TestFieldNames(t *testing.T) {
	for f := FieldName; f <= FieldModifier; f++ {
		parsed, ok := ParseField(f.String())
		require.True(t, ok, "ParseField(%q)", f.String())
		assert.Equal(t, f, parsed)
	}
	none, ok := ParseField("")
	assert.True(t, ok)
	assert.Equal(t, FieldNone, none)

	_, ok = ParseField("else")
	assert.False(t, ok)
}

func TestNewSkipsNilChildren(t *testing.T) {
	n := New(KindIfStatement, Span{}, "",
		Named(FieldCondition, Leaf(KindBoolean, Span{}, "true")),
		Named(FieldConsequence, New(KindBlock, Span{}, "")),
		Named(FieldAlternative, nil))

	assert.Equal(t, 2, n.ChildCount())
	assert.Nil(t, n.ChildByField(FieldAlternative))
	assert.Equal(t, FieldConsequence, n.FieldOf(1))
	assert.Nil(t, n.Child(2))
	assert.Equal(t, FieldNone, n.FieldOf(-1))
}

func TestAccessors(t *testing.T) {
	root := sampleTree()
	assign := root.Child(0)

	assert.True(t, assign.IsConst())
	assert.Equal(t, "@x", assign.ChildByField(FieldName).Text())

	sum := assign.ChildByField(FieldValue)
	assert.Equal(t, "+", sum.Operator())
	assert.Equal(t, "", assign.Operator())
	assert.Len(t, sum.ChildrenByField(FieldLeft), 1)

	children := root.Children()
	children[0] = nil
	assert.NotNil(t, root.Child(0), "Children returns a copy")
}

func TestSpanCover(t *testing.T) {
	a := span(4, 8)
	b := span(2, 6)
	assert.Equal(t, span(2, 8), a.Cover(b))
	assert.Equal(t, span(2, 8), b.Cover(a))
	assert.Equal(t, a, a.Cover(span(5, 6)))
}

func TestString(t *testing.T) {
	expected := `(source_file (assignment modifier: "const" name: (variable) value: (binary_expression left: (number) operator: "+" right: (number))))`
	if diff := cmp.Diff(expected, sampleTree().String()); diff != "" {
		t.Errorf("S-expression mismatch (-expected +actual):\n%s", diff)
	}

	var nilNode *Node
	assert.Equal(t, "()", nilNode.String())
	assert.Equal(t, "(ERROR)", Leaf(KindError, Span{}, "@x = )").String())
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sampleTree()))

	expected := `source_file [1:1-1:17]
  assignment [1:1-1:17]
    modifier: modifier [1:1-1:6] "const"
    name: variable [1:7-1:9] "@x"
    value: binary_expression [1:12-1:17]
      left: number [1:12-1:13] "1"
      operator: operator [1:14-1:15] "+"
      right: number [1:16-1:17] "2"
`
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("dump mismatch (-expected +actual):\n%s", diff)
	}
}

func TestWalk(t *testing.T) {
	var kinds []string
	var depths []int
	Walk(sampleTree(), func(n *Node, depth int) bool {
		kinds = append(kinds, n.Kind().String())
		depths = append(depths, depth)
		return n.Kind() != KindBinaryExpression
	})

	assert.Equal(t, []string{"source_file", "assignment", "modifier", "variable", "binary_expression"}, kinds)
	assert.Equal(t, []int{0, 1, 2, 2, 2}, depths)

	assert.Equal(t, 8, Count(sampleTree()))
	assert.Equal(t, 4, Depth(sampleTree()))
	assert.Equal(t, 0, Depth(nil))
	assert.Equal(t, 0, Count(nil))
}

func TestEqual(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	assert.True(t, Equal(a, b))

	moved := New(KindSourceFile, Span{}, "", Unnamed(b.Child(0)))
	assert.True(t, Equal(a, moved), "spans are ignored")

	other := New(KindSourceFile, Span{}, "", Unnamed(Leaf(KindNumber, Span{}, "1")))
	assert.False(t, Equal(a, other))

	relabeled := New(KindBinaryExpression, Span{}, "",
		Named(FieldRight, Leaf(KindNumber, Span{}, "1")))
	labeled := New(KindBinaryExpression, Span{}, "",
		Named(FieldLeft, Leaf(KindNumber, Span{}, "1")))
	assert.False(t, Equal(relabeled, labeled), "field labels matter")

	assert.False(t, Equal(Leaf(KindNumber, Span{}, "1"), Leaf(KindNumber, Span{}, "2")), "leaf text matters")
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestErrors(t *testing.T) {
	e1 := Leaf(KindError, Span{}, "@a = )")
	e2 := Leaf(KindError, Span{}, "}")
	root := New(KindSourceFile, Span{}, "",
		Unnamed(e1),
		Unnamed(New(KindBlock, Span{}, "", Unnamed(e2))))

	assert.Equal(t, []*Node{e1, e2}, Errors(root))
	assert.Empty(t, Errors(sampleTree()))
}
