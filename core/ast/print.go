package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders the node as a tree-sitter style S-expression:
//
//	(source_file (assignment name: (variable) value: (number)))
//
// Named nodes print their kind, anonymous leaves (operators, modifiers,
// directives) print their quoted text, and field labels prefix labeled
// children. Leaf text of named nodes is omitted; use Dump to see it.
func (n *Node) String() string {
	if n == nil {
		return "()"
	}
	var b strings.Builder
	writeSExpr(&b, n)
	return b.String()
}

func writeSExpr(b *strings.Builder, n *Node) {
	if n.kind.Anonymous() {
		b.WriteString(strconv.Quote(n.text))
		return
	}
	b.WriteByte('(')
	b.WriteString(n.kind.String())
	for i, child := range n.children {
		b.WriteByte(' ')
		if f := n.fields[i]; f != FieldNone {
			b.WriteString(f.String())
			b.WriteString(": ")
		}
		writeSExpr(b, child)
	}
	b.WriteByte(')')
}

// Dump writes an indented tree with spans and leaf text, one node per line.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, FieldNone, 0)
}

func dump(w io.Writer, n *Node, field Field, depth int) error {
	var line strings.Builder
	line.WriteString(strings.Repeat("  ", depth))
	if field != FieldNone {
		line.WriteString(field.String())
		line.WriteString(": ")
	}
	line.WriteString(n.kind.String())
	fmt.Fprintf(&line, " [%d:%d-%d:%d]",
		n.span.Start.Line, n.span.Start.Column, n.span.End.Line, n.span.End.Column)
	if len(n.children) == 0 || n.kind == KindString {
		line.WriteByte(' ')
		line.WriteString(strconv.Quote(n.text))
	}
	line.WriteByte('\n')
	if _, err := io.WriteString(w, line.String()); err != nil {
		return err
	}
	for i, child := range n.children {
		if err := dump(w, child, n.fields[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}
