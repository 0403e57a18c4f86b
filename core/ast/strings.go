package ast

import "strings"

// Unescape decodes the escape sequences of a raw string fragment. The
// sequences \n, \t, \r and \0 map to control characters; any other escaped
// character stands for itself.
func Unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != '\\' || i+1 >= len(raw) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

// StringValue returns the literal value of a string node whose parts are all
// fragments, and false when it contains interpolation.
func StringValue(n *Node) (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	var b strings.Builder
	for _, part := range n.children {
		if part.kind != KindStringFragment {
			return "", false
		}
		b.WriteString(Unescape(part.text))
	}
	return b.String(), true
}
