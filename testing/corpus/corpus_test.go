package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/cherri/core/ast"
)

const sample = `==================
assignment
==================

@x = 5

---

(source_file
  (assignment
    name: (variable)
    value: (number)))

==================
broken value
:error
==================
@x = )
---

=====
skipped case
:skip
=====
anything
---
(source_file)
`

func TestParseFile(t *testing.T) {
	cases, err := ParseFile(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, "assignment", cases[0].Name)
	assert.Equal(t, 2, cases[0].Line)
	assert.Equal(t, "@x = 5", cases[0].Source)
	assert.Equal(t, "(source_file (assignment name: (variable) value: (number)))", cases[0].Expected)
	assert.False(t, cases[0].Error)

	assert.Equal(t, "broken value", cases[1].Name)
	assert.True(t, cases[1].Error)
	assert.Equal(t, "@x = )", cases[1].Source)
	assert.Empty(t, cases[1].Expected)

	assert.True(t, cases[2].Skip)
	assert.Equal(t, "(source_file)", cases[2].Expected)
}

func TestParseFileMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing separator", "===\nname\n===\n@x = 1\n"},
		{"missing name", "===\n===\n@x = 1\n---\n"},
		{"unknown attribute", "===\nname\n:sometimes\n===\n@x\n---\n"},
		{"two names", "===\nfirst\nsecond\n===\n@x\n---\n"},
		{"text before first case", "stray\n===\nname\n===\n@x\n---\n"},
		{"unterminated header", "===\nname\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(a)", "(a)"},
		{"( a  (b) )", "(a (b))"},
		{"(a\n\t  key: (b)\n  (c))\n", "(a key: (b) (c))"},
		{`(binary  operator: "+"   right: (n))`, `(binary operator: "+" right: (n))`},
		{`(x "a  b" "\"  )")`, `(x "a  b" "\"  )")`},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), "input: %q", tt.input)
	}
}

// fakeParse builds a fixed tree for "ok" sources and fails otherwise
func fakeParse(source []byte) (*ast.Node, error) {
	leaf := ast.Leaf(ast.KindNumber, ast.Span{}, "1")
	root := ast.New(ast.KindSourceFile, ast.Span{}, "",
		ast.Unnamed(ast.New(ast.KindExpressionStatement, ast.Span{}, "", ast.Unnamed(leaf))))
	if string(source) == "ok" {
		return root, nil
	}
	return root, errors.New("bad input")
}

func TestCheckRequiresParseFunc(t *testing.T) {
	assert.Panics(t, func() {
		Check(Case{Name: "nil parser", Source: "ok"}, nil)
	})
}

func TestCheck(t *testing.T) {
	const tree = "(source_file (expression_statement (number)))"

	res := Check(Case{Name: "match", Source: "ok", Expected: tree}, fakeParse)
	assert.True(t, res.Passed(), res.Fault)
	assert.Equal(t, tree, res.Got)

	res = Check(Case{Name: "mismatch", Source: "ok", Expected: "(source_file)"}, fakeParse)
	assert.False(t, res.Passed())
	assert.Equal(t, "tree mismatch", res.Fault)
	assert.NotEmpty(t, res.Diff)

	res = Check(Case{Name: "unexpected error", Source: "nope"}, fakeParse)
	assert.Contains(t, res.Fault, "bad input")

	res = Check(Case{Name: "missing error", Source: "ok", Error: true}, fakeParse)
	assert.Equal(t, "expected a parse error, got none", res.Fault)

	res = Check(Case{Name: "recovered tree", Source: "nope", Error: true, Expected: tree}, fakeParse)
	assert.True(t, res.Passed(), res.Fault)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("===\nsecond\n===\nok\n---\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("===\nfirst\n===\nok\n---\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	cases, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "first", cases[0].Name)
	assert.Equal(t, "second", cases[1].Name)
	assert.Equal(t, "a.txt:2: first", cases[0].String())

	Run(t, cases, fakeParse)

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("===\n===\n"), 0o644))
	_, err = LoadDir(dir)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "c.txt")
}
