package corpus

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/core/invariant"
)

// ParseFunc parses source into a tree. On failure it may still return a
// partial tree (error recovery) together with the error.
type ParseFunc func(source []byte) (*ast.Node, error)

// Result is the outcome of checking one case
type Result struct {
	Case  Case
	Got   string // normalized S-expression of the parsed tree
	Err   error
	Diff  string // go-cmp diff against Case.Expected, "" when equal
	Fault string // why the case failed, "" when it passed
}

// Passed reports whether the case met its expectations.
func (r Result) Passed() bool {
	return r.Fault == ""
}

// Check parses the case source and compares the tree with the expected
// S-expression.
func Check(c Case, parse ParseFunc) Result {
	invariant.NotNil(parse, "parse")
	root, err := parse([]byte(c.Source))
	res := Result{Case: c, Err: err}
	if root != nil {
		res.Got = Normalize(root.String())
	}

	switch {
	case c.Error && err == nil:
		res.Fault = "expected a parse error, got none"
		return res
	case !c.Error && err != nil:
		res.Fault = "unexpected parse error: " + err.Error()
		return res
	case c.Expected == "":
		return res
	case root == nil:
		res.Fault = "no tree to compare with the expected tree"
		return res
	}

	if diff := cmp.Diff(c.Expected, res.Got); diff != "" {
		res.Diff = diff
		res.Fault = "tree mismatch"
	}
	return res
}

// Run checks every case as a subtest named after the case.
func Run(t *testing.T, cases []Case, parse ParseFunc) {
	t.Helper()
	if len(cases) == 0 {
		t.Fatal("no corpus cases")
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			if c.Skip {
				t.Skipf("%s: skipped", c)
			}
			res := Check(c, parse)
			if res.Passed() {
				return
			}
			if res.Diff != "" {
				t.Errorf("%s: %s (-expected +actual):\n%s", c, res.Fault, res.Diff)
				return
			}
			t.Errorf("%s: %s\nsource:\n%s", c, res.Fault, c.Source)
		})
	}
}
