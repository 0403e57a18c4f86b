package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opal-lang/cherri/core/ast"
	"github.com/opal-lang/cherri/testing/corpus"
)

// parseCorpus adapts Parse to the corpus harness. Recovery stays off so
// that every error case fails the way a plain Parse call does.
func parseCorpus(source []byte) (*ast.Node, error) {
	tree, err := Parse(source)
	if tree == nil {
		return nil, err
	}
	return tree.Root, err
}

func TestCorpus(t *testing.T) {
	cases, err := corpus.LoadDir("testdata/corpus")
	require.NoError(t, err)
	corpus.Run(t, cases, parseCorpus)
}
