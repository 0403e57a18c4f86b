package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	root := sampleTree()

	data, err := MarshalJSON(root)
	require.NoError(t, err)
	require.NoError(t, ValidateJSON(data))

	decoded, err := UnmarshalJSON(data)
	require.NoError(t, err)
	assert.True(t, Equal(root, decoded))
	assert.Equal(t, root.Child(0).ChildByField(FieldName).Span(), decoded.Child(0).ChildByField(FieldName).Span())
}

func TestJSONShape(t *testing.T) {
	data, err := MarshalJSON(Leaf(KindNumber, span(0, 2), "42"))
	require.NoError(t, err)

	expected := `{
  "kind": "number",
  "text": "42",
  "span": {
    "start": {
      "line": 1,
      "column": 1,
      "offset": 0
    },
    "end": {
      "line": 1,
      "column": 3,
      "offset": 2
    }
  }
}`
	assert.Equal(t, expected, string(data))
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{
			name:  "minimal tree",
			input: `{"kind": "source_file"}`,
			valid: true,
		},
		{
			name:  "error node",
			input: `{"kind": "source_file", "children": [{"node": {"kind": "ERROR", "text": "@a = )"}}]}`,
			valid: true,
		},
		{
			name:  "unknown kind",
			input: `{"kind": "lambda"}`,
		},
		{
			name:  "unknown field label",
			input: `{"kind": "block", "children": [{"field": "then", "node": {"kind": "number"}}]}`,
		},
		{
			name:  "extra property",
			input: `{"kind": "number", "value": 1}`,
		},
		{
			name:  "zero line",
			input: `{"kind": "number", "span": {"start": {"line": 0, "column": 1, "offset": 0}, "end": {"line": 1, "column": 1, "offset": 0}}}`,
		},
		{
			name:  "child without node",
			input: `{"kind": "block", "children": [{"field": "body"}]}`,
		},
		{
			name:  "not JSON",
			input: `{"kind": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.input))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(Schema()), &doc))
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
}
