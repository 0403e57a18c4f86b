package ast

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/tree.schema.json
var treeSchema string

// treeSchemaURL matches the $id of the embedded schema
const treeSchemaURL = "https://cherri.opal-lang.dev/schema/tree.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// MarshalJSON encodes n (spans included) as indented JSON.
func MarshalJSON(n *Node) ([]byte, error) {
	data, err := json.MarshalIndent(Encode(n), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("JSON encoding failed: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a tree produced by MarshalJSON.
func UnmarshalJSON(data []byte) (*Node, error) {
	var e Encoded
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return Decode(&e)
}

// Schema returns the JSON Schema (draft 2020-12) of the JSON tree encoding.
func Schema() string {
	return treeSchema
}

// ValidateJSON checks data against the tree schema.
func ValidateJSON(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(treeSchemaURL, bytes.NewReader([]byte(treeSchema))); err != nil {
			compileErr = fmt.Errorf("failed to load tree schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(treeSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile tree schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}
