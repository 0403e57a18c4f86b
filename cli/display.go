package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/opal-lang/cherri/core/ast"
)

// Output formats of cherri parse
const (
	FormatSexp = "sexp"
	FormatDump = "dump"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

var formats = []string{FormatSexp, FormatDump, FormatJSON, FormatCBOR}

func isFormat(name string) bool {
	return slices.Contains(formats, name)
}

// DisplayTree writes root to w in the given format. JSON output is checked
// against the tree schema when validate is set.
func DisplayTree(w io.Writer, root *ast.Node, format string, validate bool) error {
	switch format {
	case FormatSexp, "":
		_, err := fmt.Fprintln(w, root.String())
		return err

	case FormatDump:
		return ast.Dump(w, root)

	case FormatJSON:
		data, err := ast.MarshalJSON(root)
		if err != nil {
			return err
		}
		if validate {
			if err := ast.ValidateJSON(data); err != nil {
				return fmt.Errorf("JSON output failed schema validation: %w", err)
			}
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err

	case FormatCBOR:
		data, err := ast.MarshalCBOR(root)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return &CLIError{
		Message: fmt.Sprintf("unknown format %q", format),
		Hint:    fmt.Sprintf("Use one of %v", formats),
	}
}

// DisplayDigest writes the structural digest of root.
func DisplayDigest(w io.Writer, root *ast.Node) error {
	digest, err := ast.Digest(root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, digest)
	return err
}
