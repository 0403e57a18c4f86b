package ast

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Encoded is the tagged-tree persistence form of a Node: the kind name,
// leaf text, optional span and the ordered, labeled children.
type Encoded struct {
	Kind     string         `cbor:"kind" json:"kind"`
	Text     string         `cbor:"text,omitempty" json:"text,omitempty"`
	Span     *EncodedSpan   `cbor:"span,omitempty" json:"span,omitempty"`
	Children []EncodedChild `cbor:"children,omitempty" json:"children,omitempty"`
}

// EncodedChild is one labeled child of an Encoded node.
type EncodedChild struct {
	Field string   `cbor:"field,omitempty" json:"field,omitempty"`
	Node  *Encoded `cbor:"node" json:"node"`
}

// EncodedSpan is the persisted form of Span.
type EncodedSpan struct {
	Start EncodedPosition `cbor:"start" json:"start"`
	End   EncodedPosition `cbor:"end" json:"end"`
}

// EncodedPosition is the persisted form of Position.
type EncodedPosition struct {
	Line   int `cbor:"line" json:"line"`
	Column int `cbor:"column" json:"column"`
	Offset int `cbor:"offset" json:"offset"`
}

// maxCBORNesting is the decoder's nesting limit. Every tree level costs up to
// three CBOR levels (node map, children array, child map).
const maxCBORNesting = 65535

var (
	codecOnce sync.Once
	encMode   cbor.EncMode
	decMode   cbor.DecMode
	codecErr  error
)

func cborModes() (cbor.EncMode, cbor.DecMode, error) {
	codecOnce.Do(func() {
		encMode, codecErr = cbor.CanonicalEncOptions().EncMode()
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create CBOR encoder: %w", codecErr)
			return
		}
		decMode, codecErr = cbor.DecOptions{MaxNestedLevels: maxCBORNesting}.DecMode()
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create CBOR decoder: %w", codecErr)
		}
	})
	return encMode, decMode, codecErr
}

// ErrInvalidEncoding is wrapped by every Decode failure.
var ErrInvalidEncoding = errors.New("invalid encoded tree")

// Encode converts n into its tagged-tree form, spans included.
func Encode(n *Node) *Encoded {
	return encode(n, true)
}

// EncodeShape converts n without spans. Two trees have equal shapes exactly
// when Equal reports true for them.
func EncodeShape(n *Node) *Encoded {
	return encode(n, false)
}

func encode(n *Node, withSpans bool) *Encoded {
	if n == nil {
		return nil
	}
	e := &Encoded{Kind: n.kind.String(), Text: n.text}
	if withSpans {
		e.Span = &EncodedSpan{
			Start: EncodedPosition(n.span.Start),
			End:   EncodedPosition(n.span.End),
		}
	}
	if len(n.children) > 0 {
		e.Children = make([]EncodedChild, len(n.children))
		for i, child := range n.children {
			e.Children[i] = EncodedChild{
				Field: n.fields[i].String(),
				Node:  encode(child, withSpans),
			}
		}
	}
	return e
}

// Decode rebuilds a Node from its tagged-tree form.
func Decode(e *Encoded) (*Node, error) {
	return decode(e, "$")
}

func decode(e *Encoded, path string) (*Node, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: %s: missing node", ErrInvalidEncoding, path)
	}
	kind, ok := ParseKind(e.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidEncoding, path, e.Kind)
	}
	var span Span
	if e.Span != nil {
		span = Span{Start: Position(e.Span.Start), End: Position(e.Span.End)}
	}

	children := make([]Child, 0, len(e.Children))
	for i, c := range e.Children {
		field, ok := ParseField(c.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s.children[%d]: unknown field %q", ErrInvalidEncoding, path, i, c.Field)
		}
		child, err := decode(c.Node, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, Named(field, child))
	}
	return New(kind, span, e.Text, children...), nil
}

// MarshalCBOR produces the deterministic (canonical) CBOR encoding of n.
func MarshalCBOR(n *Node) ([]byte, error) {
	return marshalCanonical(Encode(n))
}

// UnmarshalCBOR decodes a tree produced by MarshalCBOR.
func UnmarshalCBOR(data []byte) (*Node, error) {
	_, dm, err := cborModes()
	if err != nil {
		return nil, err
	}
	var e Encoded
	if err := dm.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return Decode(&e)
}

// Digest hashes the shape of n (spans excluded) with BLAKE2b-256.
// Structurally identical trees have identical digests regardless of the
// whitespace and comments in their sources.
// Returns "blake2b:<hex>".
func Digest(n *Node) (string, error) {
	data, err := marshalCanonical(EncodeShape(n))
	if err != nil {
		return "", fmt.Errorf("failed to encode tree for digest: %w", err)
	}
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("blake2b:%x", sum), nil
}

func marshalCanonical(e *Encoded) ([]byte, error) {
	em, _, err := cborModes()
	if err != nil {
		return nil, err
	}
	data, err := em.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}
