package lexer

import "fmt"

// Error is a malformed-token error: an unterminated string or comment, a
// dangling escape, a broken interpolation span or an unknown directive.
type Error struct {
	Position   Position
	Message    string
	Suggestion string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
}
