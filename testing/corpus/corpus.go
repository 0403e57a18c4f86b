// Package corpus reads grammar conformance cases in the tree-sitter corpus
// format and checks parsed trees against their expected S-expressions.
//
// A corpus file holds any number of cases:
//
//	==================
//	assignment
//	==================
//	@x = 5
//	---
//	(source_file (assignment name: (variable) value: (number)))
//
// Attribute lines starting with ':' may follow the case name. ":error"
// marks a case whose parse must fail; its expected tree, when present, is
// the tree returned alongside the error. ":skip" disables a case.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformed is returned for corpus text that does not follow the format.
var ErrMalformed = errors.New("malformed corpus")

// ================================================================================================
// CASES
// ================================================================================================

// Case is a single conformance case
type Case struct {
	Name     string
	File     string // corpus file the case was read from ("" for readers)
	Line     int    // line of the case name
	Source   string
	Expected string // normalized S-expression, "" when not given
	Error    bool   // parse must fail
	Skip     bool
}

// String identifies the case in test output: "file.txt:12: name".
func (c Case) String() string {
	if c.File != "" {
		return fmt.Sprintf("%s:%d: %s", filepath.Base(c.File), c.Line, c.Name)
	}
	return fmt.Sprintf("%d: %s", c.Line, c.Name)
}

// ================================================================================================
// READING
// ================================================================================================

type section int

const (
	sectionNone section = iota
	sectionHeader
	sectionSource
	sectionExpected
)

// ParseFile reads every case from r.
func ParseFile(r io.Reader) ([]Case, error) {
	var (
		cases    []Case
		current  *Case
		state    = sectionNone
		source   []string
		expected []string
		lineNo   int
	)

	finish := func() {
		if current == nil {
			return
		}
		current.Source = strings.TrimSpace(strings.Join(source, "\n"))
		current.Expected = Normalize(strings.Join(expected, "\n"))
		cases = append(cases, *current)
		current, source, expected = nil, nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		switch {
		case isRule(line, '=') && state != sectionHeader:
			finish()
			current = &Case{}
			state = sectionHeader

		case state == sectionHeader && isRule(line, '='):
			if current.Name == "" {
				return nil, fmt.Errorf("%w: line %d: case has no name", ErrMalformed, lineNo)
			}
			state = sectionSource

		case state == sectionHeader:
			if err := current.header(line, lineNo); err != nil {
				return nil, err
			}

		case state == sectionSource && isRule(line, '-'):
			state = sectionExpected

		case state == sectionSource:
			source = append(source, line)

		case state == sectionExpected:
			expected = append(expected, line)

		case strings.TrimSpace(line) != "":
			return nil, fmt.Errorf("%w: line %d: text outside of a case", ErrMalformed, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	switch state {
	case sectionHeader:
		return nil, fmt.Errorf("%w: line %d: unterminated case header", ErrMalformed, lineNo)
	case sectionSource:
		return nil, fmt.Errorf("%w: case %q has no '---' separator", ErrMalformed, current.Name)
	}
	finish()
	return cases, nil
}

// header applies one line of a case header: the name or an attribute.
func (c *Case) header(line string, lineNo int) error {
	text := strings.TrimSpace(line)
	switch {
	case text == "":
		return nil
	case strings.HasPrefix(text, ":"):
		switch text {
		case ":error":
			c.Error = true
		case ":skip":
			c.Skip = true
		default:
			return fmt.Errorf("%w: line %d: unknown attribute %s", ErrMalformed, lineNo, text)
		}
		return nil
	case c.Name != "":
		return fmt.Errorf("%w: line %d: case %q already has a name", ErrMalformed, lineNo, c.Name)
	}
	c.Name = text
	c.Line = lineNo
	return nil
}

// isRule reports whether line is three or more ch characters and nothing
// else.
func isRule(line string, ch byte) bool {
	line = strings.TrimRight(line, " \t")
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ch {
			return false
		}
	}
	return true
}

// LoadDir reads every *.txt corpus file in dir, in name order.
func LoadDir(dir string) ([]Case, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus files in %s", dir)
	}

	var all []Case
	for _, path := range paths {
		cases, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}

func loadFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cases, err := ParseFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range cases {
		cases[i].File = path
	}
	return cases, nil
}

// ================================================================================================
// NORMALIZATION
// ================================================================================================

// Normalize collapses the layout of an S-expression so that trees written
// across several lines compare equal to the single-line rendering:
// whitespace runs become one space and no space follows '(' or precedes
// ')'. Quoted text is copied unchanged.
func Normalize(sexpr string) string {
	var b strings.Builder
	b.Grow(len(sexpr))

	pendingSpace := false
	for i := 0; i < len(sexpr); i++ {
		ch := sexpr[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			pendingSpace = b.Len() > 0
			continue

		case ch == ')':
			pendingSpace = false
			b.WriteByte(ch)
			continue
		}

		if pendingSpace && !strings.HasSuffix(b.String(), "(") {
			b.WriteByte(' ')
		}
		pendingSpace = false

		if ch != '"' {
			b.WriteByte(ch)
			continue
		}

		// Quoted leaf: copy through the closing quote
		b.WriteByte(ch)
		for i++; i < len(sexpr); i++ {
			b.WriteByte(sexpr[i])
			if sexpr[i] == '\\' && i+1 < len(sexpr) {
				i++
				b.WriteByte(sexpr[i])
				continue
			}
			if sexpr[i] == '"' {
				break
			}
		}
	}
	return b.String()
}
