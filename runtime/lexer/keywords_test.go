package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestReservedVocabulary(t *testing.T) {
	tests := []struct {
		word  string
		typ   TokenType
		class TokenClass
	}{
		{"action", KEYWORD, ClassKeyword},
		{"nil", KEYWORD, ClassKeyword},
		{"makeVCard", KEYWORD, ClassKeyword},
		{"const", CONST, ClassKeyword},
		{"if", IF, ClassKeyword},
		{"else", ELSE, ClassKeyword},
		{"for", FOR, ClassKeyword},
		{"in", IN, ClassKeyword},
		{"repeat", REPEAT, ClassKeyword},
		{"menu", MENU, ClassKeyword},
		{"item", ITEM, ClassKeyword},
		{"true", BOOLEAN, ClassBooleanLiteral},
		{"false", BOOLEAN, ClassBooleanLiteral},
		{"text", TYPE, ClassTypeKeyword},
		{"float", TYPE, ClassTypeKeyword},
		{"CurrentDate", CONSTANT, ClassBuiltinConstant},
		{"ShortcutInput", CONSTANT, ClassBuiltinConstant},
		{"Ask", CONSTANT, ClassBuiltinConstant},

		// Reserved spellings match exactly
		{"If", IDENTIFIER, ClassIdentifier},
		{"texts", IDENTIFIER, ClassIdentifier},
		{"currentdate", IDENTIFIER, ClassIdentifier},
		{"_action", IDENTIFIER, ClassIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.typ, LookupKeyword(tt.word))
			assert.Equal(t, tt.class, LookupKeyword(tt.word).Class())

			tokens, err := Tokenize([]byte(tt.word))
			assert.NoError(t, err)
			assert.Equal(t, tt.typ, tokens[0].Type)
		})
	}
}

func TestVocabularySets(t *testing.T) {
	expectedTypes := []string{"array", "bool", "color", "dictionary", "float", "number", "text", "variable"}
	if diff := cmp.Diff(expectedTypes, Types()); diff != "" {
		t.Errorf("types mismatch (-expected +actual):\n%s", diff)
	}

	expectedConstants := []string{"Ask", "CurrentDate", "Device", "RepeatIndex", "RepeatItem", "ShortcutInput"}
	if diff := cmp.Diff(expectedConstants, Constants()); diff != "" {
		t.Errorf("constants mismatch (-expected +actual):\n%s", diff)
	}

	assert.Len(t, Keywords(), 26)
	assert.Contains(t, Keywords(), "true")
	assert.Contains(t, Keywords(), "repeat")
	assert.Equal(t, []string{"#include", "#define", "#import", "#question"}, Pragmas())
}

func TestPragmas(t *testing.T) {
	assertTokens(t, "pragma line", "#define glyph smiley", []tokenExpectation{
		{PRAGMA, "#define", 1, 1},
		{KEYWORD, "glyph", 1, 9},
		{IDENTIFIER, "smiley", 1, 15},
		{EOF, "", 1, 21},
	})
	assertTokens(t, "include", "#include 'lib'", []tokenExpectation{
		{PRAGMA, "#include", 1, 1},
		{RAW_STRING, "'lib'", 1, 10},
		{EOF, "", 1, 15},
	})
}
