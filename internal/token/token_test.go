package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordLookup(t *testing.T) {
	kind, ok := Keywords["class"]
	assert.True(t, ok)
	assert.Equal(t, CLASS, kind)

	_, ok = Keywords["notAKeyword"]
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "class", CLASS.String())
	assert.Contains(t, Kind(250).String(), "Kind(")
}

func TestTokenEq(t *testing.T) {
	a := Token{Kind: IDENTIFIER, Lexeme: "x", Line: 1}
	b := Token{Kind: IDENTIFIER, Lexeme: "x", Line: 9}
	c := Token{Kind: IDENTIFIER, Lexeme: "y", Line: 1}
	assert.True(t, a.Eq(b))
	assert.False(t, a.Eq(c))
}

func TestStatementBoundary(t *testing.T) {
	assert.True(t, CLASS.IsStatementBoundary())
	assert.True(t, IMPORT.IsStatementBoundary())
	assert.False(t, PLUS.IsStatementBoundary())
}
