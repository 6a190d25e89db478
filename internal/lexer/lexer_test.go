package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"lumen/internal/token"
)

func kinds(src string) []token.Kind {
	l := New([]byte(src))
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLazyOneTokenAtATime(t *testing.T) {
	l := New([]byte("1 + 2"))
	tok := l.Next()
	assert.Equal(t, token.NUMBER, tok.Kind)
	assert.Equal(t, "1", tok.Lexeme)
	tok = l.Next()
	assert.Equal(t, token.PLUS, tok.Kind)
}

func TestOperators(t *testing.T) {
	got := kinds("+ - * / % ** & ^ | = == != < <= > >= += -= *= /= &= ^= |= ...")
	want := []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.STAR_STAR,
		token.AMP, token.CARET, token.PIPE, token.EQUAL, token.EQUAL_EQUAL, token.BANG_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL,
		token.AMP_EQUAL, token.CARET_EQUAL, token.PIPE_EQUAL, token.ELLIPSIS, token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestNumberWithUnderscoresKeepsLexeme(t *testing.T) {
	l := New([]byte("1_000_000"))
	tok := l.Next()
	assert.Equal(t, token.NUMBER, tok.Kind)
	assert.Equal(t, "1_000_000", tok.Lexeme)
	assert.Equal(t, "1000000", StripNumericSeparators(tok.Lexeme))
}

func TestRawStringSuppressesEscapes(t *testing.T) {
	l := New([]byte(`r"a\nb"`))
	tok := l.Next()
	assert.Equal(t, token.STRING, tok.Kind)
	value, raw := Unquote(tok.Lexeme)
	assert.True(t, raw)
	assert.Equal(t, `a\nb`, value)
}

func TestNormalStringProcessesEscapes(t *testing.T) {
	l := New([]byte(`"a\nb"`))
	tok := l.Next()
	value, raw := Unquote(tok.Lexeme)
	assert.False(t, raw)
	assert.Equal(t, "a\nb", value)
}

func TestUnterminatedStringIsErrorToken(t *testing.T) {
	l := New([]byte(`"abc`))
	tok := l.Next()
	assert.Equal(t, token.ERROR, tok.Kind)
	assert.Contains(t, tok.Message, "unterminated")
}

func TestScanningContinuesAfterError(t *testing.T) {
	l := New([]byte("@ 1"))
	tok := l.Next()
	assert.Equal(t, token.ERROR, tok.Kind)
	tok = l.Next()
	assert.Equal(t, token.NUMBER, tok.Kind)
}

func TestLineCounting(t *testing.T) {
	l := New([]byte("1\n2\n3"))
	var lines []int
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	assert.Equal(t, []int{1, 2, 3}, lines)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	got := kinds("class foo this")
	assert.Equal(t, []token.Kind{token.CLASS, token.IDENTIFIER, token.THIS, token.EOF}, got)
}

func TestCommentsAreSkipped(t *testing.T) {
	got := kinds("1 # a comment\n2")
	assert.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, got)
}

func TestBackTrack(t *testing.T) {
	l := New([]byte("ab"))
	_ = l.advance()
	l.BackTrack()
	assert.Equal(t, byte('a'), l.peek())
}
