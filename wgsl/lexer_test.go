package wgsl

import (
	"testing"

	"github.com/nalgeon/be"
)

func tokenKinds(source string) []TokenKind {
	tokens := NewLexer(source).Tokenize()
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexerPunctuation(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"+ - * /", []TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenEOF}},
		{"( ) { }", []TokenKind{TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace, TokenEOF}},
		{"[ ] , .", []TokenKind{TokenLeftBracket, TokenRightBracket, TokenComma, TokenDot, TokenEOF}},
		{": ; @", []TokenKind{TokenColon, TokenSemicolon, TokenAt, TokenEOF}},
		{"-> ++ --", []TokenKind{TokenArrow, TokenPlusPlus, TokenMinusMinus, TokenEOF}},
		{"== != <= >=", []TokenKind{TokenEqualEqual, TokenBangEqual, TokenLessEqual, TokenGreaterEqual, TokenEOF}},
		{"&& || << >>", []TokenKind{TokenAmpAmp, TokenPipePipe, TokenLessLess, TokenGreaterGreater, TokenEOF}},
		{"<<= >>= &= |= ^=", []TokenKind{
			TokenLessLessEqual, TokenGreaterGreaterEqual, TokenAmpEqual, TokenPipeEqual, TokenCaretEqual, TokenEOF,
		}},
		{"+= -= *= /= %=", []TokenKind{
			TokenPlusEqual, TokenMinusEqual, TokenStarEqual, TokenSlashEqual, TokenPercentEqual, TokenEOF,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, tokenKinds(tt.input), tt.expected)
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"42", TokenIntLiteral},
		{"42u", TokenIntLiteral},
		{"42i", TokenIntLiteral},
		{"42u32", TokenIntLiteral},
		{"0x1F", TokenIntLiteral},
		{"0xffu", TokenIntLiteral},
		{"1.0", TokenFloatLiteral},
		{"1.", TokenFloatLiteral},
		{".5", TokenFloatLiteral},
		{"1e3", TokenFloatLiteral},
		{"2.5e-3", TokenFloatLiteral},
		{"1f", TokenFloatLiteral},
		{"1.0f32", TokenFloatLiteral},
		{"1.0h", TokenFloatLiteral},
		{"1.0f16", TokenFloatLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := NewLexer(tt.input).Tokenize()
			be.Equal(t, len(tokens), 2)
			be.Equal(t, tokens[0].Kind, tt.kind)
			be.Equal(t, tokens[0].Lexeme, tt.input)
		})
	}
}

func TestLexerMemberAfterInteger(t *testing.T) {
	// "1.x" is not a float: the dot starts a member access.
	be.Equal(t, tokenKinds("1.x"), []TokenKind{TokenIntLiteral, TokenDot, TokenIdent, TokenEOF})
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"fn", TokenFn},
		{"var", TokenVar},
		{"let", TokenLet},
		{"struct", TokenStruct},
		{"continuing", TokenContinuing},
		{"fallthrough", TokenFallthrough},
		{"bitcast", TokenBitcast},
		{"enable", TokenEnable},
		{"true", TokenTrue},
		{"f32", TokenIdent},
		{"vec4", TokenIdent},
		{"_private", TokenIdent},
		{"größe", TokenIdent},
		{"fnord", TokenIdent},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := NewLexer(tt.input).Tokenize()
			be.Equal(t, tokens[0].Kind, tt.kind)
			be.Equal(t, tokens[0].Lexeme, tt.input)
		})
	}
	be.True(t, TokenWhile.IsKeyword())
	be.True(t, !TokenIdent.IsKeyword())
}

func TestLexerComments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenKind
	}{
		{"line", "a // b c\nd", []TokenKind{TokenIdent, TokenIdent, TokenEOF}},
		{"block", "a /* b */ c", []TokenKind{TokenIdent, TokenIdent, TokenEOF}},
		{"nested", "a /* b /* c */ d */ e", []TokenKind{TokenIdent, TokenIdent, TokenEOF}},
		{"unterminated", "a /* b", []TokenKind{TokenIdent, TokenError, TokenEOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tokenKinds(tt.input), tt.expected)
		})
	}
}

func TestLexerSpans(t *testing.T) {
	source := "let x = 1.5;\n  fn"
	tokens := NewLexer(source).Tokenize()
	want := []struct {
		kind       TokenKind
		start, end int
	}{
		{TokenLet, 0, 3},
		{TokenIdent, 4, 5},
		{TokenEqual, 6, 7},
		{TokenFloatLiteral, 8, 11},
		{TokenSemicolon, 11, 12},
		{TokenFn, 15, 17},
		{TokenEOF, 17, 17},
	}
	be.Equal(t, len(tokens), len(want))
	for i, w := range want {
		be.Equal(t, tokens[i].Kind, w.kind)
		be.Equal(t, tokens[i].Span.Start, w.start)
		be.Equal(t, tokens[i].Span.End, w.end)
	}
}

func TestLexerUnknownCharacter(t *testing.T) {
	tokens := NewLexer("a $ b").Tokenize()
	be.Equal(t, tokens[1].Kind, TokenError)
	be.Equal(t, tokens[1].Lexeme, "$")
	be.Equal(t, tokens[1].describe(), "'$'")
	be.Equal(t, tokens[3].describe(), "end of file")
}
