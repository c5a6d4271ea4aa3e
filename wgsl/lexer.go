package wgsl

import (
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/wgslfront/diag"
)

// Lexer tokenizes WGSL source code.
type Lexer struct {
	source string
	pos    int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 6 characters of source.
	estTokens := len(source) / 6
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source, terminated by TokenEOF.
// Characters that start no token become TokenError tokens; the parser
// reports them when it reaches them.
func (l *Lexer) Tokenize() []Token {
	for {
		l.skipTrivia()
		if l.isAtEnd() {
			break
		}
		l.start = l.pos
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Kind: TokenEOF,
		Span: diag.Span{Start: len(l.source), End: len(l.source)},
	})
	return l.tokens
}

func (l *Lexer) skipTrivia() {
	for !l.isAtEnd() {
		r := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case r == '/' && l.peekNext() == '*':
			l.start = l.pos
			l.advance()
			l.advance()
			if !l.blockComment() {
				l.addToken(TokenError)
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanToken() {
	r := l.advance()

	switch r {
	// Single-character tokens
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case ';':
		l.addToken(TokenSemicolon)
	case '@':
		l.addToken(TokenAt)
	case '~':
		l.addToken(TokenTilde)
	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TokenDot)
		}
	case '%':
		l.addToken(l.either('=', TokenPercentEqual, TokenPercent))
	case '^':
		l.addToken(l.either('=', TokenCaretEqual, TokenCaret))
	case '*':
		l.addToken(l.either('=', TokenStarEqual, TokenStar))
	case '/':
		l.addToken(l.either('=', TokenSlashEqual, TokenSlash))
	case '=':
		l.addToken(l.either('=', TokenEqualEqual, TokenEqual))
	case '!':
		l.addToken(l.either('=', TokenBangEqual, TokenBang))

	// Operators that could be one, two or three characters
	case '+':
		switch {
		case l.match('+'):
			l.addToken(TokenPlusPlus)
		case l.match('='):
			l.addToken(TokenPlusEqual)
		default:
			l.addToken(TokenPlus)
		}
	case '-':
		switch {
		case l.match('-'):
			l.addToken(TokenMinusMinus)
		case l.match('='):
			l.addToken(TokenMinusEqual)
		case l.match('>'):
			l.addToken(TokenArrow)
		default:
			l.addToken(TokenMinus)
		}
	case '&':
		switch {
		case l.match('&'):
			l.addToken(TokenAmpAmp)
		case l.match('='):
			l.addToken(TokenAmpEqual)
		default:
			l.addToken(TokenAmpersand)
		}
	case '|':
		switch {
		case l.match('|'):
			l.addToken(TokenPipePipe)
		case l.match('='):
			l.addToken(TokenPipeEqual)
		default:
			l.addToken(TokenPipe)
		}
	case '<':
		switch {
		case l.match('<'):
			l.addToken(l.either('=', TokenLessLessEqual, TokenLessLess))
		case l.match('='):
			l.addToken(TokenLessEqual)
		default:
			l.addToken(TokenLess)
		}
	case '>':
		switch {
		case l.match('>'):
			l.addToken(l.either('=', TokenGreaterGreaterEqual, TokenGreaterGreater))
		case l.match('='):
			l.addToken(TokenGreaterEqual)
		default:
			l.addToken(TokenGreater)
		}

	default:
		switch {
		case isDigit(r):
			l.number()
		case isAlpha(r) || r == '_':
			l.identifier()
		default:
			l.addToken(TokenError)
		}
	}
}

// blockComment consumes a possibly nested block comment whose opening
// delimiter has been read. It reports false if the comment is unterminated.
func (l *Lexer) blockComment() bool {
	depth := 1
	for depth > 0 {
		if l.isAtEnd() {
			return false
		}
		switch {
		case l.peek() == '/' && l.peekNext() == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek() == '*' && l.peekNext() == '/':
			l.advance()
			l.advance()
			depth--
		default:
			l.advance()
		}
	}
	return true
}

// number scans a numeric literal starting at l.start. Integer literals take
// an optional i, u, i32 or u32 suffix; float literals take f, f32, f16 or h.
func (l *Lexer) number() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		l.intSuffix()
		l.addToken(TokenIntLiteral)
		return
	}

	isFloat := l.source[l.start] == '.'
	for isDigit(l.peek()) {
		l.advance()
	}

	// "1." is a float unless an identifier follows the dot, as in "1.x".
	if !isFloat && l.peek() == '.' {
		if next := l.peekNext(); !isAlpha(next) && next != '_' {
			l.advance()
			isFloat = true
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
		isFloat = true
	}

	switch {
	case l.peek() == 'f':
		l.advance()
		if !l.matchString("32") {
			l.matchString("16")
		}
		isFloat = true
	case l.peek() == 'h':
		l.advance()
		isFloat = true
	case !isFloat:
		l.intSuffix()
	}

	if isFloat {
		l.addToken(TokenFloatLiteral)
	} else {
		l.addToken(TokenIntLiteral)
	}
}

func (l *Lexer) intSuffix() {
	if l.peek() == 'i' || l.peek() == 'u' {
		l.advance()
		l.matchString("32")
	}
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	if kind, ok := keywords[text]; ok {
		l.addToken(kind)
		return
	}
	l.addToken(TokenIdent)
}

var keywords = map[string]TokenKind{
	"bitcast":     TokenBitcast,
	"break":       TokenBreak,
	"case":        TokenCase,
	"continue":    TokenContinue,
	"continuing":  TokenContinuing,
	"default":     TokenDefault,
	"discard":     TokenDiscard,
	"else":        TokenElse,
	"enable":      TokenEnable,
	"fallthrough": TokenFallthrough,
	"false":       TokenFalse,
	"fn":          TokenFn,
	"for":         TokenFor,
	"if":          TokenIf,
	"let":         TokenLet,
	"loop":        TokenLoop,
	"return":      TokenReturn,
	"struct":      TokenStruct,
	"switch":      TokenSwitch,
	"true":        TokenTrue,
	"type":        TokenType,
	"var":         TokenVar,
	"while":       TokenWhile,
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Span:   diag.Span{Start: l.start, End: l.pos},
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	return true
}

func (l *Lexer) matchString(s string) bool {
	if len(l.source)-l.pos < len(s) || l.source[l.pos:l.pos+len(s)] != s {
		return false
	}
	l.pos += len(s)
	return true
}

func (l *Lexer) either(next rune, yes, no TokenKind) TokenKind {
	if l.match(next) {
		return yes
	}
	return no
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
