package wgsl

import "github.com/gogpu/wgslfront/diag"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral

	// Operators
	TokenPlus                // +
	TokenMinus               // -
	TokenStar                // *
	TokenSlash               // /
	TokenPercent             // %
	TokenAmpersand           // &
	TokenPipe                // |
	TokenCaret               // ^
	TokenTilde               // ~
	TokenBang                // !
	TokenEqual               // =
	TokenLess                // <
	TokenGreater             // >
	TokenDot                 // .
	TokenComma               // ,
	TokenColon               // :
	TokenSemicolon           // ;
	TokenAt                  // @
	TokenArrow               // ->
	TokenPlusPlus            // ++
	TokenMinusMinus          // --
	TokenEqualEqual          // ==
	TokenBangEqual           // !=
	TokenLessEqual           // <=
	TokenGreaterEqual        // >=
	TokenAmpAmp              // &&
	TokenPipePipe            // ||
	TokenLessLess            // <<
	TokenGreaterGreater      // >>
	TokenPlusEqual           // +=
	TokenMinusEqual          // -=
	TokenStarEqual           // *=
	TokenSlashEqual          // /=
	TokenPercentEqual        // %=
	TokenAmpEqual            // &=
	TokenPipeEqual           // |=
	TokenCaretEqual          // ^=
	TokenLessLessEqual       // <<=
	TokenGreaterGreaterEqual // >>=

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Keywords
	TokenBitcast
	TokenBreak
	TokenCase
	TokenContinue
	TokenContinuing
	TokenDefault
	TokenDiscard
	TokenElse
	TokenEnable
	TokenFallthrough
	TokenFalse
	TokenFn
	TokenFor
	TokenIf
	TokenLet
	TokenLoop
	TokenReturn
	TokenStruct
	TokenSwitch
	TokenTrue
	TokenType
	TokenVar
	TokenWhile
)

var tokenStrings = [...]string{
	TokenEOF:                 "end of file",
	TokenError:               "unknown token",
	TokenIdent:               "identifier",
	TokenIntLiteral:          "integer literal",
	TokenFloatLiteral:        "float literal",
	TokenPlus:                "+",
	TokenMinus:               "-",
	TokenStar:                "*",
	TokenSlash:               "/",
	TokenPercent:             "%",
	TokenAmpersand:           "&",
	TokenPipe:                "|",
	TokenCaret:               "^",
	TokenTilde:               "~",
	TokenBang:                "!",
	TokenEqual:               "=",
	TokenLess:                "<",
	TokenGreater:             ">",
	TokenDot:                 ".",
	TokenComma:               ",",
	TokenColon:               ":",
	TokenSemicolon:           ";",
	TokenAt:                  "@",
	TokenArrow:               "->",
	TokenPlusPlus:            "++",
	TokenMinusMinus:          "--",
	TokenEqualEqual:          "==",
	TokenBangEqual:           "!=",
	TokenLessEqual:           "<=",
	TokenGreaterEqual:        ">=",
	TokenAmpAmp:              "&&",
	TokenPipePipe:            "||",
	TokenLessLess:            "<<",
	TokenGreaterGreater:      ">>",
	TokenPlusEqual:           "+=",
	TokenMinusEqual:          "-=",
	TokenStarEqual:           "*=",
	TokenSlashEqual:          "/=",
	TokenPercentEqual:        "%=",
	TokenAmpEqual:            "&=",
	TokenPipeEqual:           "|=",
	TokenCaretEqual:          "^=",
	TokenLessLessEqual:       "<<=",
	TokenGreaterGreaterEqual: ">>=",
	TokenLeftParen:           "(",
	TokenRightParen:          ")",
	TokenLeftBrace:           "{",
	TokenRightBrace:          "}",
	TokenLeftBracket:         "[",
	TokenRightBracket:        "]",
	TokenBitcast:             "bitcast",
	TokenBreak:               "break",
	TokenCase:                "case",
	TokenContinue:            "continue",
	TokenContinuing:          "continuing",
	TokenDefault:             "default",
	TokenDiscard:             "discard",
	TokenElse:                "else",
	TokenEnable:              "enable",
	TokenFallthrough:         "fallthrough",
	TokenFalse:               "false",
	TokenFn:                  "fn",
	TokenFor:                 "for",
	TokenIf:                  "if",
	TokenLet:                 "let",
	TokenLoop:                "loop",
	TokenReturn:              "return",
	TokenStruct:              "struct",
	TokenSwitch:              "switch",
	TokenTrue:                "true",
	TokenType:                "type",
	TokenVar:                 "var",
	TokenWhile:               "while",
}

// String returns the source spelling of the token kind, or a description
// for kinds without a fixed spelling.
func (k TokenKind) String() string {
	if int(k) < len(tokenStrings) && tokenStrings[k] != "" {
		return tokenStrings[k]
	}
	return "unknown"
}

// IsKeyword reports whether the kind is a language keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenBitcast && k <= TokenWhile
}

// Token represents a lexical token with its source span.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Span   diag.Span
}

// describe renders the token the way syntax errors quote it.
func (t Token) describe() string {
	if t.Kind == TokenEOF {
		return "end of file"
	}
	return "'" + t.Lexeme + "'"
}
