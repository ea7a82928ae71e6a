package lexer

import (
	"strings"
	"unicode/utf8"
)

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// TokenEOF marks the end of input. It carries the position just past
	// the last token so "unexpected end of file" errors have a location.
	TokenEOF TokenType = iota

	// TokenInvalid is returned together with a lexical error.
	TokenInvalid

	// TokenComment holds a // or /* */ comment. The parser skips it.
	TokenComment

	// Literals
	TokenInteger // 42
	TokenFloat   // 4.2

	TokenIdentifier

	// Keywords
	TokenIf
	TokenElse
	TokenWhile
	TokenBreak
	TokenContinue
	TokenFunction
	TokenInt
	TokenFlt
	TokenLet
	TokenPrint
	TokenInput
	TokenSumi
	TokenSumf
	TokenAnd // and, &&
	TokenOr  // or, ||
	TokenNot // not, !

	// Operators
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenAssign       // =

	// Delimiters
	TokenLeftParen  // (
	TokenRightParen // )
	TokenLeftBrace  // {
	TokenRightBrace // }
	TokenSemicolon  // ;
	TokenComma      // ,
)

// Token is a single lexeme together with its class and location.
type Token struct {
	Type TokenType

	// Lexeme is the exact source text. Keywords keep the spelling the
	// user wrote (IF and if are the same keyword) so diagnostic trees can
	// echo the source back.
	Lexeme string

	Position Position

	// Length is the token length in bytes.
	Length int
}

// String renders the token as TYPE(lexeme) at file:line:col.
func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

// Span returns the source range the token covers.
func (t Token) Span() Span {
	end := t.Position
	end.Column += utf8.RuneCountInString(t.Lexeme)
	end.Offset += t.Length
	return Span{Start: t.Position, End: end}
}

var tokenNames = [...]string{
	TokenEOF:          "EOF",
	TokenInvalid:      "INVALID",
	TokenComment:      "COMMENT",
	TokenInteger:      "INTEGER",
	TokenFloat:        "FLOAT",
	TokenIdentifier:   "IDENTIFIER",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenWhile:        "WHILE",
	TokenBreak:        "BREAK",
	TokenContinue:     "CONTINUE",
	TokenFunction:     "FUNCTION",
	TokenInt:          "INT",
	TokenFlt:          "FLT",
	TokenLet:          "LET",
	TokenPrint:        "PRINT",
	TokenInput:        "CONSOLE_INPUT",
	TokenSumi:         "SUMI",
	TokenSumf:         "SUMF",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenPlus:         "SUM",
	TokenMinus:        "SUB",
	TokenStar:         "MUL",
	TokenSlash:        "DIV",
	TokenEqual:        "==",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenAssign:       "=",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenSemicolon:    ";",
	TokenComma:        ",",
}

// String returns the grammar name of the token type.
func (tt TokenType) String() string {
	if tt >= 0 && int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"function": TokenFunction,
	"int":      TokenInt,
	"flt":      TokenFlt,
	"let":      TokenLet,
	"print":    TokenPrint,
	"input":    TokenInput,
	"sumi":     TokenSumi,
	"sumf":     TokenSumf,
	"and":      TokenAnd,
	"or":       TokenOr,
	"not":      TokenNot,
}

// LookupKeyword maps an identifier to its keyword type, ignoring case.
// Anything that is not a keyword is a TokenIdentifier.
func LookupKeyword(identifier string) TokenType {
	if tokenType, ok := keywords[strings.ToLower(identifier)]; ok {
		return tokenType
	}
	return TokenIdentifier
}

// IsKeyword reports whether tt is a reserved word.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenIf && tt <= TokenNot
}

// IsOperator reports whether tt is a binary or assignment operator symbol.
func (tt TokenType) IsOperator() bool {
	return tt >= TokenPlus && tt <= TokenAssign
}

// IsLiteral reports whether tt is a numeric literal.
func (tt TokenType) IsLiteral() bool {
	return tt == TokenInteger || tt == TokenFloat
}
