package parser

import (
	"github.com/hassan/minic/internal/lexer"
)

// Precedence is the binding power of an infix operator. Higher binds
// tighter.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecLogical               // and, or
	PrecNot                   // prefix not; binds looser than comparisons
	PrecComparison            // == != < <= > >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecPrimary               // literals, identifiers, calls, grouping
)

// getPrecedence returns the infix binding power of tokenType, or PrecNone
// when the token cannot continue an expression.
func getPrecedence(tokenType lexer.TokenType) Precedence {
	switch tokenType {
	case lexer.TokenAnd, lexer.TokenOr:
		return PrecLogical
	case lexer.TokenEqual, lexer.TokenNotEqual,
		lexer.TokenLess, lexer.TokenLessEqual,
		lexer.TokenGreater, lexer.TokenGreaterEqual:
		return PrecComparison
	case lexer.TokenPlus, lexer.TokenMinus:
		return PrecTerm
	case lexer.TokenStar, lexer.TokenSlash:
		return PrecFactor
	default:
		return PrecNone
	}
}

// notOperandPrecedence is the minimum precedence of the operand of a
// prefix not: comparisons and arithmetic are absorbed, and/or are not.
const notOperandPrecedence = PrecNot + 1
