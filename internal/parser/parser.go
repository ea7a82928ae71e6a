// Package parser turns minic tokens into an AST.
//
// Statements are parsed by recursive descent; expressions use Pratt
// parsing with the binding powers in precedence.go. Errors are
// collected rather than returned one at a time: a failing production
// panics, the nearest statement recovers, and the parser skips ahead to
// the next statement boundary.
package parser

import (
	"fmt"
	"strconv"

	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser/ast"
)

// Parser holds a two-token window over the lexer output.
type Parser struct {
	lexer *lexer.Lexer

	previous lexer.Token
	current  lexer.Token
	next     lexer.Token

	errors    []error
	panicMode bool
}

// bailout is the panic value used to unwind to the statement level.
type bailout struct{}

// New creates a parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{lexer: l}
	p.next = p.read()
	p.advance()
	return p
}

// Parse is a convenience wrapper: lex and parse source in one step.
func Parse(source, filename string) (*ast.Program, []error) {
	return New(lexer.New(source, filename)).ParseProgram(filename)
}

// ParseProgram parses the whole token stream.
//
//	main    = program EOF
//	program = statement_full { statement_full }
//
// The returned program is never nil; with errors it holds every statement
// that parsed cleanly.
func (p *Parser) ParseProgram(filename string) (*ast.Program, []error) {
	program := &ast.Program{Filename: filename}

	for !p.isAtEnd() {
		if p.check(lexer.TokenRightBrace) {
			p.error("unexpected '}'")
			p.advance()
			continue
		}
		if stmt := p.parseStatementFull(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}

	if len(program.Statements) == 0 && len(p.errors) == 0 {
		p.error("expected at least one statement")
	}
	return program, p.errors
}

// parseStatementFull parses one statement_full production.
//
//	statement_full = "if" "(" expr ")" block [ "else" block ]
//	               | "while" "(" expr ")" block
//	               | "function" IDENTIFIER "(" ")" block
//	               | statement ";"
func (p *Parser) parseStatementFull() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(lexer.TokenIf):
		return p.parseIf()
	case p.match(lexer.TokenWhile):
		return p.parseWhile()
	case p.match(lexer.TokenFunction):
		return p.parseFuncDecl()
	}

	inner := p.parseStatement()
	p.consume(lexer.TokenSemicolon, "expected ';' after statement")
	return &ast.Terminated{Statement: inner, Semicolon: p.previous}
}

// parseStatement parses the part of a simple statement before its ';'.
//
//	statement = "break" | "continue"
//	          | ("int" | "flt" | "let") IDENTIFIER "=" expr
//	          | IDENTIFIER "=" expr
//	          | "print" "(" [ expr ] ")"
//	          | expr
func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.match(lexer.TokenBreak):
		return &ast.BreakStmt{Keyword: p.previous}
	case p.match(lexer.TokenContinue):
		return &ast.ContinueStmt{Keyword: p.previous}
	case p.match(lexer.TokenInt, lexer.TokenFlt, lexer.TokenLet):
		return p.parseDecl()
	case p.match(lexer.TokenPrint):
		return p.parsePrint()
	case p.check(lexer.TokenIdentifier) && p.next.Type == lexer.TokenAssign:
		return p.parseAssign()
	default:
		return &ast.ExprStmt{Expression: p.parseExpression()}
	}
}

func (p *Parser) parseDecl() *ast.DeclStmt {
	decl := &ast.DeclStmt{Keyword: p.previous}
	p.consume(lexer.TokenIdentifier, fmt.Sprintf("expected variable name after '%s'", decl.Keyword.Lexeme))
	decl.Name = p.previous
	p.consume(lexer.TokenAssign, "expected '=' after variable name")
	decl.Assign = p.previous
	decl.Value = p.parseExpression()
	return decl
}

func (p *Parser) parseAssign() *ast.AssignStmt {
	assign := &ast.AssignStmt{Name: p.current}
	p.advance()
	assign.Assign = p.current
	p.advance()
	assign.Value = p.parseExpression()
	return assign
}

func (p *Parser) parsePrint() *ast.PrintStmt {
	stmt := &ast.PrintStmt{Keyword: p.previous}
	p.consume(lexer.TokenLeftParen, "expected '(' after 'print'")
	stmt.LeftParen = p.previous
	if !p.check(lexer.TokenRightParen) {
		stmt.Argument = p.parseExpression()
	}
	p.consume(lexer.TokenRightParen, "expected ')' after print argument")
	stmt.RightParen = p.previous
	return stmt
}

// parseBlock parses "{" statement_full { statement_full } "}".
func (p *Parser) parseBlock() *ast.Block {
	p.consume(lexer.TokenLeftBrace, "expected '{'")
	block := &ast.Block{LeftBrace: p.previous}

	for !p.check(lexer.TokenRightBrace) && !p.isAtEnd() {
		if stmt := p.parseStatementFull(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	p.consume(lexer.TokenRightBrace, "expected '}'")
	block.RightBrace = p.previous
	if len(block.Statements) == 0 {
		p.errorAt(block.LeftBrace, "block must contain at least one statement")
	}
	return block
}

func (p *Parser) parseIf() *ast.IfStmt {
	stmt := &ast.IfStmt{Keyword: p.previous}
	stmt.LeftParen, stmt.Condition, stmt.RightParen = p.parseCondition("if")
	stmt.Then = p.parseBlock()

	if p.match(lexer.TokenElse) {
		stmt.Else = &ast.ElseClause{Keyword: p.previous}
		stmt.Else.Body = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	stmt := &ast.WhileStmt{Keyword: p.previous}
	stmt.LeftParen, stmt.Condition, stmt.RightParen = p.parseCondition("while")
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseCondition(keyword string) (lexer.Token, ast.Expr, lexer.Token) {
	p.consume(lexer.TokenLeftParen, fmt.Sprintf("expected '(' after '%s'", keyword))
	left := p.previous
	cond := p.parseExpression()
	p.consume(lexer.TokenRightParen, "expected ')' after condition")
	return left, cond, p.previous
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	decl := &ast.FuncDecl{Keyword: p.previous}
	p.consume(lexer.TokenIdentifier, "expected function name")
	decl.Name = p.previous
	p.consume(lexer.TokenLeftParen, "expected '(' after function name")
	decl.LeftParen = p.previous
	p.consume(lexer.TokenRightParen, "functions take no parameters")
	decl.RightParen = p.previous
	decl.Body = p.parseBlock()
	return decl
}

// Expressions

func (p *Parser) parseExpression() ast.Expr {
	return p.parsePrecedence(PrecLogical)
}

// parsePrecedence parses a prefix expression and then folds in every
// infix operator that binds at least as tightly as precedence. Operators
// are left-associative: the right operand is parsed one level higher.
func (p *Parser) parsePrecedence(precedence Precedence) ast.Expr {
	left := p.parsePrefix()

	for {
		prec := getPrecedence(p.current.Type)
		if prec == PrecNone || prec < precedence {
			return left
		}
		operator := p.current
		p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpr{Left: left, Operator: operator, Right: right}
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.current.Type {
	case lexer.TokenInteger:
		return p.parseInteger()
	case lexer.TokenFloat:
		return p.parseFloat()
	case lexer.TokenIdentifier:
		return p.parseIdentifier()
	case lexer.TokenLeftParen:
		return p.parseGrouping()
	case lexer.TokenNot:
		operator := p.current
		p.advance()
		return &ast.NotExpr{Operator: operator, Operand: p.parsePrecedence(notOperandPrecedence)}
	case lexer.TokenSumi, lexer.TokenSumf:
		return p.parseIntrinsic()
	case lexer.TokenInput:
		return p.parseInput()
	}

	p.fail(fmt.Sprintf("expected expression, got %s", describe(p.current)))
	return nil
}

func (p *Parser) parseInteger() ast.Expr {
	tok := p.current
	p.advance()
	value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		p.errorAt(tok, fmt.Sprintf("integer literal %s out of range", tok.Lexeme))
	}
	return &ast.IntegerLit{Token: tok, Value: value}
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.current
	p.advance()
	value, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		p.errorAt(tok, fmt.Sprintf("invalid float literal %s", tok.Lexeme))
	}
	return &ast.FloatLit{Token: tok, Value: value}
}

// parseIdentifier parses a variable read or, when followed by "(", a
// call. Calls never take arguments.
func (p *Parser) parseIdentifier() ast.Expr {
	name := p.current
	p.advance()
	if !p.match(lexer.TokenLeftParen) {
		return &ast.Identifier{Token: name, Name: name.Lexeme}
	}
	call := &ast.CallExpr{Name: name, LeftParen: p.previous}
	p.consume(lexer.TokenRightParen, "function calls take no arguments")
	call.RightParen = p.previous
	return call
}

func (p *Parser) parseGrouping() ast.Expr {
	group := &ast.Grouping{LeftParen: p.current}
	p.advance()
	group.Inner = p.parseExpression()
	p.consume(lexer.TokenRightParen, "expected ')' after expression")
	group.RightParen = p.previous
	return group
}

// parseIntrinsic parses sumi(a, b) and sumf(a, b).
func (p *Parser) parseIntrinsic() ast.Expr {
	call := &ast.IntrinsicExpr{Name: p.current}
	p.advance()
	p.consume(lexer.TokenLeftParen, fmt.Sprintf("expected '(' after '%s'", call.Name.Lexeme))
	call.LeftParen = p.previous
	call.Left = p.parseExpression()
	p.consume(lexer.TokenComma, fmt.Sprintf("'%s' takes two arguments", call.Name.Lexeme))
	call.Comma = p.previous
	call.Right = p.parseExpression()
	p.consume(lexer.TokenRightParen, "expected ')' after arguments")
	call.RightParen = p.previous
	return call
}

func (p *Parser) parseInput() ast.Expr {
	in := &ast.InputExpr{Keyword: p.current}
	p.advance()
	p.consume(lexer.TokenLeftParen, "expected '(' after 'input'")
	in.LeftParen = p.previous
	if !p.check(lexer.TokenRightParen) {
		in.Prompt = p.parseExpression()
	}
	p.consume(lexer.TokenRightParen, "expected ')' after input prompt")
	in.RightParen = p.previous
	return in
}

// Helper methods

// read pulls the next non-comment token from the lexer. Lexical errors
// are recorded and surface as TokenInvalid.
func (p *Parser) read() lexer.Token {
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.errors = append(p.errors, err)
			return tok
		}
		if tok.Type != lexer.TokenComment {
			return tok
		}
	}
}

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.next
	if p.current.Type != lexer.TokenEOF {
		p.next = p.read()
	}
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) match(tokenTypes ...lexer.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tokenType lexer.TokenType, message string) {
	if p.check(tokenType) {
		p.advance()
		return
	}
	p.fail(message)
}

func (p *Parser) isAtEnd() bool {
	return p.current.Type == lexer.TokenEOF
}

// fail records message at the current token and unwinds to the enclosing
// statement. Further errors are suppressed until synchronize runs.
func (p *Parser) fail(message string) {
	p.error(message)
	p.panicMode = true
	panic(bailout{})
}

func (p *Parser) error(message string) {
	p.errorAt(p.current, message)
}

func (p *Parser) errorAt(tok lexer.Token, message string) {
	if p.panicMode {
		return
	}
	if tok.Type == lexer.TokenInvalid {
		// The lexer already reported this token.
		return
	}
	p.errors = append(p.errors, fmt.Errorf("%s: %s", tok.Position, message))
}

// synchronize skips tokens until a statement boundary: just past a ';',
// before a keyword that starts a statement, or before a '}' that may
// close the enclosing block.
func (p *Parser) synchronize() {
	p.panicMode = false

	for !p.isAtEnd() {
		if p.match(lexer.TokenSemicolon) {
			return
		}
		switch p.current.Type {
		case lexer.TokenIf, lexer.TokenWhile, lexer.TokenFunction,
			lexer.TokenInt, lexer.TokenFlt, lexer.TokenLet, lexer.TokenPrint,
			lexer.TokenRightBrace:
			return
		}
		p.advance()
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenInvalid:
		return "invalid token"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}
