// Package ast defines the minic abstract syntax tree.
//
// The parser builds the tree once. After that it is read-only: the
// diagnostic pass and the lowering pass both walk the same nodes through
// the two visitor capabilities below, and neither pass mutates them.
package ast

import (
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/semantic/types"
)

// Node is implemented by every AST node.
//
// Tree and Lower dispatch to the matching visitor method. Both receive
// the diagnostic node the production's children are appended to.
type Node interface {
	Pos() lexer.Position
	End() lexer.Position
	Tree(v ParseTreeVisitor, parent *diag.Node)
	Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error)
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// ParseTreeVisitor rebuilds the diagnostic tree from structure alone.
type ParseTreeVisitor interface {
	VisitProgram(n *Program, parent *diag.Node)
	VisitBlock(n *Block, parent *diag.Node)
	VisitTerminated(n *Terminated, parent *diag.Node)
	VisitExprStmt(n *ExprStmt, parent *diag.Node)
	VisitBreak(n *BreakStmt, parent *diag.Node)
	VisitContinue(n *ContinueStmt, parent *diag.Node)
	VisitDecl(n *DeclStmt, parent *diag.Node)
	VisitAssign(n *AssignStmt, parent *diag.Node)
	VisitPrint(n *PrintStmt, parent *diag.Node)
	VisitIf(n *IfStmt, parent *diag.Node)
	VisitWhile(n *WhileStmt, parent *diag.Node)
	VisitFuncDecl(n *FuncDecl, parent *diag.Node)

	VisitInteger(n *IntegerLit, parent *diag.Node)
	VisitFloat(n *FloatLit, parent *diag.Node)
	VisitIdentifier(n *Identifier, parent *diag.Node)
	VisitGrouping(n *Grouping, parent *diag.Node)
	VisitNot(n *NotExpr, parent *diag.Node)
	VisitBinary(n *BinaryExpr, parent *diag.Node)
	VisitCall(n *CallExpr, parent *diag.Node)
	VisitIntrinsic(n *IntrinsicExpr, parent *diag.Node)
	VisitInput(n *InputExpr, parent *diag.Node)
}

// LoweringVisitor performs semantic analysis and IR emission. It appends
// the same production shape as ParseTreeVisitor while it lowers, so a
// failure leaves the tree truncated where lowering stopped.
type LoweringVisitor interface {
	LowerProgram(n *Program, parent *diag.Node) (types.Value, error)
	LowerBlock(n *Block, parent *diag.Node) (types.Value, error)
	LowerTerminated(n *Terminated, parent *diag.Node) (types.Value, error)
	LowerExprStmt(n *ExprStmt, parent *diag.Node) (types.Value, error)
	LowerBreak(n *BreakStmt, parent *diag.Node) (types.Value, error)
	LowerContinue(n *ContinueStmt, parent *diag.Node) (types.Value, error)
	LowerDecl(n *DeclStmt, parent *diag.Node) (types.Value, error)
	LowerAssign(n *AssignStmt, parent *diag.Node) (types.Value, error)
	LowerPrint(n *PrintStmt, parent *diag.Node) (types.Value, error)
	LowerIf(n *IfStmt, parent *diag.Node) (types.Value, error)
	LowerWhile(n *WhileStmt, parent *diag.Node) (types.Value, error)
	LowerFuncDecl(n *FuncDecl, parent *diag.Node) (types.Value, error)

	LowerInteger(n *IntegerLit, parent *diag.Node) (types.Value, error)
	LowerFloat(n *FloatLit, parent *diag.Node) (types.Value, error)
	LowerIdentifier(n *Identifier, parent *diag.Node) (types.Value, error)
	LowerGrouping(n *Grouping, parent *diag.Node) (types.Value, error)
	LowerNot(n *NotExpr, parent *diag.Node) (types.Value, error)
	LowerBinary(n *BinaryExpr, parent *diag.Node) (types.Value, error)
	LowerCall(n *CallExpr, parent *diag.Node) (types.Value, error)
	LowerIntrinsic(n *IntrinsicExpr, parent *diag.Node) (types.Value, error)
	LowerInput(n *InputExpr, parent *diag.Node) (types.Value, error)
}

// Program is the root: a non-empty sequence of top-level statements.
type Program struct {
	Filename   string
	Statements []Stmt
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) == 0 {
		return lexer.Position{Filename: p.Filename}
	}
	return p.Statements[0].Pos()
}

func (p *Program) End() lexer.Position {
	if len(p.Statements) == 0 {
		return p.Pos()
	}
	return p.Statements[len(p.Statements)-1].End()
}

func (p *Program) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitProgram(p, parent) }
func (p *Program) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerProgram(p, parent)
}

// Block is a brace-delimited, non-empty statement sequence.
type Block struct {
	LeftBrace  lexer.Token
	Statements []Stmt
	RightBrace lexer.Token
}

func (b *Block) Pos() lexer.Position { return b.LeftBrace.Position }
func (b *Block) End() lexer.Position { return b.RightBrace.Span().End }
func (b *Block) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitBlock(b, parent) }
func (b *Block) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerBlock(b, parent)
}
