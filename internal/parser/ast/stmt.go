package ast

import (
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/semantic/types"
)

// Terminated is the "statement ;" production: a simple statement
// followed by its semicolon.
type Terminated struct {
	Statement Stmt
	Semicolon lexer.Token
}

func (t *Terminated) Pos() lexer.Position { return t.Statement.Pos() }
func (t *Terminated) End() lexer.Position { return t.Semicolon.Span().End }
func (t *Terminated) stmtNode()           {}
func (t *Terminated) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitTerminated(t, parent) }
func (t *Terminated) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerTerminated(t, parent)
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Expression Expr
}

func (e *ExprStmt) Pos() lexer.Position { return e.Expression.Pos() }
func (e *ExprStmt) End() lexer.Position { return e.Expression.End() }
func (e *ExprStmt) stmtNode()           {}
func (e *ExprStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitExprStmt(e, parent) }
func (e *ExprStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerExprStmt(e, parent)
}

// BreakStmt jumps to the exit of the innermost loop.
type BreakStmt struct {
	Keyword lexer.Token
}

func (b *BreakStmt) Pos() lexer.Position { return b.Keyword.Position }
func (b *BreakStmt) End() lexer.Position { return b.Keyword.Span().End }
func (b *BreakStmt) stmtNode()           {}
func (b *BreakStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitBreak(b, parent) }
func (b *BreakStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerBreak(b, parent)
}

// ContinueStmt jumps back to the body block of the innermost loop.
type ContinueStmt struct {
	Keyword lexer.Token
}

func (c *ContinueStmt) Pos() lexer.Position { return c.Keyword.Position }
func (c *ContinueStmt) End() lexer.Position { return c.Keyword.Span().End }
func (c *ContinueStmt) stmtNode()           {}
func (c *ContinueStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitContinue(c, parent) }
func (c *ContinueStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerContinue(c, parent)
}

// DeclStmt introduces a new variable: int x = e, flt x = e or let x = e.
// For let the declared tag is whatever the value evaluates to.
type DeclStmt struct {
	Keyword lexer.Token
	Name    lexer.Token
	Assign  lexer.Token
	Value   Expr
}

// Inferred reports whether the declaration takes its tag from the value.
func (d *DeclStmt) Inferred() bool { return d.Keyword.Type == lexer.TokenLet }

func (d *DeclStmt) Pos() lexer.Position { return d.Keyword.Position }
func (d *DeclStmt) End() lexer.Position { return d.Value.End() }
func (d *DeclStmt) stmtNode()           {}
func (d *DeclStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitDecl(d, parent) }
func (d *DeclStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerDecl(d, parent)
}

// AssignStmt overwrites an existing variable.
type AssignStmt struct {
	Name   lexer.Token
	Assign lexer.Token
	Value  Expr
}

func (a *AssignStmt) Pos() lexer.Position { return a.Name.Position }
func (a *AssignStmt) End() lexer.Position { return a.Value.End() }
func (a *AssignStmt) stmtNode()           {}
func (a *AssignStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitAssign(a, parent) }
func (a *AssignStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerAssign(a, parent)
}

// PrintStmt writes its argument, or a blank line, from the generated
// program.
type PrintStmt struct {
	Keyword    lexer.Token
	LeftParen  lexer.Token
	Argument   Expr // nil for print()
	RightParen lexer.Token
}

func (p *PrintStmt) Pos() lexer.Position { return p.Keyword.Position }
func (p *PrintStmt) End() lexer.Position { return p.RightParen.Span().End }
func (p *PrintStmt) stmtNode()           {}
func (p *PrintStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitPrint(p, parent) }
func (p *PrintStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerPrint(p, parent)
}

// ElseClause is the optional tail of an if statement.
type ElseClause struct {
	Keyword lexer.Token
	Body    *Block
}

// IfStmt is a two-way branch. It never yields a value.
type IfStmt struct {
	Keyword    lexer.Token
	LeftParen  lexer.Token
	Condition  Expr
	RightParen lexer.Token
	Then       *Block
	Else       *ElseClause // nil when absent
}

func (i *IfStmt) Pos() lexer.Position { return i.Keyword.Position }
func (i *IfStmt) End() lexer.Position {
	if i.Else != nil {
		return i.Else.Body.End()
	}
	return i.Then.End()
}
func (i *IfStmt) stmtNode() {}
func (i *IfStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitIf(i, parent) }
func (i *IfStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerIf(i, parent)
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Keyword    lexer.Token
	LeftParen  lexer.Token
	Condition  Expr
	RightParen lexer.Token
	Body       *Block
}

func (w *WhileStmt) Pos() lexer.Position { return w.Keyword.Position }
func (w *WhileStmt) End() lexer.Position { return w.Body.End() }
func (w *WhileStmt) stmtNode()           {}
func (w *WhileStmt) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitWhile(w, parent) }
func (w *WhileStmt) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerWhile(w, parent)
}

// FuncDecl names a parameterless body. Calls expand the body inline at
// the call site; there is no call frame.
type FuncDecl struct {
	Keyword    lexer.Token
	Name       lexer.Token
	LeftParen  lexer.Token
	RightParen lexer.Token
	Body       *Block
}

func (f *FuncDecl) Pos() lexer.Position { return f.Keyword.Position }
func (f *FuncDecl) End() lexer.Position { return f.Body.End() }
func (f *FuncDecl) stmtNode()           {}
func (f *FuncDecl) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitFuncDecl(f, parent) }
func (f *FuncDecl) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerFuncDecl(f, parent)
}
