package ast

import (
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/semantic/types"
)

// IntegerLit is an INTEGER constant. Value is the parsed literal; it is
// not range-checked against the 8-bit target type.
type IntegerLit struct {
	Token lexer.Token
	Value int64
}

func (i *IntegerLit) Pos() lexer.Position { return i.Token.Position }
func (i *IntegerLit) End() lexer.Position { return i.Token.Span().End }
func (i *IntegerLit) exprNode()           {}
func (i *IntegerLit) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitInteger(i, parent) }
func (i *IntegerLit) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerInteger(i, parent)
}

// FloatLit is a FLOAT constant.
type FloatLit struct {
	Token lexer.Token
	Value float64
}

func (f *FloatLit) Pos() lexer.Position { return f.Token.Position }
func (f *FloatLit) End() lexer.Position { return f.Token.Span().End }
func (f *FloatLit) exprNode()           {}
func (f *FloatLit) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitFloat(f, parent) }
func (f *FloatLit) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerFloat(f, parent)
}

// Identifier reads a variable.
type Identifier struct {
	Token lexer.Token
	Name  string
}

func (i *Identifier) Pos() lexer.Position { return i.Token.Position }
func (i *Identifier) End() lexer.Position { return i.Token.Span().End }
func (i *Identifier) exprNode()           {}
func (i *Identifier) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitIdentifier(i, parent) }
func (i *Identifier) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerIdentifier(i, parent)
}

// Grouping is a parenthesized expression.
type Grouping struct {
	LeftParen  lexer.Token
	Inner      Expr
	RightParen lexer.Token
}

func (g *Grouping) Pos() lexer.Position { return g.LeftParen.Position }
func (g *Grouping) End() lexer.Position { return g.RightParen.Span().End }
func (g *Grouping) exprNode()           {}
func (g *Grouping) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitGrouping(g, parent) }
func (g *Grouping) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerGrouping(g, parent)
}

// NotExpr is the prefix not.
type NotExpr struct {
	Operator lexer.Token
	Operand  Expr
}

func (n *NotExpr) Pos() lexer.Position { return n.Operator.Position }
func (n *NotExpr) End() lexer.Position { return n.Operand.End() }
func (n *NotExpr) exprNode()           {}
func (n *NotExpr) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitNot(n, parent) }
func (n *NotExpr) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerNot(n, parent)
}

// BinaryExpr covers arithmetic, comparison and the non-short-circuit
// logical operators. Operator.Type identifies which.
type BinaryExpr struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

func (b *BinaryExpr) Pos() lexer.Position { return b.Left.Pos() }
func (b *BinaryExpr) End() lexer.Position { return b.Right.End() }
func (b *BinaryExpr) exprNode()           {}
func (b *BinaryExpr) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitBinary(b, parent) }
func (b *BinaryExpr) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerBinary(b, parent)
}

// CallExpr invokes a user function by inline expansion.
type CallExpr struct {
	Name       lexer.Token
	LeftParen  lexer.Token
	RightParen lexer.Token
}

func (c *CallExpr) Pos() lexer.Position { return c.Name.Position }
func (c *CallExpr) End() lexer.Position { return c.RightParen.Span().End }
func (c *CallExpr) exprNode()           {}
func (c *CallExpr) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitCall(c, parent) }
func (c *CallExpr) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerCall(c, parent)
}

// IntrinsicExpr is sumi(a, b) or sumf(a, b), lowered to a real call.
type IntrinsicExpr struct {
	Name       lexer.Token
	LeftParen  lexer.Token
	Left       Expr
	Comma      lexer.Token
	Right      Expr
	RightParen lexer.Token
}

func (i *IntrinsicExpr) Pos() lexer.Position { return i.Name.Position }
func (i *IntrinsicExpr) End() lexer.Position { return i.RightParen.Span().End }
func (i *IntrinsicExpr) exprNode()           {}
func (i *IntrinsicExpr) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitIntrinsic(i, parent) }
func (i *IntrinsicExpr) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerIntrinsic(i, parent)
}

// InputExpr reads a line on the host while compiling.
type InputExpr struct {
	Keyword    lexer.Token
	LeftParen  lexer.Token
	Prompt     Expr // nil when no prompt is given
	RightParen lexer.Token
}

func (i *InputExpr) Pos() lexer.Position { return i.Keyword.Position }
func (i *InputExpr) End() lexer.Position { return i.RightParen.Span().End }
func (i *InputExpr) exprNode()           {}
func (i *InputExpr) Tree(v ParseTreeVisitor, parent *diag.Node) { v.VisitInput(i, parent) }
func (i *InputExpr) Lower(v LoweringVisitor, parent *diag.Node) (types.Value, error) {
	return v.LowerInput(i, parent)
}
