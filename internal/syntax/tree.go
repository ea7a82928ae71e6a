// Package syntax is the diagnostic-only pass: it walks the AST and
// rebuilds the grammar-shaped tree without touching compiler state or IR.
package syntax

import (
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser/ast"
)

// Root is the label of the tree's root node.
const Root = "main"

// Tree returns the diagnostic tree of prog.
func Tree(prog *ast.Program) *diag.Node {
	root := diag.New(Root)
	prog.Tree(builder{}, root)
	return root
}

// builder implements ast.ParseTreeVisitor. It is stateless.
type builder struct{}

var _ ast.ParseTreeVisitor = builder{}

// chain appends the right-recursive list production label over stmts:
// label[statement_full, label[statement_full, ...]].
func (b builder) chain(label string, stmts []ast.Stmt, parent *diag.Node) {
	cur := parent
	for _, stmt := range stmts {
		node := cur.Child(label)
		stmt.Tree(b, node)
		cur = node
	}
}

func (b builder) VisitProgram(n *ast.Program, parent *diag.Node) {
	b.chain("program", n.Statements, parent)
}

func (b builder) VisitBlock(n *ast.Block, parent *diag.Node) {
	parent.Add(n.LeftBrace.Lexeme)
	b.chain("block", n.Statements, parent)
	parent.Add(n.RightBrace.Lexeme)
}

func (b builder) VisitTerminated(n *ast.Terminated, parent *diag.Node) {
	full := parent.Child("statement_full")
	n.Statement.Tree(b, full.Child("statement"))
	full.Add(n.Semicolon.Lexeme)
}

func (b builder) VisitExprStmt(n *ast.ExprStmt, parent *diag.Node) {
	n.Expression.Tree(b, parent)
}

func (b builder) VisitBreak(n *ast.BreakStmt, parent *diag.Node) {
	parent.Add(n.Keyword.Lexeme)
}

func (b builder) VisitContinue(n *ast.ContinueStmt, parent *diag.Node) {
	parent.Add(n.Keyword.Lexeme)
}

func (b builder) VisitDecl(n *ast.DeclStmt, parent *diag.Node) {
	decl := parent.Child("declaration")
	decl.Add(n.Keyword.Lexeme)
	identifier(decl, n.Name)
	decl.Add(n.Assign.Lexeme)
	n.Value.Tree(b, decl)
}

func (b builder) VisitAssign(n *ast.AssignStmt, parent *diag.Node) {
	assign := parent.Child("assignment")
	identifier(assign, n.Name)
	assign.Add(n.Assign.Lexeme)
	n.Value.Tree(b, assign)
}

func (b builder) VisitPrint(n *ast.PrintStmt, parent *diag.Node) {
	p := parent.Child("print")
	p.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	if n.Argument != nil {
		n.Argument.Tree(b, p)
	}
	p.Add(n.RightParen.Lexeme)
}

func (b builder) VisitIf(n *ast.IfStmt, parent *diag.Node) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	n.Condition.Tree(b, full)
	full.Add(n.RightParen.Lexeme)
	n.Then.Tree(b, full)
	if n.Else != nil {
		full.Add(n.Else.Keyword.Lexeme)
		n.Else.Body.Tree(b, full)
	}
}

func (b builder) VisitWhile(n *ast.WhileStmt, parent *diag.Node) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	n.Condition.Tree(b, full)
	full.Add(n.RightParen.Lexeme)
	n.Body.Tree(b, full)
}

func (b builder) VisitFuncDecl(n *ast.FuncDecl, parent *diag.Node) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme)
	identifier(full, n.Name)
	full.Add(n.LeftParen.Lexeme, n.RightParen.Lexeme)
	n.Body.Tree(b, full)
}

func (b builder) VisitInteger(n *ast.IntegerLit, parent *diag.Node) {
	parent.Child("expression").Child("const").Child("INTEGER").Add(n.Token.Lexeme)
}

func (b builder) VisitFloat(n *ast.FloatLit, parent *diag.Node) {
	parent.Child("expression").Child("const").Child("FLOAT").Add(n.Token.Lexeme)
}

func (b builder) VisitIdentifier(n *ast.Identifier, parent *diag.Node) {
	identifier(parent.Child("expression"), n.Token)
}

func (b builder) VisitGrouping(n *ast.Grouping, parent *diag.Node) {
	expr := parent.Child("expression")
	expr.Add(n.LeftParen.Lexeme)
	n.Inner.Tree(b, expr)
	expr.Add(n.RightParen.Lexeme)
}

func (b builder) VisitNot(n *ast.NotExpr, parent *diag.Node) {
	expr := parent.Child("expression")
	expr.Add(n.Operator.Lexeme)
	n.Operand.Tree(b, expr)
}

func (b builder) VisitBinary(n *ast.BinaryExpr, parent *diag.Node) {
	expr := parent.Child("expression")
	n.Left.Tree(b, expr)
	expr.Add(n.Operator.Lexeme)
	n.Right.Tree(b, expr)
}

func (b builder) VisitCall(n *ast.CallExpr, parent *diag.Node) {
	expr := parent.Child("expression")
	identifier(expr, n.Name)
	expr.Add(n.LeftParen.Lexeme, n.RightParen.Lexeme)
}

func (b builder) VisitIntrinsic(n *ast.IntrinsicExpr, parent *diag.Node) {
	expr := parent.Child("expression")
	expr.Add(n.Name.Lexeme, n.LeftParen.Lexeme)
	n.Left.Tree(b, expr)
	expr.Add(n.Comma.Lexeme)
	n.Right.Tree(b, expr)
	expr.Add(n.RightParen.Lexeme)
}

func (b builder) VisitInput(n *ast.InputExpr, parent *diag.Node) {
	expr := parent.Child("expression")
	expr.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	if n.Prompt != nil {
		n.Prompt.Tree(b, expr)
	}
	expr.Add(n.RightParen.Lexeme)
}

func identifier(parent *diag.Node, name lexer.Token) {
	parent.Child("IDENTIFIER").Add(name.Lexeme)
}
