// Package semantic is the lowering pass. It walks the AST once, checks
// declarations and operand tags against the compiler state and emits
// LLVM IR through the compilation context, while growing the same
// grammar-shaped diagnostic tree as the syntax pass.
//
// Lowering stops at the first error. The tree, the state and the IR
// reflect the work done up to that point.
package semantic

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/codegen"
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser/ast"
	"github.com/hassan/minic/internal/semantic/types"
	"github.com/hassan/minic/internal/symtab"
)

// MaxInlineDepth bounds nested inline expansion. A function that calls
// itself expands until it hits this limit.
const MaxInlineDepth = 64

// ErrInlineDepth is returned when inline expansion nests too deeply.
var ErrInlineDepth = errors.New("inline expansion exceeds maximum depth")

// Analyzer implements ast.LoweringVisitor.
type Analyzer struct {
	ctx   *codegen.Context
	state *symtab.State
	host  Host

	// inlining counts the calls currently being expanded.
	inlining int
}

var _ ast.LoweringVisitor = (*Analyzer)(nil)

// New returns an analyzer that lowers into ctx and records bindings in
// state. host serves input expressions; it may be nil when the program
// reads nothing.
func New(ctx *codegen.Context, state *symtab.State, host Host) *Analyzer {
	return &Analyzer{ctx: ctx, state: state, host: host}
}

// Lower lowers prog into the entry routine and grows the diagnostic tree
// under root. The caller owns root, so whatever was appended before a
// failure or a panic stays visible.
func (a *Analyzer) Lower(prog *ast.Program, root *diag.Node) error {
	_, err := prog.Lower(a, root)
	return err
}

// fail attaches a source position to err.
func fail(pos lexer.Position, err error) error {
	return fmt.Errorf("%s: %w", pos, err)
}

// sequence lowers stmts as the right-recursive list production label
// and yields the value of the last statement.
func (a *Analyzer) sequence(label string, stmts []ast.Stmt, parent *diag.Node) (types.Value, error) {
	result := types.Absent
	cur := parent
	for _, stmt := range stmts {
		node := cur.Child(label)
		v, err := stmt.Lower(a, node)
		if err != nil {
			return types.Absent, err
		}
		result = v
		cur = node
	}
	return result, nil
}

// LowerProgram lowers the top-level statements as a "program" chain.
func (a *Analyzer) LowerProgram(n *ast.Program, parent *diag.Node) (types.Value, error) {
	return a.sequence("program", n.Statements, parent)
}

// LowerBlock lowers a braced body as a "block" chain. It opens no new
// scope.
func (a *Analyzer) LowerBlock(n *ast.Block, parent *diag.Node) (types.Value, error) {
	parent.Add(n.LeftBrace.Lexeme)
	v, err := a.sequence("block", n.Statements, parent)
	if err != nil {
		return types.Absent, err
	}
	parent.Add(n.RightBrace.Lexeme)
	return v, nil
}

// LowerTerminated wraps a simple statement in statement_full and yields
// its value.
func (a *Analyzer) LowerTerminated(n *ast.Terminated, parent *diag.Node) (types.Value, error) {
	full := parent.Child("statement_full")
	v, err := n.Statement.Lower(a, full.Child("statement"))
	if err != nil {
		return types.Absent, err
	}
	full.Add(n.Semicolon.Lexeme)
	return v, nil
}

func (a *Analyzer) LowerExprStmt(n *ast.ExprStmt, parent *diag.Node) (types.Value, error) {
	return n.Expression.Lower(a, parent)
}

// LowerBreak branches to the exit of the innermost loop. Code that
// follows lands in an unreachable block.
func (a *Analyzer) LowerBreak(n *ast.BreakStmt, parent *diag.Node) (types.Value, error) {
	parent.Add(n.Keyword.Lexeme)
	loop, err := a.state.Loop("break")
	if err != nil {
		return types.Absent, fail(n.Pos(), err)
	}
	a.ctx.Builder.Br(loop.Break)
	return types.Absent, nil
}

// LowerContinue branches to the top of the loop body. The condition is
// not re-tested on the way in.
func (a *Analyzer) LowerContinue(n *ast.ContinueStmt, parent *diag.Node) (types.Value, error) {
	parent.Add(n.Keyword.Lexeme)
	loop, err := a.state.Loop("continue")
	if err != nil {
		return types.Absent, fail(n.Pos(), err)
	}
	a.ctx.Builder.Br(loop.Continue)
	return types.Absent, nil
}

// LowerDecl allocates a slot for a new variable and stores its initial
// value. The value's tag must equal the annotation; let takes the tag
// of the value.
func (a *Analyzer) LowerDecl(n *ast.DeclStmt, parent *diag.Node) (types.Value, error) {
	decl := parent.Child("declaration")
	decl.Add(n.Keyword.Lexeme)
	identifier(decl, n.Name)
	decl.Add(n.Assign.Lexeme)

	name := n.Name.Lexeme
	if _, bound := a.state.Lookup(name); bound {
		return types.Absent, fail(n.Name.Position, &symtab.ImmutableError{Name: name})
	}

	v, err := n.Value.Lower(a, decl)
	if err != nil {
		return types.Absent, err
	}

	tag := v.Tag
	if !n.Inferred() {
		tag, _ = types.FromAnnotation(n.Keyword.Lexeme)
	}
	if !tag.Declarable() || v.Tag != tag {
		return types.Absent, fail(n.Value.Pos(),
			symtab.Logicf("type mismatch: <%s> declared %s, got %s", name, annotation(n, tag), v.Tag))
	}

	slot := a.ctx.Builder.Alloca(tag.IRType())
	a.ctx.Builder.Block().NewStore(v.IR, slot)

	b, err := a.state.Declare(name, v, tag, slot)
	if err != nil {
		return types.Absent, fail(n.Name.Position, err)
	}
	b.Owner = a.ctx.Main.Name()
	b.Pos = n.Name.Position
	return v, nil
}

func annotation(n *ast.DeclStmt, tag types.Tag) string {
	if n.Inferred() {
		return "by let"
	}
	return tag.String()
}

// LowerAssign overwrites an existing variable. The declared tag is not
// re-checked, but the value is stored without conversion and so must
// have the slot's IR type.
func (a *Analyzer) LowerAssign(n *ast.AssignStmt, parent *diag.Node) (types.Value, error) {
	assign := parent.Child("assignment")
	identifier(assign, n.Name)
	assign.Add(n.Assign.Lexeme)

	name := n.Name.Lexeme
	b, bound := a.state.Lookup(name)
	if !bound {
		return types.Absent, fail(n.Name.Position, symtab.UndefinedVariable(name))
	}

	v, err := n.Value.Lower(a, assign)
	if err != nil {
		return types.Absent, err
	}
	if err := lowerable(n.Value.Pos(), v); err != nil {
		return types.Absent, err
	}

	if slot := b.Type.IRType(); !v.IR.Type().Equal(slot) {
		return types.Absent, fail(n.Value.Pos(),
			symtab.Logicf("no matching lowering rule for storing %s into %s <%s>", v.Tag, b.Type, name))
	}

	a.ctx.Builder.Block().NewStore(v.IR, b.Slot)
	if _, err := a.state.Assign(name, v); err != nil {
		return types.Absent, fail(n.Name.Position, err)
	}
	return v, nil
}

// LowerPrint emits one printf call. print() prints a blank line.
func (a *Analyzer) LowerPrint(n *ast.PrintStmt, parent *diag.Node) (types.Value, error) {
	p := parent.Child("print")
	p.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)

	v := types.Absent
	if n.Argument != nil {
		var err error
		if v, err = n.Argument.Lower(a, p); err != nil {
			return types.Absent, err
		}
		if err := lowerable(n.Argument.Pos(), v); err != nil {
			return types.Absent, err
		}
	}
	p.Add(n.RightParen.Lexeme)

	if _, err := a.ctx.Print(v); err != nil {
		return types.Absent, fail(n.Pos(), err)
	}
	return types.Absent, nil
}

// LowerIf emits a then/else diamond. An absent else arm is empty. The
// statement yields nothing.
func (a *Analyzer) LowerIf(n *ast.IfStmt, parent *diag.Node) (types.Value, error) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	cond, err := a.condition(n.Condition, full)
	if err != nil {
		return types.Absent, err
	}
	full.Add(n.RightParen.Lexeme)

	err = a.ctx.Builder.IfElse(cond,
		func() error {
			_, err := n.Then.Lower(a, full)
			return err
		},
		func() error {
			if n.Else == nil {
				return nil
			}
			full.Add(n.Else.Keyword.Lexeme)
			_, err := n.Else.Body.Lower(a, full)
			return err
		},
	)
	return types.Absent, err
}

// LowerWhile emits
//
//	br cond, body, exit
//	body: ... br cond', body, exit
//	exit:
//
// where cond' is the condition lowered again at the end of the body. The
// loop targets stay pushed until the loop is fully emitted or lowering
// fails.
func (a *Analyzer) LowerWhile(n *ast.WhileStmt, parent *diag.Node) (types.Value, error) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	cond, err := a.condition(n.Condition, full)
	if err != nil {
		return types.Absent, err
	}
	full.Add(n.RightParen.Lexeme)

	b := a.ctx.Builder
	body := b.NewBlock("while.body")
	exit := b.NewBlock("while.end")
	defer a.state.PushLoop(symtab.LoopTargets{Continue: body, Break: exit})()

	b.CondBr(cond, body, exit)
	b.SetInsert(body)
	if _, err := n.Body.Lower(a, full); err != nil {
		return types.Absent, err
	}

	again, err := a.condition(n.Condition, diag.New("expression"))
	if err != nil {
		return types.Absent, err
	}
	b.CondBr(again, body, exit)
	b.SetInsert(exit)
	return types.Absent, nil
}

// LowerFuncDecl records the function. Its body is lowered at each call
// site, not here.
func (a *Analyzer) LowerFuncDecl(n *ast.FuncDecl, parent *diag.Node) (types.Value, error) {
	full := parent.Child("statement_full")
	full.Add(n.Keyword.Lexeme)
	identifier(full, n.Name)
	full.Add(n.LeftParen.Lexeme, n.RightParen.Lexeme)
	full.Add(n.Body.LeftBrace.Lexeme)
	full.Child("block")
	full.Add(n.Body.RightBrace.Lexeme)

	a.state.DeclareFunction(&symtab.Function{
		Name: n.Name.Lexeme,
		Body: n.Body,
		Pos:  n.Name.Position,
	})
	return types.Absent, nil
}

// condition lowers expr to an i1. Integers and floats are compared
// against zero.
func (a *Analyzer) condition(expr ast.Expr, parent *diag.Node) (value.Value, error) {
	v, err := expr.Lower(a, parent)
	if err != nil {
		return nil, err
	}
	block := a.ctx.Builder.Block()
	switch v.Tag {
	case types.Bool:
		return v.IR, nil
	case types.Int:
		return block.NewICmp(enum.IPredNE, v.IR, constant.NewInt(lltypes.I8, 0)), nil
	case types.Flt:
		return block.NewFCmp(enum.FPredONE, v.IR, constant.NewFloat(lltypes.Float, 0)), nil
	}
	return nil, fail(expr.Pos(), symtab.Logicf("no matching lowering rule for a %s condition", v.Tag))
}

// lowerable rejects values that have no IR form.
func lowerable(pos lexer.Position, v types.Value) error {
	if v.Tag.Lowerable() {
		return nil
	}
	return fail(pos, symtab.Logicf("no matching lowering rule for a %s value", v.Tag))
}

func identifier(parent *diag.Node, name lexer.Token) {
	parent.Child("IDENTIFIER").Add(name.Lexeme)
}
