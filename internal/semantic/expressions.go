package semantic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser/ast"
	"github.com/hassan/minic/internal/semantic/types"
	"github.com/hassan/minic/internal/symtab"
)

// LowerInteger yields an i8 constant. The literal is not range checked.
func (a *Analyzer) LowerInteger(n *ast.IntegerLit, parent *diag.Node) (types.Value, error) {
	parent.Child("expression").Child("const").Child("INTEGER").Add(n.Token.Lexeme)
	return types.IntValue(constant.NewInt(lltypes.I8, n.Value)), nil
}

// LowerFloat yields a float constant rounded to single precision.
func (a *Analyzer) LowerFloat(n *ast.FloatLit, parent *diag.Node) (types.Value, error) {
	parent.Child("expression").Child("const").Child("FLOAT").Add(n.Token.Lexeme)
	return types.FltValue(floatConst(n.Value)), nil
}

func floatConst(f float64) *constant.Float {
	return constant.NewFloat(lltypes.Float, float64(float32(f)))
}

// LowerIdentifier loads the variable from its slot. The result carries
// the declared tag.
func (a *Analyzer) LowerIdentifier(n *ast.Identifier, parent *diag.Node) (types.Value, error) {
	identifier(parent.Child("expression"), n.Token)

	b, ok := a.state.Lookup(n.Name)
	if !ok {
		return types.Absent, fail(n.Pos(), symtab.UndefinedVariable(n.Name))
	}
	load := a.ctx.Builder.Block().NewLoad(b.Type.IRType(), b.Slot)
	return types.Value{Tag: b.Type, IR: load}, nil
}

// LowerGrouping yields the inner value unchanged.
func (a *Analyzer) LowerGrouping(n *ast.Grouping, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	expr.Add(n.LeftParen.Lexeme)
	v, err := n.Inner.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}
	expr.Add(n.RightParen.Lexeme)
	return v, nil
}

// LowerNot flips every bit of an integer or boolean operand. Floats have
// no bitwise form.
func (a *Analyzer) LowerNot(n *ast.NotExpr, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	expr.Add(n.Operator.Lexeme)
	v, err := n.Operand.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}

	block := a.ctx.Builder.Block()
	switch v.Tag {
	case types.Int:
		return types.IntValue(block.NewXor(v.IR, constant.NewInt(lltypes.I8, -1))), nil
	case types.Bool:
		return types.BoolValue(block.NewXor(v.IR, constant.True)), nil
	}
	return types.Absent, fail(n.Pos(), symtab.Logicf("no matching lowering rule for %s %s", n.Operator.Lexeme, v.Tag))
}

// LowerBinary lowers the left operand completely, then the right one,
// then picks the instruction family from the left operand's tag alone:
// FLT selects the floating-point family, anything else the signed
// integer family. Operands are never converted, so the right operand
// must already have the left one's IR type.
func (a *Analyzer) LowerBinary(n *ast.BinaryExpr, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	left, err := n.Left.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}
	expr.Add(n.Operator.Lexeme)
	right, err := n.Right.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}

	if err := lowerable(n.Left.Pos(), left); err != nil {
		return types.Absent, err
	}
	if err := lowerable(n.Right.Pos(), right); err != nil {
		return types.Absent, err
	}

	unmatched := fail(n.Operator.Position,
		symtab.Logicf("no matching lowering rule for %s %s %s", left.Tag, n.Operator.Lexeme, right.Tag))
	if !left.IR.Type().Equal(right.IR.Type()) {
		return types.Absent, unmatched
	}

	var v types.Value
	var ok bool
	if left.IsFloat() {
		v, ok = floatBinary(a.ctx.Builder.Block(), n.Operator.Type, left, right)
	} else {
		v, ok = intBinary(a.ctx.Builder.Block(), n.Operator.Type, left, right)
	}
	if !ok {
		return types.Absent, unmatched
	}
	return v, nil
}

var (
	intPredicates = map[lexer.TokenType]enum.IPred{
		lexer.TokenEqual:        enum.IPredEQ,
		lexer.TokenNotEqual:     enum.IPredNE,
		lexer.TokenGreaterEqual: enum.IPredSGE,
		lexer.TokenLessEqual:    enum.IPredSLE,
		lexer.TokenGreater:      enum.IPredSGT,
		lexer.TokenLess:         enum.IPredSLT,
	}
	floatPredicates = map[lexer.TokenType]enum.FPred{
		lexer.TokenEqual:        enum.FPredOEQ,
		lexer.TokenNotEqual:     enum.FPredONE,
		lexer.TokenGreaterEqual: enum.FPredOGE,
		lexer.TokenLessEqual:    enum.FPredOLE,
		lexer.TokenGreater:      enum.FPredOGT,
		lexer.TokenLess:         enum.FPredOLT,
	}
)

// intBinary covers Int and Bool left operands. Division is signed and
// unchecked; and/or are bitwise and evaluate both sides.
func intBinary(block *llir.Block, op lexer.TokenType, l, r types.Value) (types.Value, bool) {
	if pred, ok := intPredicates[op]; ok {
		return types.BoolValue(block.NewICmp(pred, l.IR, r.IR)), true
	}
	var inst value.Value
	switch op {
	case lexer.TokenPlus:
		inst = block.NewAdd(l.IR, r.IR)
	case lexer.TokenMinus:
		inst = block.NewSub(l.IR, r.IR)
	case lexer.TokenStar:
		inst = block.NewMul(l.IR, r.IR)
	case lexer.TokenSlash:
		inst = block.NewSDiv(l.IR, r.IR)
	case lexer.TokenAnd:
		inst = block.NewAnd(l.IR, r.IR)
	case lexer.TokenOr:
		inst = block.NewOr(l.IR, r.IR)
	default:
		return types.Absent, false
	}
	return types.Value{Tag: l.Tag, IR: inst}, true
}

func floatBinary(block *llir.Block, op lexer.TokenType, l, r types.Value) (types.Value, bool) {
	if pred, ok := floatPredicates[op]; ok {
		return types.BoolValue(block.NewFCmp(pred, l.IR, r.IR)), true
	}
	var inst value.Value
	switch op {
	case lexer.TokenPlus:
		inst = block.NewFAdd(l.IR, r.IR)
	case lexer.TokenMinus:
		inst = block.NewFSub(l.IR, r.IR)
	case lexer.TokenStar:
		inst = block.NewFMul(l.IR, r.IR)
	case lexer.TokenSlash:
		inst = block.NewFDiv(l.IR, r.IR)
	default:
		return types.Absent, false
	}
	return types.FltValue(inst), true
}

// LowerCall expands the function body in place. The body shares the
// caller's state: no parameters are bound, no frame is created, and
// declarations made inside stay visible afterwards. The call yields the
// value of the body's last statement.
func (a *Analyzer) LowerCall(n *ast.CallExpr, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	identifier(expr, n.Name)
	expr.Add(n.LeftParen.Lexeme, n.RightParen.Lexeme)

	fn, ok := a.state.LookupFunction(n.Name.Lexeme)
	if !ok {
		return types.Absent, fail(n.Pos(), &symtab.LookupError{Kind: symtab.LookupFunction, Name: n.Name.Lexeme})
	}
	return a.inline(fn, n.Pos(), expr)
}

func (a *Analyzer) inline(fn *symtab.Function, pos lexer.Position, parent *diag.Node) (types.Value, error) {
	if a.inlining >= MaxInlineDepth {
		return types.Absent, fail(pos, fmt.Errorf("%w: <%s> at depth %d", ErrInlineDepth, fn.Name, a.inlining))
	}
	a.inlining++
	defer func() { a.inlining-- }()
	return fn.Body.Lower(a, parent)
}

// LowerIntrinsic emits a real call to sum or fsum. Both operands must
// carry the intrinsic's tag.
func (a *Analyzer) LowerIntrinsic(n *ast.IntrinsicExpr, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	expr.Add(n.Name.Lexeme, n.LeftParen.Lexeme)
	left, err := n.Left.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}
	expr.Add(n.Comma.Lexeme)
	right, err := n.Right.Lower(a, expr)
	if err != nil {
		return types.Absent, err
	}
	expr.Add(n.RightParen.Lexeme)

	tag := types.Int
	if n.Name.Type == lexer.TokenSumf {
		tag = types.Flt
	}
	callee, _ := a.ctx.Intrinsic(tag)
	if left.Tag != tag || right.Tag != tag {
		return types.Absent, fail(n.Pos(), symtab.Logicf("no matching lowering rule for %s(%s, %s)",
			strings.ToLower(n.Name.Lexeme), left.Tag, right.Tag))
	}
	call := a.ctx.Builder.Block().NewCall(callee, left.IR, right.IR)
	return types.Value{Tag: tag, IR: call}, nil
}

var numeric = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// LowerInput runs on the host while compiling: it shows the prompt,
// reads a line and yields a FLT constant when the line is a signed
// decimal, or the raw text otherwise. Nothing is emitted.
func (a *Analyzer) LowerInput(n *ast.InputExpr, parent *diag.Node) (types.Value, error) {
	expr := parent.Child("expression")
	expr.Add(n.Keyword.Lexeme, n.LeftParen.Lexeme)
	var prompt string
	if n.Prompt != nil {
		v, err := n.Prompt.Lower(a, expr)
		if err != nil {
			return types.Absent, err
		}
		prompt = v.String()
	}
	expr.Add(n.RightParen.Lexeme)

	if a.host == nil {
		return types.Absent, fail(n.Pos(), fmt.Errorf("input is not available"))
	}
	line, err := a.host.Input(prompt)
	if err != nil {
		return types.Absent, fail(n.Pos(), fmt.Errorf("read input: %w", err))
	}
	if numeric.MatchString(line) {
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return types.Absent, fail(n.Pos(), err)
		}
		return types.FltValue(floatConst(f)), nil
	}
	return types.StrValue(line), nil
}
