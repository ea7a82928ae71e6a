package semantic

import (
	"errors"
	"strings"
	"testing"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
	"github.com/nalgeon/be"

	"github.com/hassan/minic/internal/codegen"
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/parser"
	"github.com/hassan/minic/internal/symtab"
)

// lines is a Host that replays canned input and records prompts.
type lines struct {
	input   []string
	prompts []string
}

func (l *lines) Input(prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if len(l.input) == 0 {
		return "", errors.New("no more input")
	}
	line := l.input[0]
	l.input = l.input[1:]
	return line, nil
}

type run struct {
	ctx   *codegen.Context
	state *symtab.State
	tree  *diag.Node
	err   error
}

func lower(t *testing.T, source string, host Host) run {
	t.Helper()
	prog, errs := parser.Parse(source, "test.mc")
	be.Equal(t, len(errs), 0)

	r := run{ctx: codegen.New(codegen.DefaultOptions()), state: symtab.New()}
	r.tree = diag.New("main")
	r.err = New(r.ctx, r.state, host).Lower(prog, r.tree)
	if r.err == nil {
		be.Equal(t, r.ctx.Finish(false), []error(nil))
	} else {
		r.ctx.Finish(true)
	}
	return r
}

func mustLower(t *testing.T, source string) run {
	t.Helper()
	r := lower(t, source, nil)
	be.Err(t, r.err, nil)
	return r
}

func count[T llir.Instruction](fn *llir.Func) int {
	n := 0
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			if _, ok := inst.(T); ok {
				n++
			}
		}
	}
	return n
}

func block(fn *llir.Func, name string) *llir.Block {
	for _, b := range fn.Blocks {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

func calls(b *llir.Block, callee *llir.Func) []*llir.InstCall {
	var out []*llir.InstCall
	for _, inst := range b.Insts {
		if call, ok := inst.(*llir.InstCall); ok && call.Callee == callee {
			out = append(out, call)
		}
	}
	return out
}

func label(v value.Value) string {
	return strings.TrimPrefix(v.Ident(), "%")
}

func brTarget(t *testing.T, b *llir.Block) string {
	t.Helper()
	br, ok := b.Term.(*llir.TermBr)
	be.True(t, ok)
	return label(br.Target)
}

func TestLower_DeclarationsAndPrint(t *testing.T) {
	r := mustLower(t, "let a = 5 - 2; let b = 5; print(a);")
	main := r.ctx.Main

	be.Equal(t, count[*llir.InstAlloca](main), 2)
	be.Equal(t, count[*llir.InstSub](main), 1)
	be.Equal(t, count[*llir.InstStore](main), 2)
	be.Equal(t, count[*llir.InstLoad](main), 1)
	be.Equal(t, len(calls(main.Blocks[0], r.ctx.Printf)), 1)

	a, ok := r.state.Lookup("a")
	be.True(t, ok)
	b, _ := r.state.Lookup("b")
	be.True(t, a.Slot != b.Slot)
	be.Equal(t, a.Owner, "main")
	be.Equal(t, b.Value.String(), "5")
}

func TestLower_IfElse(t *testing.T) {
	r := mustLower(t, "if (1 < 2) { print(1); } else { print(0); }")
	main := r.ctx.Main

	entry := main.Blocks[0]
	condBr, ok := entry.Term.(*llir.TermCondBr)
	be.True(t, ok)
	be.Equal(t, label(condBr.TargetTrue), "if.then.0")
	be.Equal(t, label(condBr.TargetFalse), "if.else.0")

	for name, want := range map[string]int64{"if.then.0": 1, "if.else.0": 0} {
		printed := calls(block(main, name), r.ctx.Printf)
		be.Equal(t, len(printed), 1)
		arg := printed[0].Args[1].(*constant.Int)
		be.Equal(t, arg.X.Int64(), want)
		be.Equal(t, brTarget(t, block(main, name)), "if.end.0")
	}
	be.Equal(t, count[*llir.InstICmp](main), 1)
}

func TestLower_IfWithoutElse(t *testing.T) {
	r := mustLower(t, "int x = 1; if (x) { x = 2; }")
	main := r.ctx.Main
	be.Equal(t, len(block(main, "if.else.0").Insts), 0)
	be.Equal(t, brTarget(t, block(main, "if.else.0")), "if.end.0")
}

func TestLower_Reassignment(t *testing.T) {
	r := mustLower(t, "int x = 5; x = 5;")
	be.Equal(t, count[*llir.InstStore](r.ctx.Main), 2)

	r = mustLower(t, "int x = 5; x = sumi(x, 1);")
	x, _ := r.state.Lookup("x")
	be.Equal(t, x.Type.String(), "INT")
	be.Equal(t, count[*llir.InstStore](r.ctx.Main), 2)
}

func TestLower_ReassignmentWrongSlotType(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"float into int", "int x = 5;\nprint(1);\nx = 1.5;", "test.mc:3:5: LogicError: no matching lowering rule for storing FLT into INT <x>"},
		{"int into float", "flt y = 1.5; y = 2;", "no matching lowering rule for storing INT into FLT <y>"},
		{"bool into int", "int x = 5; x = 1 < 2;", "no matching lowering rule for storing BOOL into INT <x>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lower(t, tt.source, nil)
			var logic *symtab.LogicError
			be.True(t, errors.As(r.err, &logic))
			be.Err(t, r.err, tt.want)
			be.Equal(t, count[*llir.InstStore](r.ctx.Main), 1)
		})
	}

	r := lower(t, "int x = 5;\nprint(1);\nx = 1.5;", nil)
	x, _ := r.state.Lookup("x")
	be.Equal(t, x.Value.String(), "5")
	be.Equal(t, strings.Join(r.tree.Leaves(), ""), "intx=5;print(1);x=1.5")
}

func TestLower_Redeclaration(t *testing.T) {
	r := lower(t, "int x = 5; int x = 5;", nil)
	var immutable *symtab.ImmutableError
	be.True(t, errors.As(r.err, &immutable))
	be.Err(t, r.err, "test.mc:1:16: ImmutableError: variable <x> is already declared")

	x, _ := r.state.Lookup("x")
	be.Equal(t, x.Value.String(), "5")
}

func TestLower_LogicErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"type mismatch", "int x = 2.5;", "type mismatch: <x> declared INT, got FLT"},
		{"let with comparison", "let c = 1 < 2;", "type mismatch: <c> declared by let, got BOOL"},
		{"undefined read", "print(y);", "test.mc:1:7: LogicError: Unknown name: <y> is not defined"},
		{"undefined assignment", "y = 1;", "test.mc:1:1: LogicError: Unknown name: <y> is not defined"},
		{"not float", "let v = not 1.5;", "no matching lowering rule for not FLT"},
		{"float and", "let v = 1.5 and 2.5;", "no matching lowering rule for FLT and FLT"},
		{"sumf on integers", "let s = sumf(1, 2);", "no matching lowering rule for sumf(INT, INT)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lower(t, tt.source, nil)
			var logic *symtab.LogicError
			be.True(t, errors.As(r.err, &logic))
			be.Err(t, r.err, tt.want)
		})
	}
}

func TestLower_OperatorFamilies(t *testing.T) {
	r := mustLower(t, "flt a = 1.5 + 2.5; flt b = a * 2.0 / 4.0 - 1.0; print(a > b);")
	main := r.ctx.Main
	be.Equal(t, count[*llir.InstFAdd](main), 1)
	be.Equal(t, count[*llir.InstFMul](main), 1)
	be.Equal(t, count[*llir.InstFDiv](main), 1)
	be.Equal(t, count[*llir.InstFSub](main), 1)
	be.Equal(t, count[*llir.InstAdd](main), 0)

	r = lower(t, "int a = 7 / 2 * 3 + 1 - 1; print(a == 3); print(a and 1 or 0);", nil)
	be.Err(t, r.err, nil)
	main = r.ctx.Main
	be.Equal(t, count[*llir.InstSDiv](main), 1)
	be.Equal(t, count[*llir.InstMul](main), 1)
	be.Equal(t, count[*llir.InstAdd](main), 1)
	be.Equal(t, count[*llir.InstSub](main), 1)
	be.Equal(t, count[*llir.InstICmp](main), 1)
	be.Equal(t, count[*llir.InstAnd](main), 1)
	be.Equal(t, count[*llir.InstOr](main), 1)
	be.Equal(t, count[*llir.InstFAdd](main), 0)
}

func TestLower_MixedOperands(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"int left", "int a = 1; flt b = 2.0; print(a + b);", "test.mc:1:33: LogicError: no matching lowering rule for INT + FLT"},
		{"int constant left", "let m = 1 + 2.5;", "no matching lowering rule for INT + FLT"},
		{"float left", "flt b = 2.0; print(b * 3);", "no matching lowering rule for FLT * INT"},
		{"float comparison", "print(2.5 < 3);", "no matching lowering rule for FLT < INT"},
		{"bool and int", "int a = 3; print((a < 5) and a);", "no matching lowering rule for BOOL and INT"},
		{"int or bool", "int a = 3; print(a or (a < 5));", "no matching lowering rule for INT or BOOL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lower(t, tt.source, nil)
			var logic *symtab.LogicError
			be.True(t, errors.As(r.err, &logic))
			be.Err(t, r.err, tt.want)
			main := r.ctx.Main
			be.Equal(t, count[*llir.InstAdd](main)+count[*llir.InstFMul](main)+count[*llir.InstAnd](main)+count[*llir.InstOr](main), 0)
		})
	}
}

func TestLower_BoolLogic(t *testing.T) {
	r := mustLower(t, "int a = 3; print((a < 5) and (a > 1) or (a == 0));")
	main := r.ctx.Main
	be.Equal(t, count[*llir.InstAnd](main), 1)
	be.Equal(t, count[*llir.InstOr](main), 1)
	be.Equal(t, count[*llir.InstZExt](main), 1)
}

func TestLower_EvaluationOrder(t *testing.T) {
	host := &lines{input: []string{"1", "2"}}
	r := lower(t, "let v = input(10) - input(20);", host)
	be.Err(t, r.err, nil)
	be.Equal(t, host.prompts, []string{"10", "20"})
}

func TestLower_Not(t *testing.T) {
	r := mustLower(t, "let v = not 0; print(!(1 < 2));")
	be.Equal(t, count[*llir.InstXor](r.ctx.Main), 2)
}

func TestLower_NestedBreak(t *testing.T) {
	r := mustLower(t, "int i = 0; while (i < 3) { while (i < 2) { break; } break; }")
	main := r.ctx.Main
	be.Equal(t, brTarget(t, block(main, "while.body.1")), "while.end.1")
	be.Equal(t, brTarget(t, block(main, "while.end.1")), "while.end.0")
	be.Equal(t, r.state.LoopDepth(), 0)
}

func TestLower_Continue(t *testing.T) {
	r := mustLower(t, "int i = 0; while (i < 3) { i = i + 1; continue; }")
	main := r.ctx.Main
	be.Equal(t, brTarget(t, block(main, "while.body.0")), "while.body.0")
	be.True(t, block(main, "dead.0") != nil)
}

func TestLower_WhileRetestsCondition(t *testing.T) {
	r := mustLower(t, "int i = 3; while (i > 0) { i = i - 1; }")
	main := r.ctx.Main
	body := block(main, "while.body.0")
	condBr, ok := body.Term.(*llir.TermCondBr)
	be.True(t, ok)
	be.Equal(t, label(condBr.TargetTrue), "while.body.0")
	be.Equal(t, label(condBr.TargetFalse), "while.end.0")
	be.Equal(t, count[*llir.InstICmp](main), 2)
	be.True(t, r.ctx.Builder.Current().Name() == "while.end.0")
}

func TestLower_LoopOutsideLoop(t *testing.T) {
	for _, source := range []string{"break;", "continue;"} {
		r := lower(t, source, nil)
		var lookup *symtab.LookupError
		be.True(t, errors.As(r.err, &lookup))
		be.Equal(t, lookup.Kind, symtab.LookupLoop)
	}
}

func TestLower_LoopPoppedOnFailure(t *testing.T) {
	r := lower(t, "while (1) { while (1) { y = 1; } }", nil)
	be.Err(t, r.err, "<y> is not defined")
	be.Equal(t, r.state.LoopDepth(), 0)
	be.True(t, strings.Contains(r.ctx.String(), "unreachable"))
}

func TestLower_InlineCall(t *testing.T) {
	r := mustLower(t, "function f() { int z = 1; print(z); } f(); print(z);")
	main := r.ctx.Main
	be.Equal(t, len(r.ctx.Module.Funcs), 4)
	be.Equal(t, len(calls(main.Blocks[0], r.ctx.Printf)), 2)

	fn, ok := r.state.LookupFunction("f")
	be.True(t, ok)
	be.Equal(t, fn.Name, "f")
	_, ok = r.state.Lookup("z")
	be.True(t, ok)
}

func TestLower_InlineTwice(t *testing.T) {
	r := mustLower(t, "function f() { print(1); } f(); f();")
	be.Equal(t, len(calls(r.ctx.Main.Blocks[0], r.ctx.Printf)), 2)
}

func TestLower_CallErrors(t *testing.T) {
	r := lower(t, "g();", nil)
	var lookup *symtab.LookupError
	be.True(t, errors.As(r.err, &lookup))
	be.Err(t, r.err, "LookupError: function <g> is not defined")

	r = lower(t, "function f() { f(); } f();", nil)
	be.True(t, errors.Is(r.err, ErrInlineDepth))
}

func TestLower_Intrinsics(t *testing.T) {
	r := mustLower(t, "let s = sumi(1, 2); let f = SUMF(1.5, 2.5);")
	main := r.ctx.Main.Blocks[0]
	be.Equal(t, len(calls(main, r.ctx.Sum)), 1)
	be.Equal(t, len(calls(main, r.ctx.FSum)), 1)

	s, _ := r.state.Lookup("s")
	be.Equal(t, s.Type.String(), "INT")
	f, _ := r.state.Lookup("f")
	be.Equal(t, f.Type.String(), "FLT")
}

func TestLower_Input(t *testing.T) {
	host := &lines{input: []string{"-3.25", "abc"}}
	r := lower(t, "let v = input(); print(v); print(input(1));", host)

	v, ok := r.state.Lookup("v")
	be.True(t, ok)
	be.Equal(t, v.Type.String(), "FLT")
	be.Equal(t, v.Value.String(), "-3.25")

	var logic *symtab.LogicError
	be.True(t, errors.As(r.err, &logic))
	be.Err(t, r.err, "no matching lowering rule for a STR value")
	be.Equal(t, host.prompts, []string{"", "1"})
}

func TestLower_InputErrors(t *testing.T) {
	r := lower(t, "let v = input();", nil)
	be.Err(t, r.err, "input is not available")

	r = lower(t, "let v = input();", &lines{})
	be.Err(t, r.err, "read input: no more input")
}

func TestLower_Tree(t *testing.T) {
	r := mustLower(t, "function f() { print(1); } f();")

	decl := r.tree.Find("statement_full")
	labels := make([]string, len(decl.Children))
	for i, child := range decl.Children {
		labels[i] = child.Label
	}
	be.Equal(t, labels, []string{"function", "IDENTIFIER", "(", ")", "{", "block", "}"})
	be.True(t, decl.Children[5].IsLeaf())

	call := r.tree.Find("program").Find("expression")
	be.True(t, call.Find("print") != nil)
}

func TestLower_TreeTruncatedOnError(t *testing.T) {
	r := lower(t, "print(1); print(y); print(2);", nil)
	be.True(t, r.err != nil)
	be.Equal(t, strings.Join(r.tree.Leaves(), ""), "print(1);print(y")
}
