package ir

import (
	"errors"
	"strings"
	"testing"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func newMain() (*llir.Module, *Builder) {
	m := llir.NewModule()
	fn := m.NewFunc("main", lltypes.I32)
	return m, NewBuilder(fn)
}

func names(blocks []*llir.Block) []string {
	out := make([]string, len(blocks))
	for i, block := range blocks {
		out[i] = block.Name()
	}
	return out
}

func TestBuilder_Entry(t *testing.T) {
	_, b := newMain()
	be.Equal(t, b.Entry().Name(), "entry")
	be.True(t, b.Current() == b.Entry())
	be.True(t, !b.Terminated())
}

func TestBuilder_UniqueLabels(t *testing.T) {
	_, b := newMain()
	b.NewBlock("while.body")
	b.NewBlock("while.body")
	b.NewBlock("while.end")
	be.Equal(t, names(b.Func().Blocks), []string{"entry", "while.body.0", "while.body.1", "while.end.0"})
}

func TestBuilder_IfElse(t *testing.T) {
	m, b := newMain()
	var thenRan, elseRan bool
	err := b.IfElse(constant.True,
		func() error { thenRan = true; return nil },
		func() error { elseRan = true; return nil },
	)
	be.Err(t, err, nil)
	be.True(t, thenRan && elseRan)
	be.Equal(t, names(b.Func().Blocks), []string{"entry", "if.then.0", "if.else.0", "if.end.0"})
	be.Equal(t, b.Current().Name(), "if.end.0")

	b.Ret(constant.NewInt(lltypes.I32, 0))
	be.Equal(t, len(Verify(m)), 0)

	text := m.String()
	be.True(t, strings.Contains(text, "br i1 true, label %if.then.0, label %if.else.0"))
	be.True(t, strings.Contains(text, "br label %if.end.0"))
}

func TestBuilder_IfElseArmTerminates(t *testing.T) {
	_, b := newMain()
	exit := b.NewBlock("while.end")
	err := b.IfElse(constant.True, func() error {
		b.Br(exit)
		return nil
	}, nil)
	be.Err(t, err, nil)

	then := b.Func().Blocks[2]
	be.Equal(t, then.Name(), "if.then.0")
	be.Equal(t, then.Term.Succs()[0].Name(), "while.end.0")
}

func TestBuilder_IfElseError(t *testing.T) {
	_, b := newMain()
	err := b.IfElse(constant.True, func() error {
		return errors.New("arm failed")
	}, nil)
	be.Err(t, err, "arm failed")
	be.Equal(t, b.Current().Name(), "if.then.0")
}

func TestBuilder_DeadBlock(t *testing.T) {
	m, b := newMain()
	exit := b.NewBlock("while.end")
	b.Br(exit)
	be.True(t, b.Terminated())

	slot := b.Alloca(lltypes.I8)
	b.Block().NewStore(constant.NewInt(lltypes.I8, 1), slot)
	be.Equal(t, b.Current().Name(), "dead.0")
	be.Equal(t, len(b.Entry().Insts), 1)

	b.Br(exit)
	b.SetInsert(exit)
	b.Ret(constant.NewInt(lltypes.I32, 0))
	be.Equal(t, len(Verify(m)), 0)
}

func TestVerify(t *testing.T) {
	m, b := newMain()
	b.NewBlock("if.then")

	errs := Verify(m)
	be.Equal(t, len(errs), 2)
	be.Err(t, errs[0], "block entry in function main has no terminator")
	be.Err(t, errs[1], "block if.then.0 in function main has no terminator")

	b.Br(b.Entry())
	errs = Verify(m)
	be.Err(t, errs[0], "entry block of function main has predecessors")
}

func TestVerify_OperandTypes(t *testing.T) {
	m, b := newMain()
	slot := b.Alloca(lltypes.I8)
	entry := b.Block()
	entry.NewAdd(constant.NewInt(lltypes.I8, 1), constant.NewFloat(lltypes.Float, 2.5))
	entry.NewFCmp(enum.FPredOLT, constant.NewFloat(lltypes.Float, 2.5), constant.NewInt(lltypes.I8, 3))
	entry.Insts = append(entry.Insts, &llir.InstStore{Src: constant.NewFloat(lltypes.Float, 1.5), Dst: slot})
	entry.NewStore(constant.NewInt(lltypes.I8, 2), slot)

	exit := b.NewBlock("exit")
	b.CondBr(constant.NewInt(lltypes.I8, 1), exit, exit)
	b.SetInsert(exit)
	b.Ret(constant.NewInt(lltypes.I32, 0))

	errs := Verify(m)
	be.Equal(t, len(errs), 4)
	be.Err(t, errs[0], "add with operands of type i8 and float in block entry of function main")
	be.Err(t, errs[1], "fcmp with operands of type float and i8")
	be.Err(t, errs[2], "store of float into i8*")
	be.Err(t, errs[3], "branch condition of type i8 in block entry of function main")
}

func TestBuilder_Seal(t *testing.T) {
	m, b := newMain()
	b.NewBlock("if.then")
	b.NewBlock("if.end")
	b.Seal()

	be.Equal(t, len(Verify(m)), 0)
	be.True(t, strings.Contains(m.String(), "unreachable"))
}

func TestVerify_SkipsDeclarations(t *testing.T) {
	m := llir.NewModule()
	printf := m.NewFunc("printf", lltypes.I32, llir.NewParam("", lltypes.I8Ptr))
	printf.Sig.Variadic = true
	be.Equal(t, len(Verify(m)), 0)
}
