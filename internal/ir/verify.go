package ir

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Verify checks that the module is well formed: every block of every
// defined function ends with a terminator and no branch targets an entry
// block. It also checks operand types, since llir builds arithmetic,
// comparisons and branches without looking at them.
func Verify(m *llir.Module) []error {
	var errs []error
	for _, fn := range m.Funcs {
		if len(fn.Blocks) == 0 {
			continue
		}
		entry := fn.Blocks[0]
		for _, block := range fn.Blocks {
			for _, inst := range block.Insts {
				if err := checkOperands(inst); err != nil {
					errs = append(errs, fmt.Errorf("%w in block %s of function %s", err, block.Name(), fn.Name()))
				}
			}
			if block.Term == nil {
				errs = append(errs, fmt.Errorf("block %s in function %s has no terminator",
					block.Name(), fn.Name()))
				continue
			}
			if br, ok := block.Term.(*llir.TermCondBr); ok && !br.Cond.Type().Equal(lltypes.I1) {
				errs = append(errs, fmt.Errorf("branch condition of type %s in block %s of function %s",
					br.Cond.Type(), block.Name(), fn.Name()))
			}
			for _, succ := range block.Term.Succs() {
				if succ == entry {
					errs = append(errs, fmt.Errorf("entry block of function %s has predecessors",
						fn.Name()))
				}
			}
		}
	}
	return errs
}

func checkOperands(inst llir.Instruction) error {
	if store, ok := inst.(*llir.InstStore); ok {
		ptr, ok := store.Dst.Type().(*lltypes.PointerType)
		if !ok || !ptr.ElemType.Equal(store.Src.Type()) {
			return fmt.Errorf("store of %s into %s", store.Src.Type(), store.Dst.Type())
		}
		return nil
	}
	op, x, y, ok := binaryOperands(inst)
	if ok && !x.Type().Equal(y.Type()) {
		return fmt.Errorf("%s with operands of type %s and %s", op, x.Type(), y.Type())
	}
	return nil
}

// binaryOperands returns the opcode and operands of the two-operand
// instructions the compiler emits.
func binaryOperands(inst llir.Instruction) (op string, x, y value.Value, ok bool) {
	switch inst := inst.(type) {
	case *llir.InstAdd:
		return "add", inst.X, inst.Y, true
	case *llir.InstSub:
		return "sub", inst.X, inst.Y, true
	case *llir.InstMul:
		return "mul", inst.X, inst.Y, true
	case *llir.InstSDiv:
		return "sdiv", inst.X, inst.Y, true
	case *llir.InstAnd:
		return "and", inst.X, inst.Y, true
	case *llir.InstOr:
		return "or", inst.X, inst.Y, true
	case *llir.InstXor:
		return "xor", inst.X, inst.Y, true
	case *llir.InstFAdd:
		return "fadd", inst.X, inst.Y, true
	case *llir.InstFSub:
		return "fsub", inst.X, inst.Y, true
	case *llir.InstFMul:
		return "fmul", inst.X, inst.Y, true
	case *llir.InstFDiv:
		return "fdiv", inst.X, inst.Y, true
	case *llir.InstICmp:
		return "icmp", inst.X, inst.Y, true
	case *llir.InstFCmp:
		return "fcmp", inst.X, inst.Y, true
	}
	return "", nil, nil, false
}
