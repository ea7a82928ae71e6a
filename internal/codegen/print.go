package codegen

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/semantic/types"
)

var zero = constant.NewInt(lltypes.I64, 0)

// formatPtr decays a format global to i8*.
func formatPtr(g *llir.Global) constant.Constant {
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}

// Print emits a printf call for v. An absent v prints a blank line. Int
// and Bool values use fstr after widening to i32; Flt values use fstrf
// after widening to double, as variadic calls require. Integer constants
// are folded with the same 8-bit wraparound sext would apply.
func (c *Context) Print(v types.Value) (*llir.InstCall, error) {
	b := c.Builder
	if v.IsAbsent() {
		return b.Block().NewCall(c.Printf, formatPtr(c.Formats.Blank)), nil
	}

	var arg value.Value
	var format *llir.Global
	switch v.Tag {
	case types.Int:
		format = c.Formats.Int
		if k, ok := v.IR.(*constant.Int); ok {
			arg = constant.NewInt(lltypes.I32, int64(int8(k.X.Int64())))
		} else {
			arg = b.Block().NewSExt(v.IR, lltypes.I32)
		}
	case types.Bool:
		format = c.Formats.Int
		arg = b.Block().NewZExt(v.IR, lltypes.I32)
	case types.Flt:
		format = c.Formats.Float
		if k, ok := v.IR.(*constant.Float); ok {
			f, _ := k.X.Float64()
			arg = constant.NewFloat(lltypes.Double, f)
		} else {
			arg = b.Block().NewFPExt(v.IR, lltypes.Double)
		}
	default:
		return nil, fmt.Errorf("cannot print a %s value", v.Tag)
	}
	return b.Block().NewCall(c.Printf, formatPtr(format), arg), nil
}
