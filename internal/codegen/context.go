// Package codegen owns the compilation context of one run: the target
// module, the printf declaration, the format-string globals, the two
// intrinsic routines and the cursor positioned in the entry routine.
//
// Nothing here is package state. A Context is created per run and passed
// to whoever emits code.
package codegen

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/ir"
	"github.com/hassan/minic/internal/semantic/types"
)

// Format strings passed to printf.
const (
	IntFormat   = "%i \n\x00"
	FloatFormat = "%f \n\x00"
	BlankFormat = "\n\x00"
)

// Names of the globals and routines every module defines. The entry
// routine must not reuse one of them.
const (
	IntFormatName   = "fstr"
	FloatFormatName = "fstrf"
	BlankFormatName = "fstrnl"
	PrintfName      = "printf"
	SumName         = "sum"
	FSumName        = "fsum"
)

// Reserved reports whether name is already defined in every module.
func Reserved(name string) bool {
	switch name {
	case IntFormatName, FloatFormatName, BlankFormatName, PrintfName, SumName, FSumName:
		return true
	}
	return false
}

// Options configures module construction.
type Options struct {
	// SourceFilename is recorded in the module header.
	SourceFilename string

	// Entry names the routine the program is lowered into.
	Entry string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{SourceFilename: "minic", Entry: "main"}
}

// Formats holds the printf format globals.
type Formats struct {
	Int   *llir.Global // fstr
	Float *llir.Global // fstrf
	Blank *llir.Global // fstrnl
}

// Context is the per-run compilation context.
type Context struct {
	Module  *llir.Module
	Printf  *llir.Func
	Formats Formats

	// Sum and FSum are the intrinsics behind sumi and sumf.
	Sum  *llir.Func
	FSum *llir.Func

	// Main is the entry routine; Builder is positioned inside it.
	Main    *llir.Func
	Builder *ir.Builder
}

// New seeds a module with the format strings, printf and the intrinsics,
// then opens the entry routine.
func New(opts Options) *Context {
	if opts.Entry == "" {
		opts.Entry = DefaultOptions().Entry
	}

	m := llir.NewModule()
	m.SourceFilename = opts.SourceFilename

	c := &Context{Module: m}
	c.Formats = Formats{
		Int:   c.format(IntFormatName, IntFormat),
		Float: c.format(FloatFormatName, FloatFormat),
		Blank: c.format(BlankFormatName, BlankFormat),
	}

	c.Printf = m.NewFunc(PrintfName, lltypes.I32, llir.NewParam("", lltypes.I8Ptr))
	c.Printf.Sig.Variadic = true

	c.Sum = c.intrinsic(SumName, lltypes.I8, func(b *llir.Block, x, y value.Value) value.Value {
		return b.NewAdd(x, y)
	})
	c.FSum = c.intrinsic(FSumName, lltypes.Float, func(b *llir.Block, x, y value.Value) value.Value {
		return b.NewFAdd(x, y)
	})

	c.Main = m.NewFunc(opts.Entry, lltypes.I32)
	c.Builder = ir.NewBuilder(c.Main)
	return c
}

func (c *Context) format(name, text string) *llir.Global {
	g := c.Module.NewGlobalDef(name, constant.NewCharArrayFromString(text))
	g.Immutable = true
	g.Linkage = enum.LinkageInternal
	return g
}

// intrinsic defines name(a, b) returning add(a, b), both of type t.
func (c *Context) intrinsic(name string, t lltypes.Type, add func(*llir.Block, value.Value, value.Value) value.Value) *llir.Func {
	a := llir.NewParam("a", t)
	b := llir.NewParam("b", t)
	fn := c.Module.NewFunc(name, t, a, b)
	cur := ir.NewBuilder(fn)
	cur.Ret(add(cur.Block(), a, b))
	return fn
}

// Intrinsic returns the routine for tag: Sum for Int, FSum for Flt.
func (c *Context) Intrinsic(tag types.Tag) (*llir.Func, bool) {
	switch tag {
	case types.Int:
		return c.Sum, true
	case types.Flt:
		return c.FSum, true
	}
	return nil, false
}

// Finish closes the entry routine. A successful run gets "ret i32 0" and
// is verified; a failed run has its open blocks sealed so the partial
// module still prints.
func (c *Context) Finish(failed bool) []error {
	if failed {
		c.Builder.Seal()
		return nil
	}
	if !c.Builder.Terminated() {
		c.Builder.Ret(constant.NewInt(lltypes.I32, 0))
	}
	return ir.Verify(c.Module)
}

// String renders the module as LLVM assembly.
func (c *Context) String() string {
	return c.Module.String()
}
