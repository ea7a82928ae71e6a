// Package ir is an instruction cursor over llir/llvm.
//
// A Builder tracks the function being filled and the block that receives
// the next instruction. It hands out uniquely named blocks, scaffolds
// if/else diamonds and never lets an instruction land after a terminator.
package ir

import (
	"strconv"

	llir "github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Builder positions instructions inside one function.
type Builder struct {
	fn    *llir.Func
	entry *llir.Block
	cur   *llir.Block

	// counters numbers blocks per label prefix.
	counters map[string]int
}

// NewBuilder returns a cursor at the end of fn. A function without
// blocks gets an "entry" block first.
func NewBuilder(fn *llir.Func) *Builder {
	b := &Builder{fn: fn, counters: make(map[string]int)}
	if len(fn.Blocks) == 0 {
		fn.NewBlock("entry")
	}
	b.entry = fn.Blocks[0]
	b.cur = fn.Blocks[len(fn.Blocks)-1]
	return b
}

// Func returns the function under construction.
func (b *Builder) Func() *llir.Func { return b.fn }

// Entry returns the function's first block.
func (b *Builder) Entry() *llir.Block { return b.entry }

// Current returns the insertion block as is, terminated or not.
func (b *Builder) Current() *llir.Block { return b.cur }

// Block returns the block that receives the next instruction. When the
// insertion block is already terminated a fresh block with no
// predecessors is opened, so code after break or continue still has a
// home.
func (b *Builder) Block() *llir.Block {
	if b.cur.Term != nil {
		b.cur = b.NewBlock("dead")
	}
	return b.cur
}

// Terminated reports whether the insertion block has a terminator.
func (b *Builder) Terminated() bool {
	return b.cur.Term != nil
}

// NewBlock appends a block labelled prefix.N, N counting from 0 per
// prefix. The cursor does not move.
func (b *Builder) NewBlock(prefix string) *llir.Block {
	n := b.counters[prefix]
	b.counters[prefix] = n + 1
	return b.fn.NewBlock(prefix + "." + strconv.Itoa(n))
}

// SetInsert moves the cursor to the end of block.
func (b *Builder) SetInsert(block *llir.Block) {
	b.cur = block
}

// Alloca reserves a stack slot in the entry block, whatever the current
// position.
func (b *Builder) Alloca(elem lltypes.Type) *llir.InstAlloca {
	return b.entry.NewAlloca(elem)
}

// Br branches unconditionally to target.
func (b *Builder) Br(target *llir.Block) {
	b.Block().NewBr(target)
}

// CondBr branches to t when cond holds and to f otherwise.
func (b *Builder) CondBr(cond value.Value, t, f *llir.Block) {
	b.Block().NewCondBr(cond, t, f)
}

// Ret returns v from the function.
func (b *Builder) Ret(v value.Value) {
	b.Block().NewRet(v)
}

// fallthroughTo closes the insertion block with a branch to target unless
// it is already terminated.
func (b *Builder) fallthroughTo(target *llir.Block) {
	if b.cur.Term == nil {
		b.cur.NewBr(target)
	}
}

// IfElse emits the diamond
//
//	br cond, then, else
//	then: ... br end
//	else: ... br end
//	end:
//
// and leaves the cursor at end. Either callback may be nil. Arms that
// terminate on their own (break, continue) do not get the branch to end.
// An error from an arm is returned as soon as it happens and the cursor
// stays where that arm left it.
func (b *Builder) IfElse(cond value.Value, then, otherwise func() error) error {
	thenBlock := b.NewBlock("if.then")
	elseBlock := b.NewBlock("if.else")
	end := b.NewBlock("if.end")

	b.CondBr(cond, thenBlock, elseBlock)

	for _, arm := range []struct {
		block *llir.Block
		emit  func() error
	}{{thenBlock, then}, {elseBlock, otherwise}} {
		b.cur = arm.block
		if arm.emit != nil {
			if err := arm.emit(); err != nil {
				return err
			}
		}
		b.fallthroughTo(end)
	}

	b.cur = end
	return nil
}

// Seal terminates every open block of the function with unreachable. A
// partially lowered function is printable afterwards.
func (b *Builder) Seal() {
	for _, block := range b.fn.Blocks {
		if block.Term == nil {
			block.NewUnreachable()
		}
	}
}
