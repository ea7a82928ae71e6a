// Package symtab holds the compiler state of one run: variable bindings,
// the function table and the loop-target stack.
//
// There is a single flat namespace. A variable, once declared, stays
// bound until the run ends; functions are upserted by name.
package symtab

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser/ast"
	"github.com/hassan/minic/internal/semantic/types"
)

// SymbolKind distinguishes rows of the symbol table summary.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Binding is a declared variable.
type Binding struct {
	Name string

	// Value is the most recently stored value. Reassignment replaces it
	// without re-checking its tag against Type.
	Value types.Value

	// Type is the tag fixed at declaration.
	Type types.Tag

	// Slot is the stack slot (an alloca) the variable lives in.
	Slot value.Value

	// Owner names the routine the slot was allocated in.
	Owner string

	Pos lexer.Position
}

// Function is a user function. Params is always empty: the grammar has
// no parameter lists, calls expand Body inline.
type Function struct {
	Name   string
	Params []string
	Body   *ast.Block
	Pos    lexer.Position
}

// LoopTargets are the branch targets of one enclosing while loop.
type LoopTargets struct {
	// Continue is the loop body block; continue re-enters the body
	// directly.
	Continue *llir.Block

	// Break is the loop exit block.
	Break *llir.Block
}

// Symbol is one row of the summary printed after compilation.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Type  string
	Owner string
}
