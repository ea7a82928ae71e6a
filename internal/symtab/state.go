package symtab

import (
	"sort"

	"github.com/llir/llvm/ir/value"

	"github.com/hassan/minic/internal/semantic/types"
)

// State is the mutable compiler state. It is not safe for concurrent
// use; a run owns exactly one.
type State struct {
	variables map[string]*Binding
	functions map[string]*Function
	loops     []LoopTargets
}

// New returns an empty state.
func New() *State {
	return &State{
		variables: make(map[string]*Binding),
		functions: make(map[string]*Function),
	}
}

// Lookup returns the binding for name.
func (s *State) Lookup(name string) (*Binding, bool) {
	b, ok := s.variables[name]
	return b, ok
}

// Declare binds a new variable. It fails with *ImmutableError when name
// is already bound and leaves the existing binding untouched.
func (s *State) Declare(name string, v types.Value, tag types.Tag, slot value.Value) (*Binding, error) {
	if _, exists := s.variables[name]; exists {
		return nil, &ImmutableError{Name: name}
	}
	b := &Binding{Name: name, Value: v, Type: tag, Slot: slot}
	s.variables[name] = b
	return b, nil
}

// Assign replaces the current value of an existing variable. It fails
// with *LogicError when name is unbound, without touching the state.
func (s *State) Assign(name string, v types.Value) (*Binding, error) {
	b, ok := s.variables[name]
	if !ok {
		return nil, UndefinedVariable(name)
	}
	b.Value = v
	return b, nil
}

// DeclareFunction records fn, replacing any earlier function of the same
// name.
func (s *State) DeclareFunction(fn *Function) {
	s.functions[fn.Name] = fn
}

// LookupFunction returns the function declared under name.
func (s *State) LookupFunction(name string) (*Function, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

// PushLoop makes t the innermost loop and returns the function that
// removes it. Callers defer the returned function so the stack is
// restored on every exit path.
func (s *State) PushLoop(t LoopTargets) (pop func()) {
	depth := len(s.loops)
	s.loops = append(s.loops, t)
	return func() {
		s.loops = s.loops[:depth]
	}
}

// Loop returns the innermost loop targets. With no enclosing loop it
// fails with *LookupError naming stmt ("break" or "continue").
func (s *State) Loop(stmt string) (LoopTargets, error) {
	if len(s.loops) == 0 {
		return LoopTargets{}, &LookupError{Kind: LookupLoop, Name: stmt}
	}
	return s.loops[len(s.loops)-1], nil
}

// LoopDepth is the number of enclosing loops.
func (s *State) LoopDepth() int {
	return len(s.loops)
}

// Variables returns all bindings sorted by name.
func (s *State) Variables() []*Binding {
	out := make([]*Binding, 0, len(s.variables))
	for _, b := range s.variables {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Functions returns all declared functions sorted by name.
func (s *State) Functions() []*Function {
	out := make([]*Function, 0, len(s.functions))
	for _, fn := range s.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Symbols flattens the state into summary rows: variables first, then
// functions, each sorted by name.
func (s *State) Symbols() []Symbol {
	var rows []Symbol
	for _, b := range s.Variables() {
		rows = append(rows, Symbol{Name: b.Name, Kind: SymbolVariable, Type: b.Type.String(), Owner: b.Owner})
	}
	for _, fn := range s.Functions() {
		rows = append(rows, Symbol{Name: fn.Name, Kind: SymbolFunction, Type: "FUNCTION", Owner: "-"})
	}
	return rows
}
