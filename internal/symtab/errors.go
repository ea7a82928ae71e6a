package symtab

import "fmt"

// LogicError is a semantic violation: an undefined variable, a value
// whose tag disagrees with its declaration, or an operator with no
// lowering rule for its operands.
type LogicError struct {
	Msg string
}

func (e *LogicError) Error() string { return "LogicError: " + e.Msg }

// Logicf builds a LogicError from a format string.
func Logicf(format string, args ...any) *LogicError {
	return &LogicError{Msg: fmt.Sprintf(format, args...)}
}

// UndefinedVariable is the LogicError raised for reads of and
// assignments to unbound names.
func UndefinedVariable(name string) *LogicError {
	return Logicf("Unknown name: <%s> is not defined", name)
}

// ImmutableError reports a second declaration of a bound name.
type ImmutableError struct {
	Name string
}

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("ImmutableError: variable <%s> is already declared", e.Name)
}

// LookupKind says what a LookupError failed to find.
type LookupKind int

const (
	LookupFunction LookupKind = iota
	LookupLoop
)

// LookupError is raised when a call names an undeclared function, or
// when break or continue appears outside every loop. It is deliberately
// not a LogicError.
type LookupError struct {
	Kind LookupKind
	Name string
}

func (e *LookupError) Error() string {
	if e.Kind == LookupLoop {
		return fmt.Sprintf("LookupError: '%s' outside of a loop", e.Name)
	}
	return fmt.Sprintf("LookupError: function <%s> is not defined", e.Name)
}
