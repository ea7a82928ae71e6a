// Package lexer turns minic source text into a stream of tokens.
//
// Every token remembers where it came from so that grammar errors and
// semantic errors raised much later can still point at a file, line and
// column.
package lexer

import "strconv"

// Position is a point in a source file.
//
// Line and Column are 1-based and Column counts runes. Offset is the
// 0-based byte offset into the source. The zero Position is "unknown".
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String formats the position as file:line:column.
func (p Position) String() string {
	return p.Filename + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p precedes other in the same file.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Span is the half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

// String formats the span. Single-line spans collapse to file:line:col-col.
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return s.Start.String() + "-" + strconv.Itoa(s.End.Column)
	}
	return s.Start.String() + "-" + strconv.Itoa(s.End.Line) + ":" + strconv.Itoa(s.End.Column)
}

// Contains reports whether pos lies inside the span.
func (s Span) Contains(pos Position) bool {
	return !pos.Before(s.Start) && pos.Before(s.End)
}
