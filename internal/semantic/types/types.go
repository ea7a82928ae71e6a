// Package types holds the value tags that drive instruction selection.
//
// A lowered expression is a Value: an IR value paired with a Tag. Operator
// sites switch on the left operand's tag to choose between the integer and
// the floating-point instruction families. There is no other type
// inference.
package types

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Tag is the closed set of runtime value kinds.
type Tag int

const (
	// None is the result of statements that produce nothing (print, if,
	// while, break, continue, function declarations).
	None Tag = iota

	// Int is an 8-bit signed integer. Overflow wraps silently.
	Int

	// Flt is a 32-bit float.
	Flt

	// Bool is the i1 result of a comparison. Operator sites treat it like
	// Int; it cannot be named in a declaration.
	Bool

	// Str is a host string produced by input. It has no IR form.
	Str
)

var tagNames = [...]string{
	None: "NONE",
	Int:  "INT",
	Flt:  "FLT",
	Bool: "BOOL",
	Str:  "STR",
}

func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// IRType returns the LLVM type a value of this tag lowers to, or nil when
// the tag has no IR representation.
func (t Tag) IRType() lltypes.Type {
	switch t {
	case Int:
		return lltypes.I8
	case Flt:
		return lltypes.Float
	case Bool:
		return lltypes.I1
	default:
		return nil
	}
}

// Lowerable reports whether values of this tag exist in the IR.
func (t Tag) Lowerable() bool {
	return t.IRType() != nil
}

// Declarable reports whether a declaration may carry this tag.
func (t Tag) Declarable() bool {
	return t == Int || t == Flt
}

// FromAnnotation maps a declaration keyword (int, flt, in any case) to
// its tag.
func FromAnnotation(keyword string) (Tag, bool) {
	switch strings.ToLower(keyword) {
	case "int":
		return Int, true
	case "flt":
		return Flt, true
	}
	return None, false
}

// Value is a tagged expression result.
type Value struct {
	Tag Tag

	// IR is the lowered value. Nil for None and Str.
	IR value.Value

	// Text holds the host string of a Str value.
	Text string
}

// Absent is the result of a statement with no value.
var Absent = Value{}

// IntValue tags v as an 8-bit integer.
func IntValue(v value.Value) Value { return Value{Tag: Int, IR: v} }

// FltValue tags v as a 32-bit float.
func FltValue(v value.Value) Value { return Value{Tag: Flt, IR: v} }

// BoolValue tags v as an i1 comparison result.
func BoolValue(v value.Value) Value { return Value{Tag: Bool, IR: v} }

// StrValue wraps a host string.
func StrValue(s string) Value { return Value{Tag: Str, Text: s} }

// IsAbsent reports whether the value carries nothing.
func (v Value) IsAbsent() bool {
	return v.Tag == None
}

// IsFloat reports whether operators applied with v on the left select the
// floating-point family. Every other lowerable tag selects the integer
// family.
func (v Value) IsFloat() bool {
	return v.Tag == Flt
}

// String renders the value for host-side display: the text of a Str,
// the number of a constant, or the IR identifier of anything computed at
// run time.
func (v Value) String() string {
	switch v.Tag {
	case None:
		return ""
	case Str:
		return v.Text
	}
	switch c := v.IR.(type) {
	case *constant.Int:
		return c.X.String()
	case *constant.Float:
		f, _ := c.X.Float64()
		return strconv.FormatFloat(f, 'g', -1, 32)
	case nil:
		return ""
	}
	return v.IR.Ident()
}
