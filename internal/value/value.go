// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value implements the tinyjs value model: tagged, reference-counted
// nodes (Var) connected by named, ordered edges (Link).
package value

import (
	"strconv"
	"unicode/utf8"
)

// Type is the tag of a Var.
type Type int

const (
	Undefined Type = iota
	Null
	Boolean
	Integer
	Double
	String
	Array
	Object
	Function
)

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Double:
		return "double"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	case Function:
		return "function"
	}
	return "unknown"
}

// NativeFunc is a Go implementation behind a Function value.
type NativeFunc func(args []*Var) (*Var, error)

// Var is a value node. Scalars use the payload matching their tag; any node
// may additionally own an ordered list of named children.
type Var struct {
	typ    Type
	i      int
	d      float64
	s      string
	native NativeFunc

	first *Link
	last  *Link
	refs  int
}

// NewUndefined creates an Undefined value.
func NewUndefined() *Var { return &Var{typ: Undefined} }

// NewNull creates a Null value.
func NewNull() *Var { return &Var{typ: Null} }

// NewBool creates a Boolean value.
func NewBool(b bool) *Var {
	v := &Var{typ: Boolean}
	if b {
		v.i = 1
	}
	return v
}

// NewInt creates an Integer value.
func NewInt(i int) *Var { return &Var{typ: Integer, i: i} }

// NewDouble creates a Double value.
func NewDouble(d float64) *Var { return &Var{typ: Double, d: d} }

// NewString creates a String value.
func NewString(s string) *Var { return &Var{typ: String, s: s} }

// NewArray creates an empty Array.
func NewArray() *Var { return &Var{typ: Array} }

// NewObject creates an empty Object.
func NewObject() *Var { return &Var{typ: Object} }

// NewFunction creates an empty Function node. The evaluator fills in its
// arity, parameters, body and captured scope chain as children.
func NewFunction() *Var { return &Var{typ: Function} }

// NewNative creates a Function backed by a Go callback.
func NewNative(fn NativeFunc) *Var { return &Var{typ: Function, native: fn} }

// Type returns the value's tag.
func (v *Var) Type() Type { return v.typ }

func (v *Var) IsUndefined() bool { return v.typ == Undefined }
func (v *Var) IsNull() bool      { return v.typ == Null }
func (v *Var) IsBool() bool      { return v.typ == Boolean }
func (v *Var) IsInt() bool       { return v.typ == Integer }
func (v *Var) IsDouble() bool    { return v.typ == Double }
func (v *Var) IsNumber() bool    { return v.typ == Integer || v.typ == Double }
func (v *Var) IsString() bool    { return v.typ == String }
func (v *Var) IsArray() bool     { return v.typ == Array }
func (v *Var) IsObject() bool    { return v.typ == Object }
func (v *Var) IsFunction() bool  { return v.typ == Function }

// Native returns the Go callback of a native function, or nil.
func (v *Var) Native() NativeFunc { return v.native }

// Refs returns the number of live edges pointing at v.
func (v *Var) Refs() int { return v.refs }

// Int returns the integer view of v. Doubles truncate; non-numbers are 0.
func (v *Var) Int() int {
	switch v.typ {
	case Integer, Boolean:
		return v.i
	case Double:
		return int(v.d)
	}
	return 0
}

// Float returns the floating-point view of v; non-numbers are 0.
func (v *Var) Float() float64 {
	switch v.typ {
	case Integer:
		return float64(v.i)
	case Double:
		return v.d
	}
	return 0
}

// Bool returns the truthiness of v.
func (v *Var) Bool() bool {
	switch v.typ {
	case Boolean, Integer:
		return v.i != 0
	case Double:
		return v.d != 0
	case String:
		return v.s != ""
	case Array, Object, Function:
		return true
	}
	return false
}

// String renders a scalar as text, doubles with six significant digits.
// Containers render their string payload, which is empty for arrays and
// objects.
func (v *Var) String() string {
	switch v.typ {
	case Integer:
		return strconv.Itoa(v.i)
	case Double:
		return strconv.FormatFloat(v.d, 'g', 6, 64)
	case Boolean:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	}
	return v.s
}

// SetInt turns v into an Integer.
func (v *Var) SetInt(i int) {
	v.typ, v.i, v.d, v.s = Integer, i, 0, ""
}

// SetDouble turns v into a Double.
func (v *Var) SetDouble(d float64) {
	v.typ, v.i, v.d, v.s = Double, 0, d, ""
}

// SetBool turns v into a Boolean.
func (v *Var) SetBool(b bool) {
	v.typ, v.i, v.d, v.s = Boolean, 0, 0, ""
	if b {
		v.i = 1
	}
}

// SetString turns v into a String.
func (v *Var) SetString(s string) {
	v.typ, v.i, v.d, v.s = String, 0, 0, s
}

// SetUndefined turns v into Undefined and drops its children.
func (v *Var) SetUndefined() {
	v.typ, v.i, v.d, v.s = Undefined, 0, 0, ""
	v.RemoveAllChildren()
}

// Length is the value of the .length property: the largest numeric child
// name plus one for arrays, the character count for strings, 0 otherwise.
func (v *Var) Length() int {
	switch v.typ {
	case String:
		return utf8.RuneCountInString(v.s)
	case Array:
		max := -1
		for l := v.first; l != nil; l = l.next {
			if idx, err := strconv.Atoi(l.Name); err == nil && idx > max {
				max = idx
			}
		}
		return max + 1
	}
	return 0
}

// Copy returns a deep structural copy of v. The captured scope chain of a
// function is shared, not copied.
func (v *Var) Copy() *Var {
	return v.copyInto(make(map[*Var]*Var))
}

// copyInto copies v, reusing nodes already copied so that shared children
// stay shared and self-references do not recurse forever.
func (v *Var) copyInto(seen map[*Var]*Var) *Var {
	if c, ok := seen[v]; ok {
		return c
	}
	c := &Var{typ: v.typ, i: v.i, d: v.d, s: v.s, native: v.native}
	seen[v] = c
	for l := v.first; l != nil; l = l.next {
		if v.typ == Function && l.Name == ScopeSlot {
			c.AddChild(l.Name, l.Var)
			continue
		}
		c.AddChild(l.Name, l.Var.copyInto(seen))
	}
	return c
}

// Retain takes a reference on v on behalf of a holder that is not a Link,
// such as the scope stack.
func (v *Var) Retain() *Var {
	return v.ref()
}

// Release drops a reference taken with Retain.
func (v *Var) Release() {
	v.unref()
}

// Hidden child names used by functions, frames and object literals.
const (
	ThisSlot   = "this"
	ReturnSlot = "#return"
	ArgcSlot   = "#argc"
	ParamsSlot = "#params"
	BodySlot   = "#body"
	ScopeSlot  = "#scope"
	LineSlot   = "#line"
)

// Unwrap returns the object an object-literal wrapper holds, or v itself.
// A wrapper is an Object whose only child is named "this".
func (v *Var) Unwrap() *Var {
	if v.typ == Object && v.first != nil && v.first == v.last && v.first.Name == ThisSlot {
		return v.first.Var
	}
	return v
}

// IsWrapper reports whether v is an object-literal (or constructed object)
// wrapper.
func (v *Var) IsWrapper() bool {
	return v.Unwrap() != v
}
