// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"strconv"
	"strings"
)

// NewClosure builds a Function value: its arity, parameter names, body
// source text with the line it starts on, and the scope chain it captures.
// The chain holds the scope nodes themselves, so later changes to outer
// variables are visible to the function.
func NewClosure(params []string, body string, line int, chain []*Var) *Var {
	fn := NewFunction()

	scope := NewArray()
	for i, s := range chain {
		scope.AddChild(strconv.Itoa(i), s)
	}
	fn.AddChild(ScopeSlot, scope)
	fn.AddChild(ArgcSlot, NewInt(len(params)))

	args := NewArray()
	for i, p := range params {
		args.AddChild(strconv.Itoa(i), NewString(p))
	}
	fn.AddChild(ParamsSlot, args)
	fn.AddChild(BodySlot, NewString(body))
	fn.AddChild(LineSlot, NewInt(line))
	return fn
}

// NewNativeFunction builds a Function backed by fn that takes arity
// arguments.
func NewNativeFunction(arity int, fn NativeFunc) *Var {
	v := NewNative(fn)
	v.AddChild(ArgcSlot, NewInt(arity))
	return v
}

// Arity returns the declared number of parameters of a function.
func (v *Var) Arity() int {
	if l := v.FindChild(ArgcSlot); l != nil {
		return l.Var.Int()
	}
	return 0
}

// Params returns a function's parameter names in order.
func (v *Var) Params() []string {
	l := v.FindChild(ParamsSlot)
	if l == nil {
		return nil
	}
	var out []string
	for p := l.Var.first; p != nil; p = p.next {
		out = append(out, p.Var.String())
	}
	return out
}

// Body returns a function's body source text, braces included.
func (v *Var) Body() string {
	if l := v.FindChild(BodySlot); l != nil {
		return l.Var.String()
	}
	return ""
}

// Line returns the source line a function body starts on.
func (v *Var) Line() int {
	if l := v.FindChild(LineSlot); l != nil {
		return l.Var.Int()
	}
	return 1
}

// Scopes returns the scope chain a function captured, outermost first.
func (v *Var) Scopes() []*Var {
	l := v.FindChild(ScopeSlot)
	if l == nil {
		return nil
	}
	var out []*Var
	for s := l.Var.first; s != nil; s = s.next {
		out = append(out, s.Var)
	}
	return out
}

// Signature renders a function as source-like text, e.g. "function(a, b) {...}".
func (v *Var) Signature() string {
	if v.native != nil {
		return "function(" + strconv.Itoa(v.Arity()) + ") [native]"
	}
	return "function(" + strings.Join(v.Params(), ", ") + ") " + v.Body()
}

// IsHidden reports whether a child name is internal bookkeeping that scripts
// cannot reach by name.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, "#")
}
