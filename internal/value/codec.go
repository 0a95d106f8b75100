// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so equal values produce equal bytes,
// which lets the store deduplicate identical snapshots.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("value: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// node is the serialized form of a Var.
type node struct {
	Type     Type     `cbor:"t"`
	Int      int      `cbor:"i,omitempty"`
	Double   float64  `cbor:"d,omitempty"`
	Str      string   `cbor:"s,omitempty"`
	Params   []string `cbor:"p,omitempty"`
	Line     int      `cbor:"l,omitempty"`
	Children []edge   `cbor:"c,omitempty"`
}

type edge struct {
	Name string `cbor:"n"`
	Node *node  `cbor:"v"`
}

// FunctionBuilder recreates a decoded function from its parameters and body.
type FunctionBuilder func(params []string, body string, line int) *Var

// Marshal serializes v to CBOR. Shared nodes are written once per path that
// reaches them; an edge that leads back to one of its ancestors is written as
// Undefined. Native functions are written as Undefined.
func Marshal(v *Var) ([]byte, error) {
	return cborEncMode.Marshal(toNode(v, make(map[*Var]bool)))
}

// Unmarshal deserializes a value written by Marshal. Functions are rebuilt
// through mkFunc; a nil mkFunc decodes them as Undefined.
func Unmarshal(data []byte, mkFunc FunctionBuilder) (*Var, error) {
	var n node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("value: unmarshal snapshot: %w", err)
	}
	return fromNode(&n, mkFunc), nil
}

func toNode(v *Var, path map[*Var]bool) *node {
	if path[v] || (v.typ == Function && v.native != nil) {
		return &node{Type: Undefined}
	}
	n := &node{Type: v.typ, Int: v.i, Double: v.d, Str: v.s}
	if v.typ == Function {
		n.Str = v.Body()
		n.Params = v.Params()
		n.Line = v.Line()
		return n
	}
	path[v] = true
	for l := v.first; l != nil; l = l.next {
		n.Children = append(n.Children, edge{Name: l.Name, Node: toNode(l.Var, path)})
	}
	delete(path, v)
	return n
}

func fromNode(n *node, mkFunc FunctionBuilder) *Var {
	if n == nil {
		return NewUndefined()
	}
	if n.Type == Function {
		if mkFunc == nil {
			return NewUndefined()
		}
		return mkFunc(n.Params, n.Str, n.Line)
	}
	v := &Var{typ: n.Type, i: n.Int, d: n.Double, s: n.Str}
	for _, e := range n.Children {
		v.AddChild(e.Name, fromNode(e.Node, mkFunc))
	}
	return v
}
