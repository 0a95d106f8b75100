// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
	"sort"
	"strconv"
)

// Export converts v to plain Go values for host code: nil, bool, int,
// float64, string, []any for arrays and map[string]any for objects.
// Functions export as their signature text. Wrappers are looked through and
// hidden children are dropped; an edge back to an ancestor exports as nil.
func Export(v *Var) any {
	return export(v, make(map[*Var]bool))
}

func export(v *Var, path map[*Var]bool) any {
	v = v.Unwrap()
	if path[v] {
		return nil
	}
	switch v.typ {
	case Undefined, Null:
		return nil
	case Boolean:
		return v.i != 0
	case Integer:
		return v.i
	case Double:
		return v.d
	case String:
		return v.s
	case Function:
		return v.Signature()
	}

	path[v] = true
	defer delete(path, v)

	if v.typ == Array {
		out := make([]any, v.Length())
		for l := v.first; l != nil; l = l.next {
			if i, err := strconv.Atoi(l.Name); err == nil && i >= 0 && i < len(out) {
				out[i] = export(l.Var, path)
			}
		}
		return out
	}

	out := make(map[string]any)
	for l := v.first; l != nil; l = l.next {
		if !IsHidden(l.Name) {
			out[l.Name] = export(l.Var, path)
		}
	}
	return out
}

// Import converts a plain Go value to a Var. It accepts what Export produces
// plus the other integer and float widths; anything else becomes its fmt
// text. Map keys are added in sorted order.
func Import(x any) *Var {
	switch x := x.(type) {
	case nil:
		return NewUndefined()
	case *Var:
		return x
	case bool:
		return NewBool(x)
	case int:
		return NewInt(x)
	case int32:
		return NewInt(int(x))
	case int64:
		return NewInt(int(x))
	case float32:
		return NewDouble(float64(x))
	case float64:
		return NewDouble(x)
	case string:
		return NewString(x)
	case []any:
		arr := NewArray()
		for i, e := range x {
			arr.AddChild(strconv.Itoa(i), Import(e))
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.AddChild(k, Import(x[k]))
		}
		return obj
	}
	return NewString(fmt.Sprint(x))
}
