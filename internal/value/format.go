// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"strconv"
	"strings"
)

// Inspect renders v as source-like text for display: strings are quoted,
// arrays and objects are expanded, wrappers are looked through.
func Inspect(v *Var) string {
	var sb strings.Builder
	inspect(&sb, v, make(map[*Var]bool))
	return sb.String()
}

// Display renders v like Inspect, but a top-level string is written as is.
func Display(v *Var) string {
	if v.typ == String {
		return v.s
	}
	return Inspect(v)
}

func inspect(sb *strings.Builder, v *Var, path map[*Var]bool) {
	v = v.Unwrap()
	if path[v] {
		sb.WriteString("[circular]")
		return
	}
	switch v.typ {
	case String:
		sb.WriteString(strconv.Quote(v.s))
		return
	case Function:
		sb.WriteString(v.Signature())
		return
	case Array:
		path[v] = true
		sb.WriteByte('[')
		for i, l := 0, v.first; l != nil; i, l = i+1, l.next {
			if i > 0 {
				sb.WriteString(", ")
			}
			inspect(sb, l.Var, path)
		}
		sb.WriteByte(']')
		delete(path, v)
		return
	case Object:
		path[v] = true
		sb.WriteByte('{')
		i := 0
		for l := v.first; l != nil; l = l.next {
			if IsHidden(l.Name) {
				continue
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(l.Name)
			sb.WriteString(": ")
			inspect(sb, l.Var, path)
			i++
		}
		sb.WriteByte('}')
		delete(path, v)
		return
	}
	sb.WriteString(v.String())
}
