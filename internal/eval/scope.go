// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/value"
)

// findVar searches the scope stack from innermost to outermost.
func (e *Evaluator) findVar(name string) *value.Link {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if l := e.scopes[i].FindChild(name); l != nil {
			return l
		}
	}
	return nil
}

// lookupOrGlobal resolves name, creating an Undefined global when it is not
// bound anywhere.
func (e *Evaluator) lookupOrGlobal(name string) *value.Link {
	if l := e.findVar(name); l != nil {
		return l
	}
	return e.root.AddChild(name, value.NewUndefined())
}

// current returns the innermost scope.
func (e *Evaluator) current() *value.Var {
	return e.scopes[len(e.scopes)-1]
}

// enter swaps in a new scope stack and lexer for a function call. The
// returned func restores the caller's stack and lexer; it must run on every
// exit path.
func (e *Evaluator) enter(chain []*value.Var, lex *scanner.Scanner) func() {
	savedScopes, savedLex := e.scopes, e.lex
	for _, s := range chain {
		s.Retain()
	}
	e.scopes, e.lex = chain, lex
	e.depth++
	return func() {
		e.depth--
		e.scopes, e.lex = savedScopes, savedLex
		for _, s := range chain {
			s.Release()
		}
	}
}
