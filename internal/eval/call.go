// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"

	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// functionDefinition parses "(params) { body }" and captures the current
// scope chain. The body is kept as source text and re-scanned on each call.
func (e *Evaluator) functionDefinition() (*value.Var, error) {
	if err := e.lex.Match(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for e.lex.Token() != token.RPAREN {
		if len(params) > 0 {
			if err := e.lex.Match(token.COMMA); err != nil {
				return nil, err
			}
		}
		params = append(params, e.lex.Value())
		if err := e.lex.Match(token.IDENT); err != nil {
			return nil, err
		}
	}
	if err := e.lex.Match(token.RPAREN); err != nil {
		return nil, err
	}
	line := e.lex.Line()
	body, err := e.lex.FunctionBody()
	if err != nil {
		return nil, err
	}
	return value.NewClosure(params, body, line, e.scopes), nil
}

// arguments parses a call's argument list after the opening parenthesis.
// Arguments are evaluated in the caller's environment.
func (e *Evaluator) arguments(st *State) ([]*value.Link, error) {
	var args []*value.Link
	for e.lex.Token() != token.RPAREN {
		if len(args) > 0 {
			if err := e.lex.Match(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := e.eval(st)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := e.lex.Match(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// call invokes the function fn refers to.
func (e *Evaluator) call(st *State, fn *value.Link, args []*value.Link) (*value.Link, error) {
	if *st != Running {
		return placeholder(), nil
	}
	if !fn.Var.IsFunction() {
		return nil, e.errorf("%s is not a function", describeCallee(fn))
	}
	if ok, err := e.checkArity(fn.Var, len(args)); !ok || err != nil {
		return placeholder(), err
	}

	if native := fn.Var.Native(); native != nil {
		vals := make([]*value.Var, len(args))
		for i, a := range args {
			vals[i] = a.Var
		}
		res, err := native(vals)
		if err != nil {
			return nil, e.fail(err)
		}
		return value.NewLink(res, ""), nil
	}
	return e.invoke(fn.Var, args, false)
}

// newExpression parses "new Name(args)": the function runs with a fresh
// "this" slot, and the result is a wrapper holding the constructed object.
func (e *Evaluator) newExpression(st *State) (*value.Link, error) {
	if err := e.lex.Match(token.NEW); err != nil {
		return nil, err
	}
	name := e.lex.Value()
	if err := e.lex.Match(token.IDENT); err != nil {
		return nil, err
	}
	var ctor *value.Link
	if *st == Running {
		ctor = e.findVar(name)
	}
	if err := e.lex.Match(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := e.arguments(st)
	if err != nil {
		return nil, err
	}
	if *st != Running {
		return e.postfix(st, placeholder(), false)
	}

	if ctor == nil || !ctor.Var.IsFunction() || ctor.Var.Native() != nil {
		return nil, e.errorf("%s is not a constructor", name)
	}
	ok, err := e.checkArity(ctor.Var, len(args))
	if err != nil {
		return nil, err
	}
	obj := placeholder()
	if ok {
		if obj, err = e.invoke(ctor.Var, args, true); err != nil {
			return nil, err
		}
	}
	return e.postfix(st, obj, false)
}

// checkArity reports whether a call with argc arguments may proceed. A
// mismatch is not fatal: it writes a diagnostic and the call yields
// Undefined.
func (e *Evaluator) checkArity(fn *value.Var, argc int) (bool, error) {
	if want := fn.Arity(); want != argc {
		e.log.Warningf("arity mismatch at line %d: expected %d, got %d", e.lex.Line(), want, argc)
		return false, e.write(fmt.Sprintf("error: expected %d arguments, got %d\n", want, argc))
	}
	return true, nil
}

// invoke runs a script function. The callee's captured scope chain plus a new
// frame replaces the scope stack, and the body is re-scanned; the caller's
// stack and lexer are restored on every exit path.
func (e *Evaluator) invoke(fn *value.Var, args []*value.Link, construct bool) (*value.Link, error) {
	if e.depth >= e.maxDepth {
		return nil, e.errorf("maximum call depth %d exceeded", e.maxDepth)
	}

	frame := value.NewObject()
	ret := frame.AddChild(value.ReturnSlot, nil)
	var this *value.Link
	if construct {
		this = frame.AddChild(value.ThisSlot, nil)
	}
	for i, name := range fn.Params() {
		arg := args[i].Var
		switch arg.Type() {
		case value.Integer, value.Boolean, value.Double:
			arg = arg.Copy()
		}
		frame.AddChild(name, arg)
	}

	e.log.Debugf("call at line %d: function defined at line %d, depth %d", e.lex.Line(), fn.Line(), e.depth+1)
	chain := append(fn.Scopes(), frame)
	restore := e.enter(chain, scanner.NewAt(fn.Body(), fn.Line()))
	loops := e.loops
	e.loops = 0
	defer func() {
		e.loops = loops
		restore()
		e.log.Debugf("return to line %d", e.lex.Line())
	}()

	if err := e.lex.Err(); err != nil {
		return nil, err
	}
	st := Running
	for e.lex.Token() != token.EOF {
		if err := e.statement(&st); err != nil {
			return nil, err
		}
	}

	// The frame is released by restore, so the result must hold its own
	// reference before then.
	switch {
	case construct:
		wrapper := value.NewUndefined()
		wrapper.AddChild(value.ThisSlot, this.Var)
		return value.NewLink(wrapper, ""), nil
	case ret.Var.IsFunction():
		return value.NewLink(ret.Var, ""), nil
	}
	return value.NewLink(ret.Var.Copy(), ""), nil
}

func describeCallee(fn *value.Link) string {
	if fn.Name != "" {
		return fmt.Sprintf("%s (%s)", fn.Name, fn.Var.Type())
	}
	return fn.Var.Type().String()
}
