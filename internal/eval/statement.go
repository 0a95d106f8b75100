// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// statement parses and, when st is Running, executes one statement.
func (e *Evaluator) statement(st *State) error {
	switch e.lex.Token() {
	case token.LBRACE:
		return e.block(st)
	case token.SEMICOLON:
		return e.lex.Next()
	case token.VAR:
		return e.varStatement(st)
	case token.IF:
		return e.ifStatement(st)
	case token.WHILE:
		return e.whileStatement(st)
	case token.FOR:
		return e.forStatement(st)
	case token.RETURN:
		return e.returnStatement(st)
	case token.FUNCTION:
		return e.functionStatement(st)
	case token.BREAK, token.CONTINUE:
		tok := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return err
		}
		if *st == Running {
			if e.loops == 0 {
				return e.errorf("%s outside of a loop", tok)
			}
			if tok == token.BREAK {
				*st = Breaking
			} else {
				*st = Continuing
			}
		}
		return e.endStatement()
	case token.EOF:
		return nil
	}

	link, err := e.eval(st)
	if err != nil {
		return err
	}
	if *st == Running && e.depth == 0 {
		e.result = link.Var
	}
	return e.endStatement()
}

// endStatement consumes the terminating ';', which may be left out before a
// closing brace or the end of input.
func (e *Evaluator) endStatement() error {
	switch e.lex.Token() {
	case token.RBRACE, token.EOF:
		return nil
	}
	return e.lex.Match(token.SEMICOLON)
}

// block runs a braced statement list. When not running, the block is skipped
// by counting braces without evaluating anything.
func (e *Evaluator) block(st *State) error {
	if err := e.lex.Match(token.LBRACE); err != nil {
		return err
	}
	if *st == Running {
		for e.lex.Token() != token.RBRACE && e.lex.Token() != token.EOF {
			if err := e.statement(st); err != nil {
				return err
			}
		}
		return e.lex.Match(token.RBRACE)
	}

	depth := 1
	for depth > 0 {
		switch e.lex.Token() {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		case token.EOF:
			return e.lex.Errorf("unterminated block")
		}
		if err := e.lex.Next(); err != nil {
			return err
		}
	}
	return nil
}

// varStatement declares one or more comma-separated names in the innermost
// scope, each with an optional initializer.
func (e *Evaluator) varStatement(st *State) error {
	if err := e.lex.Match(token.VAR); err != nil {
		return err
	}
	for {
		name := e.lex.Value()
		if err := e.lex.Match(token.IDENT); err != nil {
			return err
		}
		scope := e.current()
		if e.lex.Token() == token.ASSIGN {
			if err := e.lex.Next(); err != nil {
				return err
			}
			init, err := e.eval(st)
			if err != nil {
				return err
			}
			if *st == Running {
				scope.AddUniqueChild(name, init.Var)
			}
		} else if *st == Running && scope.FindChild(name) == nil {
			scope.AddChild(name, value.NewUndefined())
		}

		if e.lex.Token() != token.COMMA {
			break
		}
		if err := e.lex.Next(); err != nil {
			return err
		}
	}
	return e.endStatement()
}

func (e *Evaluator) ifStatement(st *State) error {
	if err := e.lex.Match(token.IF); err != nil {
		return err
	}
	if err := e.lex.Match(token.LPAREN); err != nil {
		return err
	}
	cond, err := e.eval(st)
	if err != nil {
		return err
	}
	if err := e.lex.Match(token.RPAREN); err != nil {
		return err
	}

	taken := *st == Running && cond.Var.Bool()
	skip := Skipping
	if taken {
		err = e.statement(st)
	} else {
		err = e.statement(&skip)
	}
	if err != nil {
		return err
	}

	if e.lex.Token() != token.ELSE {
		return nil
	}
	if err := e.lex.Next(); err != nil {
		return err
	}
	if taken {
		skip = Skipping
		return e.statement(&skip)
	}
	return e.statement(st)
}

// returnStatement stores the result in the frame's return slot and skips
// the rest of the function body.
func (e *Evaluator) returnStatement(st *State) error {
	if err := e.lex.Match(token.RETURN); err != nil {
		return err
	}
	var result *value.Link
	switch e.lex.Token() {
	case token.SEMICOLON, token.RBRACE, token.EOF:
	default:
		var err error
		if result, err = e.eval(st); err != nil {
			return err
		}
	}

	if *st == Running {
		slot := e.current().FindChild(value.ReturnSlot)
		if slot == nil {
			return e.errorf("return outside of a function")
		}
		slot.ReplaceLink(result)
		*st = Skipping
	}
	return e.endStatement()
}

// functionStatement binds a named function in the innermost scope.
func (e *Evaluator) functionStatement(st *State) error {
	if err := e.lex.Match(token.FUNCTION); err != nil {
		return err
	}
	name := e.lex.Value()
	if err := e.lex.Match(token.IDENT); err != nil {
		return err
	}
	fn, err := e.functionDefinition()
	if err != nil {
		return err
	}
	if *st == Running {
		e.current().AddUniqueChild(name, fn)
	}
	return nil
}
