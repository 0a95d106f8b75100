// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// Loops are parsed once in place, recording the source range of each part.
// The condition is evaluated during that first pass; the body and update are
// only parsed. Iterations then replay the recorded ranges.

func (e *Evaluator) whileStatement(st *State) error {
	if err := e.lex.Match(token.WHILE); err != nil {
		return err
	}
	if err := e.lex.Match(token.LPAREN); err != nil {
		return err
	}

	start := e.lex.Mark()
	cond, err := e.eval(st)
	if err != nil {
		return err
	}
	condLex := e.lex.Sub(start)
	if err := e.lex.Match(token.RPAREN); err != nil {
		return err
	}

	start = e.lex.Mark()
	skip := Skipping
	if err := e.statement(&skip); err != nil {
		return err
	}
	bodyLex := e.lex.Sub(start)

	if *st != Running {
		return nil
	}
	return e.loop(st, cond, condLex, nil, bodyLex)
}

func (e *Evaluator) forStatement(st *State) error {
	if err := e.lex.Match(token.FOR); err != nil {
		return err
	}
	if err := e.lex.Match(token.LPAREN); err != nil {
		return err
	}
	if err := e.statement(st); err != nil {
		return err
	}

	var cond *value.Link
	var condLex *scanner.Scanner
	if e.lex.Token() != token.SEMICOLON {
		start := e.lex.Mark()
		var err error
		if cond, err = e.eval(st); err != nil {
			return err
		}
		condLex = e.lex.Sub(start)
	}
	if err := e.lex.Match(token.SEMICOLON); err != nil {
		return err
	}

	skip := Skipping
	var updateLex *scanner.Scanner
	if e.lex.Token() != token.RPAREN {
		start := e.lex.Mark()
		if _, err := e.eval(&skip); err != nil {
			return err
		}
		updateLex = e.lex.Sub(start)
	}
	if err := e.lex.Match(token.RPAREN); err != nil {
		return err
	}

	start := e.lex.Mark()
	if err := e.statement(&skip); err != nil {
		return err
	}
	bodyLex := e.lex.Sub(start)

	if *st != Running {
		return nil
	}
	return e.loop(st, cond, condLex, updateLex, bodyLex)
}

// loop replays body, update and condition until the condition is false or
// the body breaks. A nil condition never ends the loop by itself.
func (e *Evaluator) loop(st *State, cond *value.Link, condLex, updateLex, bodyLex *scanner.Scanner) error {
	saved := e.lex
	n := 0
	e.loops++
	defer func() {
		e.loops--
		e.lex = saved
		e.log.Debugf("loop body at line %d replayed %d times", bodyLex.FirstLine(), n)
	}()

	for *st == Running && (cond == nil || cond.Var.Bool()) {
		n++
		bodyLex.Reset()
		e.lex = bodyLex
		if err := e.statement(st); err != nil {
			return err
		}
		if *st == Continuing {
			*st = Running
		}

		if updateLex != nil {
			updateLex.Reset()
			e.lex = updateLex
			if _, err := e.eval(st); err != nil {
				return err
			}
		}

		if condLex != nil {
			condLex.Reset()
			e.lex = condLex
			var err error
			if cond, err = e.eval(st); err != nil {
				return err
			}
		}
	}

	if *st == Breaking {
		*st = Running
	}
	return nil
}
