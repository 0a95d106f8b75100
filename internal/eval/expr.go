// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// Every expression level returns a link. Variable references come back as the
// binding's own link so assignment can replace its target; computed values
// come back as fresh unowned links. When st is not Running, levels still
// consume their tokens but return placeholder links.

func placeholder() *value.Link {
	return value.NewLink(nil, "")
}

// eval parses an assignment expression: '=', '+=' and '-=' are right
// associative and bind the target's link to the result.
func (e *Evaluator) eval(st *State) (*value.Link, error) {
	lhs, err := e.ternary(st)
	if err != nil {
		return nil, err
	}
	op := e.lex.Token()
	if !op.IsAssign() {
		return lhs, nil
	}
	if err := e.lex.Next(); err != nil {
		return nil, err
	}
	rhs, err := e.eval(st)
	if err != nil {
		return nil, err
	}
	if *st != Running {
		return lhs, nil
	}

	switch op {
	case token.ASSIGN:
		lhs.ReplaceLink(rhs)
	case token.ADD_ASSIGN, token.SUB_ASSIGN:
		binop := token.ADD
		if op == token.SUB_ASSIGN {
			binop = token.SUB
		}
		res, err := value.MathOp(lhs.Var, rhs.Var, binop)
		if err != nil {
			return nil, e.fail(err)
		}
		lhs.Replace(res)
	}
	return lhs, nil
}

// ternary parses cond ? a : b. Only the selected branch is evaluated.
func (e *Evaluator) ternary(st *State) (*value.Link, error) {
	cond, err := e.logic(st)
	if err != nil {
		return nil, err
	}
	if e.lex.Token() != token.QUESTION {
		return cond, nil
	}
	if err := e.lex.Next(); err != nil {
		return nil, err
	}

	thenSt, elseSt := Skipping, Skipping
	if *st != Running {
		thenSt, elseSt = *st, *st
	} else if cond.Var.Bool() {
		thenSt = Running
	} else {
		elseSt = Running
	}

	then, err := e.ternary(&thenSt)
	if err != nil {
		return nil, err
	}
	if err := e.lex.Match(token.COLON); err != nil {
		return nil, err
	}
	els, err := e.ternary(&elseSt)
	if err != nil {
		return nil, err
	}

	switch {
	case *st != Running:
		return placeholder(), nil
	case thenSt == Running:
		return then, nil
	}
	return els, nil
}

// logic parses the bitwise and boolean operators, which share one
// precedence level. && and || short-circuit; their operands are coerced to
// booleans first.
func (e *Evaluator) logic(st *State) (*value.Link, error) {
	lhs, err := e.compare(st)
	if err != nil {
		return nil, err
	}
	for e.lex.Token().IsLogic() {
		op := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return nil, err
		}

		boolean, short := false, false
		if *st == Running {
			switch op {
			case token.LAND:
				boolean, short = true, !lhs.Var.Bool()
			case token.LOR:
				boolean, short = true, lhs.Var.Bool()
			}
		}

		rhsSt := *st
		if short {
			rhsSt = Skipping
		}
		rhs, err := e.compare(&rhsSt)
		if err != nil {
			return nil, err
		}
		if *st != Running || short {
			lhs = value.NewLink(lhs.Var, "")
			continue
		}

		a, b := lhs.Var, rhs.Var
		if boolean {
			a, b = value.NewBool(a.Bool()), value.NewBool(b.Bool())
		}
		res, err := value.MathOp(a, b, op)
		if err != nil {
			return nil, e.fail(err)
		}
		lhs = value.NewLink(res, "")
	}
	return lhs, nil
}

func (e *Evaluator) compare(st *State) (*value.Link, error) {
	lhs, err := e.shift(st)
	if err != nil {
		return nil, err
	}
	for e.lex.Token().IsComparison() {
		op := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		rhs, err := e.shift(st)
		if err != nil {
			return nil, err
		}
		if lhs, err = e.binary(st, lhs, rhs, op); err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (e *Evaluator) shift(st *State) (*value.Link, error) {
	lhs, err := e.additive(st)
	if err != nil {
		return nil, err
	}
	for e.lex.Token() == token.SHL || e.lex.Token() == token.SHR {
		op := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		rhs, err := e.additive(st)
		if err != nil {
			return nil, err
		}
		if *st != Running {
			continue
		}
		n := rhs.Var.Int()
		if n < 0 {
			return nil, e.fail(&value.OpError{Op: op, Left: lhs.Var.Type(), Right: rhs.Var.Type(), Reason: "negative shift count"})
		}
		if op == token.SHL {
			lhs = value.NewLink(value.NewInt(lhs.Var.Int()<<n), "")
		} else {
			lhs = value.NewLink(value.NewInt(lhs.Var.Int()>>n), "")
		}
	}
	return lhs, nil
}

func (e *Evaluator) additive(st *State) (*value.Link, error) {
	lhs, err := e.term(st)
	if err != nil {
		return nil, err
	}
	for e.lex.Token() == token.ADD || e.lex.Token() == token.SUB {
		op := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		rhs, err := e.term(st)
		if err != nil {
			return nil, err
		}
		if lhs, err = e.binary(st, lhs, rhs, op); err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (e *Evaluator) term(st *State) (*value.Link, error) {
	lhs, err := e.unary(st)
	if err != nil {
		return nil, err
	}
	for e.lex.Token() == token.MUL || e.lex.Token() == token.QUO || e.lex.Token() == token.REM {
		op := e.lex.Token()
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		rhs, err := e.unary(st)
		if err != nil {
			return nil, err
		}
		if lhs, err = e.binary(st, lhs, rhs, op); err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

// binary applies op when running and wraps the result in a fresh link.
func (e *Evaluator) binary(st *State, lhs, rhs *value.Link, op token.Token) (*value.Link, error) {
	if *st != Running {
		return lhs, nil
	}
	res, err := value.MathOp(lhs.Var, rhs.Var, op)
	if err != nil {
		return nil, e.fail(err)
	}
	return value.NewLink(res, ""), nil
}

// unary parses the prefix operators - + ! ~ ++ --.
func (e *Evaluator) unary(st *State) (*value.Link, error) {
	op := e.lex.Token()
	switch op {
	case token.SUB, token.ADD, token.NOT, token.TILDE, token.INC, token.DEC:
	default:
		return e.factor(st)
	}
	if err := e.lex.Next(); err != nil {
		return nil, err
	}
	operand, err := e.unary(st)
	if err != nil {
		return nil, err
	}
	if *st != Running {
		return placeholder(), nil
	}

	switch op {
	case token.NOT:
		return value.NewLink(value.NewBool(!operand.Var.Bool()), ""), nil
	case token.TILDE:
		return value.NewLink(value.NewInt(^operand.Var.Int()), ""), nil
	case token.SUB:
		res, err := value.MathOp(value.NewInt(0), operand.Var, token.SUB)
		if err != nil {
			return nil, e.fail(err)
		}
		return value.NewLink(res, ""), nil
	case token.ADD:
		if !operand.Var.IsNumber() {
			return nil, e.fail(&value.OpError{Op: op, Left: value.Integer, Right: operand.Var.Type(), Reason: "unary plus needs a number"})
		}
		return value.NewLink(operand.Var, ""), nil
	}

	// Prefix increment and decrement update the binding and yield it.
	if err := e.step(operand, op); err != nil {
		return nil, err
	}
	return operand, nil
}

// step adds or subtracts one from the target of l in place of its binding.
func (e *Evaluator) step(l *value.Link, op token.Token) error {
	binop := token.ADD
	if op == token.DEC {
		binop = token.SUB
	}
	res, err := value.MathOp(l.Var, value.NewInt(1), binop)
	if err != nil {
		return e.fail(err)
	}
	l.Replace(res)
	return nil
}
