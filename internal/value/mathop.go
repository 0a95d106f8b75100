// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"

	"nickandperla.net/tinyjs/internal/token"
)

// OpError reports an operator applied to operand types it does not support.
// It is fatal to the running program.
type OpError struct {
	Op     token.Token
	Left   Type
	Right  Type
	Reason string
}

func (e *OpError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("operator %s on %s and %s: %s", e.Op, e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("operator %s not supported on %s and %s", e.Op, e.Left, e.Right)
}

// MathOp applies the binary operator op to a and b and returns a new value.
func MathOp(a, b *Var, op token.Token) (*Var, error) {
	unsupported := func() (*Var, error) {
		return nil, &OpError{Op: op, Left: a.typ, Right: b.typ}
	}

	if op == token.TYPE_EQL || op == token.TYPE_NEQ {
		eql := a.typ == b.typ
		if eql {
			r, err := MathOp(a, b, token.EQL)
			if err != nil {
				return nil, err
			}
			eql = r.Bool()
		}
		if op == token.TYPE_EQL {
			return NewBool(eql), nil
		}
		return NewBool(!eql), nil
	}

	switch {
	case isNullish(a) && isNullish(b):
		switch op {
		case token.EQL:
			return NewBool(true), nil
		case token.NEQ:
			return NewBool(false), nil
		}
		return unsupported()

	case a.typ == Boolean && b.typ == Boolean:
		switch op {
		case token.LAND:
			return NewBool(a.Bool() && b.Bool()), nil
		case token.LOR:
			return NewBool(a.Bool() || b.Bool()), nil
		}
		return unsupported()

	case (a.IsNumber() || a.IsUndefined()) && (b.IsNumber() || b.IsUndefined()):
		if !a.IsDouble() && !b.IsDouble() {
			return intOp(a, b, op)
		}
		return doubleOp(a, b, op)

	case a.typ == b.typ && isReference(a):
		switch op {
		case token.EQL:
			return NewBool(a == b), nil
		case token.NEQ:
			return NewBool(a != b), nil
		}
		return unsupported()
	}

	aa, bb := a.String(), b.String()
	switch op {
	case token.ADD:
		return NewString(aa + bb), nil
	case token.EQL:
		return NewBool(aa == bb), nil
	case token.NEQ:
		return NewBool(aa != bb), nil
	case token.LSS:
		return NewBool(aa < bb), nil
	case token.GTR:
		return NewBool(aa > bb), nil
	case token.LEQ:
		return NewBool(aa <= bb), nil
	case token.GEQ:
		return NewBool(aa >= bb), nil
	}
	return unsupported()
}

func intOp(a, b *Var, op token.Token) (*Var, error) {
	aa, bb := a.Int(), b.Int()
	switch op {
	case token.ADD:
		return NewInt(aa + bb), nil
	case token.SUB:
		return NewInt(aa - bb), nil
	case token.MUL:
		return NewInt(aa * bb), nil
	case token.QUO:
		if bb == 0 {
			return nil, &OpError{Op: op, Left: a.typ, Right: b.typ, Reason: "integer division by zero"}
		}
		return NewInt(aa / bb), nil
	case token.REM:
		if bb == 0 {
			return nil, &OpError{Op: op, Left: a.typ, Right: b.typ, Reason: "integer division by zero"}
		}
		return NewInt(aa % bb), nil
	case token.AND:
		return NewInt(aa & bb), nil
	case token.OR:
		return NewInt(aa | bb), nil
	case token.XOR:
		return NewInt(aa ^ bb), nil
	case token.EQL:
		return NewBool(aa == bb), nil
	case token.NEQ:
		return NewBool(aa != bb), nil
	case token.LSS:
		return NewBool(aa < bb), nil
	case token.GTR:
		return NewBool(aa > bb), nil
	case token.LEQ:
		return NewBool(aa <= bb), nil
	case token.GEQ:
		return NewBool(aa >= bb), nil
	}
	return nil, &OpError{Op: op, Left: a.typ, Right: b.typ}
}

func doubleOp(a, b *Var, op token.Token) (*Var, error) {
	aa, bb := a.Float(), b.Float()
	switch op {
	case token.ADD:
		return NewDouble(aa + bb), nil
	case token.SUB:
		return NewDouble(aa - bb), nil
	case token.MUL:
		return NewDouble(aa * bb), nil
	case token.QUO:
		return NewDouble(aa / bb), nil
	case token.EQL:
		return NewBool(aa == bb), nil
	case token.NEQ:
		return NewBool(aa != bb), nil
	case token.LSS:
		return NewBool(aa < bb), nil
	case token.GTR:
		return NewBool(aa > bb), nil
	case token.LEQ:
		return NewBool(aa <= bb), nil
	case token.GEQ:
		return NewBool(aa >= bb), nil
	}
	return nil, &OpError{Op: op, Left: a.typ, Right: b.typ}
}

func isNullish(v *Var) bool {
	return v.typ == Undefined || v.typ == Null
}

// isReference reports types compared by identity when both operands share
// the type.
func isReference(v *Var) bool {
	return v.typ == Array || v.typ == Object || v.typ == Function
}
