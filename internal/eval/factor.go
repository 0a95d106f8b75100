// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"strconv"

	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// factor parses a primary expression followed by its postfix chain.
func (e *Evaluator) factor(st *State) (*value.Link, error) {
	item := e.lex.Current()
	switch item.Token {
	case token.LPAREN:
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		inner, err := e.eval(st)
		if err != nil {
			return nil, err
		}
		if err := e.lex.Match(token.RPAREN); err != nil {
			return nil, err
		}
		return e.postfix(st, inner, false)

	case token.INT:
		n, err := scanner.IntValue(item.Value)
		if err != nil {
			return nil, e.lex.Errorf("invalid integer %q", item.Value)
		}
		return e.literal(value.NewInt(n))

	case token.FLOAT:
		f, err := scanner.FloatValue(item.Value)
		if err != nil {
			return nil, e.lex.Errorf("invalid number %q", item.Value)
		}
		return e.literal(value.NewDouble(f))

	case token.STRING:
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		return e.postfix(st, value.NewLink(value.NewString(item.Value), ""), false)

	case token.TRUE, token.FALSE:
		return e.literal(value.NewBool(item.Token == token.TRUE))

	case token.NULL:
		return e.literal(value.NewNull())

	case token.UNDEFINED:
		return e.literal(value.NewUndefined())

	case token.LBRACE:
		obj, err := e.objectLiteral(st)
		if err != nil {
			return nil, err
		}
		return e.postfix(st, obj, false)

	case token.LBRACK:
		arr, err := e.arrayLiteral(st)
		if err != nil {
			return nil, err
		}
		return e.postfix(st, arr, false)

	case token.FUNCTION:
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		if e.lex.Token() == token.IDENT {
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
		}
		fn, err := e.functionDefinition()
		if err != nil {
			return nil, err
		}
		return e.postfix(st, value.NewLink(fn, ""), false)

	case token.NEW:
		return e.newExpression(st)

	case token.IDENT, token.THIS:
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		ref := placeholder()
		if *st == Running {
			ref = e.lookupOrGlobal(item.Value)
		}
		return e.postfix(st, ref, item.Token == token.THIS)
	}

	if item.Token == token.EOF {
		return nil, e.lex.Errorf("unexpected end of input")
	}
	return nil, e.lex.Errorf("unexpected %q in expression", item.Value)
}

// literal consumes the current token and returns v as a fresh link.
func (e *Evaluator) literal(v *value.Var) (*value.Link, error) {
	if err := e.lex.Next(); err != nil {
		return nil, err
	}
	return value.NewLink(v, ""), nil
}

// postfix parses calls, member accesses, index accesses and a trailing ++ or
// -- after a primary. Member and index accesses look through object-literal
// wrappers, except for the first access on a bare `this`, which names the
// constructed object's own slot.
func (e *Evaluator) postfix(st *State, ref *value.Link, bareThis bool) (*value.Link, error) {
	first := true
	for {
		switch e.lex.Token() {
		case token.LPAREN:
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
			args, err := e.arguments(st)
			if err != nil {
				return nil, err
			}
			if ref, err = e.call(st, ref, args); err != nil {
				return nil, err
			}

		case token.DOT:
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
			name := e.lex.Value()
			if e.lex.Token() != token.IDENT && !e.lex.Token().IsKeyword() {
				return nil, e.lex.Errorf("unexpected %q after '.'", name)
			}
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
			if *st == Running {
				ref = e.member(e.base(ref, bareThis && first), name)
			}

		case token.LBRACK:
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
			idx, err := e.eval(st)
			if err != nil {
				return nil, err
			}
			if err := e.lex.Match(token.RBRACK); err != nil {
				return nil, err
			}
			if *st == Running {
				ref = e.index(e.base(ref, bareThis && first), idx.Var)
			}

		case token.INC, token.DEC:
			op := e.lex.Token()
			if err := e.lex.Next(); err != nil {
				return nil, err
			}
			if *st != Running {
				return ref, nil
			}
			old := value.NewLink(ref.Var.Copy(), "")
			if err := e.step(ref, op); err != nil {
				return nil, err
			}
			return old, nil

		default:
			return ref, nil
		}
		first = false
	}
}

func (e *Evaluator) base(ref *value.Link, bareThis bool) *value.Var {
	if bareThis {
		return ref.Var
	}
	return ref.Var.Unwrap()
}

// member resolves base.name, creating an Undefined member when it is missing.
// A missing length member reports the computed length instead.
func (e *Evaluator) member(base *value.Var, name string) *value.Link {
	if name == "length" && base.FindChild(name) == nil {
		return value.NewLink(value.NewInt(base.Length()), name)
	}
	return base.FindChildOrCreate(name, value.Undefined)
}

// index resolves base[idx]. Strings yield the character at a numeric index.
func (e *Evaluator) index(base *value.Var, idx *value.Var) *value.Link {
	if base.IsString() && idx.IsNumber() {
		r := []rune(base.String())
		if i := idx.Int(); i >= 0 && i < len(r) {
			return value.NewLink(value.NewString(string(r[i])), "")
		}
		return placeholder()
	}
	return base.FindChildOrCreate(idx.String(), value.Undefined)
}

// objectLiteral builds a wrapper node whose single "this" child holds the
// new object.
func (e *Evaluator) objectLiteral(st *State) (*value.Link, error) {
	if err := e.lex.Match(token.LBRACE); err != nil {
		return nil, err
	}
	wrapper := value.NewUndefined()
	obj := wrapper.AddChild(value.ThisSlot, value.NewObject()).Var

	for e.lex.Token() != token.RBRACE {
		key := e.lex.Current()
		switch {
		case key.Token == token.IDENT, key.Token == token.STRING, key.Token == token.INT,
			key.Token.IsKeyword():
		default:
			return nil, e.lex.Errorf("unexpected %q in object literal", key.Value)
		}
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
		if err := e.lex.Match(token.COLON); err != nil {
			return nil, err
		}
		val, err := e.eval(st)
		if err != nil {
			return nil, err
		}
		obj.AddUniqueChild(key.Value, val.Var)

		if e.lex.Token() != token.COMMA {
			break
		}
		if err := e.lex.Next(); err != nil {
			return nil, err
		}
	}
	if err := e.lex.Match(token.RBRACE); err != nil {
		return nil, err
	}
	return value.NewLink(wrapper, ""), nil
}

// arrayLiteral builds an Array with children named "0", "1", ...
func (e *Evaluator) arrayLiteral(st *State) (*value.Link, error) {
	if err := e.lex.Match(token.LBRACK); err != nil {
		return nil, err
	}
	arr := value.NewArray()
	for i := 0; e.lex.Token() != token.RBRACK; i++ {
		if i > 0 {
			if err := e.lex.Match(token.COMMA); err != nil {
				return nil, err
			}
			if e.lex.Token() == token.RBRACK {
				break
			}
		}
		item, err := e.eval(st)
		if err != nil {
			return nil, err
		}
		arr.AddChild(strconv.Itoa(i), item.Var)
	}
	if err := e.lex.Match(token.RBRACK); err != nil {
		return nil, err
	}
	return value.NewLink(arr, ""), nil
}
