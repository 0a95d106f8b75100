package eval

import (
	"nickandperla.net/tinyjs/internal/value"
)

// Native describes a Go function bound by name in the root scope.
type Native struct {
	Name  string
	Arity int
	Fn    value.NativeFunc
}

// builtinNatives returns the functions every evaluator provides unless
// WithNoNatives is set.
func (e *Evaluator) builtinNatives() []Native {
	return []Native{
		{Name: "print", Arity: 1, Fn: e.nativePrint},
		{Name: "persist", Arity: 1, Fn: e.nativePersist},
		{Name: "load", Arity: 1, Fn: e.nativeLoad},
	}
}

// print(x) writes x followed by a newline.
func (e *Evaluator) nativePrint(args []*value.Var) (*value.Var, error) {
	if err := e.write(value.Display(args[0]) + "\n"); err != nil {
		return nil, err
	}
	return value.NewUndefined(), nil
}

// persist(name) saves the root binding name to the store.
func (e *Evaluator) nativePersist(args []*value.Var) (*value.Var, error) {
	ok, err := e.Persist(args[0].String())
	if err != nil {
		return nil, err
	}
	return value.NewBool(ok), nil
}

// load(name) restores the root binding name from the store.
func (e *Evaluator) nativeLoad(args []*value.Var) (*value.Var, error) {
	ok, err := e.Load(args[0].String())
	if err != nil {
		return nil, err
	}
	return value.NewBool(ok), nil
}
