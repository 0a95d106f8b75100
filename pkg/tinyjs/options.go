// Package tinyjs provides the public API for the tinyjs interpreter.
package tinyjs

import (
	"fmt"
	"io"

	"nickandperla.net/tinyjs/internal/eval"
	"nickandperla.net/tinyjs/internal/store"
	"nickandperla.net/tinyjs/internal/value"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.fail(fmt.Errorf("open store %s: %w", path, err))
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithOutputWriter sets the function receiving print output and diagnostics.
func WithOutputWriter(writer func(text string) error) Option {
	return func(r *Runtime) {
		r.outputWriter = writer
	}
}

// WithOutput sets the io.Writer for output.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.outputWriter = func(text string) error {
			_, err := io.WriteString(w, text)
			return err
		}
	}
}

// WithPrelude sets a custom prelude source to be loaded on startup.
// If not set, DefaultPrelude is used.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoStdlib disables loading the prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithNoNatives leaves print, persist and load out of the global scope.
func WithNoNatives() Option {
	return func(r *Runtime) {
		r.noNatives = true
	}
}

// WithMaxDepth bounds nested function calls.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.maxDepth = n
	}
}

// NativeFunc is a Go function callable from scripts. Arguments and the
// result use the plain Go forms of Runtime.Get.
type NativeFunc func(args []any) (any, error)

// WithNative binds a Go function as a global taking arity arguments.
func WithNative(name string, arity int, fn NativeFunc) Option {
	return func(r *Runtime) {
		r.natives = append(r.natives, eval.Native{
			Name:  name,
			Arity: arity,
			Fn: func(args []*value.Var) (*value.Var, error) {
				in := make([]any, len(args))
				for i, a := range args {
					in[i] = value.Export(a)
				}
				out, err := fn(in)
				if err != nil {
					return nil, err
				}
				return value.Import(out), nil
			},
		})
	}
}

// Store interface for custom stores.
type Store = eval.Store

// PersistMode controls when root bindings are persisted.
type PersistMode = eval.PersistMode

// Persist mode constants.
const (
	PersistOnDemand = eval.PersistOnDemand
	PersistAlways   = eval.PersistAlways
	PersistNever    = eval.PersistNever
)

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	return eval.ParsePersistMode(s)
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
	}
}
