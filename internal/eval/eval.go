// Package eval implements the tinyjs evaluator. Parsing and evaluation are
// fused: the evaluator walks the token stream once per execution and acts on
// each construct as it recognizes it.
package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/internal/value"
)

// Store is the interface for snapshot persistence.
type Store interface {
	Get(name string) ([]byte, error)
	Put(name string, data []byte) error
	Delete(name string) error
	Names() ([]string, error)
	Close() error
}

// PersistMode controls when root bindings are persisted.
type PersistMode int

const (
	// PersistOnDemand is the default - explicit persist()/load() calls only.
	PersistOnDemand PersistMode = iota
	// PersistAlways saves every root binding after each run and loads all
	// snapshots on startup.
	PersistAlways
	// PersistNever makes persist() a no-op (memory-only mode).
	PersistNever
)

// String returns the string representation of a PersistMode.
func (m PersistMode) String() string {
	switch m {
	case PersistOnDemand:
		return "ON_DEMAND"
	case PersistAlways:
		return "ALWAYS"
	case PersistNever:
		return "NEVER"
	default:
		return "UNKNOWN"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToUpper(strings.ReplaceAll(s, "-", "_")) {
	case "ON_DEMAND":
		return PersistOnDemand, true
	case "ALWAYS":
		return PersistAlways, true
	case "NEVER":
		return PersistNever, true
	default:
		return PersistOnDemand, false
	}
}

// OutputWriter writes program output (print and diagnostics).
type OutputWriter func(text string) error

// DefaultMaxDepth bounds nested function calls.
const DefaultMaxDepth = 2000

// Evaluator interprets tinyjs programs.
type Evaluator struct {
	root   *value.Var
	scopes []*value.Var
	lex    *scanner.Scanner

	store        Store
	outputWriter OutputWriter
	persistMode  PersistMode
	noNatives    bool
	natives      []Native
	prelude      map[string]*value.Var // Root bindings made by LoadReader
	log          commonlog.Logger

	depth    int // Active function calls
	loops    int // Loops replaying in the current function or program
	maxDepth int
	result   *value.Var // Value of the last top-level expression statement
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithStore sets the persistence store.
func WithStore(s Store) Option {
	return func(e *Evaluator) { e.store = s }
}

// WithOutputWriter sets the writer used by print and for diagnostics.
func WithOutputWriter(w OutputWriter) Option {
	return func(e *Evaluator) { e.outputWriter = w }
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(e *Evaluator) { e.persistMode = mode }
}

// WithNoNatives leaves the built-in native functions out of the root scope.
func WithNoNatives() Option {
	return func(e *Evaluator) { e.noNatives = true }
}

// WithNative binds an extra native function in the root scope.
func WithNative(n Native) Option {
	return func(e *Evaluator) { e.natives = append(e.natives, n) }
}

// WithMaxDepth bounds nested function calls; exceeding it is a runtime error.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) { e.maxDepth = n }
}

// WithLogger replaces the evaluator's logger.
func WithLogger(log commonlog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		root:     value.NewObject().Retain(),
		maxDepth: DefaultMaxDepth,
		log:      commonlog.GetLogger("tinyjs.eval"),
		outputWriter: func(text string) error {
			fmt.Print(text)
			return nil
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scopes = []*value.Var{e.root}

	var natives []Native
	if !e.noNatives {
		natives = e.builtinNatives()
	}
	for _, n := range append(natives, e.natives...) {
		e.root.AddUniqueChild(n.Name, value.NewNativeFunction(n.Arity, n.Fn))
	}
	return e
}

// Root returns the global scope object.
func (e *Evaluator) Root() *value.Var {
	return e.root
}

// Lookup returns the value bound to name in the global scope, or nil.
func (e *Evaluator) Lookup(name string) *value.Var {
	if l := e.root.FindChild(name); l != nil {
		return l.Var
	}
	return nil
}

// Store returns the persistence store, or nil.
func (e *Evaluator) Store() Store {
	return e.store
}

// PersistMode returns the current persistence mode.
func (e *Evaluator) PersistMode() PersistMode {
	return e.persistMode
}

// SetPersistMode changes the persistence mode.
func (e *Evaluator) SetPersistMode(mode PersistMode) {
	e.persistMode = mode
}

// Eval runs a program and returns the display text of the last top-level
// expression statement, or "" if there was none.
func (e *Evaluator) Eval(input string) (string, error) {
	return e.EvalReader(strings.NewReader(input))
}

// EvalReader runs a program read from r.
func (e *Evaluator) EvalReader(r io.Reader) (string, error) {
	lex, err := scanner.New(r)
	if err != nil {
		return "", err
	}
	result, err := e.run(lex)
	if err != nil || result == nil {
		return "", err
	}
	return value.Display(result), nil
}

// Run runs a program and returns the value of its last top-level expression
// statement, or nil if there was none.
func (e *Evaluator) Run(input string) (*value.Var, error) {
	return e.run(scanner.NewFromString(input))
}

// LoadReader runs a prelude: output is discarded, nothing is persisted, and
// the root bindings it leaves behind are remembered as prelude bindings.
func (e *Evaluator) LoadReader(r io.Reader) error {
	savedWriter, savedMode := e.outputWriter, e.persistMode
	e.outputWriter = func(string) error { return nil }
	e.persistMode = PersistOnDemand
	defer func() { e.outputWriter, e.persistMode = savedWriter, savedMode }()

	lex, err := scanner.New(r)
	if err != nil {
		return err
	}
	if _, err := e.run(lex); err != nil {
		return err
	}

	if e.prelude == nil {
		e.prelude = make(map[string]*value.Var)
	}
	for _, l := range e.root.Children() {
		if l.Var.Native() == nil {
			e.prelude[l.Name] = l.Var
		}
	}
	return nil
}

// IsPrelude reports whether name is still bound to what a prelude defined.
func (e *Evaluator) IsPrelude(name string) bool {
	v, ok := e.prelude[name]
	if !ok {
		return false
	}
	l := e.root.FindChild(name)
	return l != nil && l.Var == v
}

func (e *Evaluator) run(lex *scanner.Scanner) (*value.Var, error) {
	if err := lex.Err(); err != nil {
		return nil, err
	}
	e.lex = lex
	e.scopes = []*value.Var{e.root}
	e.depth = 0
	e.loops = 0
	e.result = nil

	st := Running
	for e.lex.Token() != token.EOF {
		if err := e.statement(&st); err != nil {
			e.log.Debugf("run failed: %v", err)
			return nil, err
		}
	}

	if e.persistMode == PersistAlways && e.store != nil {
		if err := e.PersistAll(); err != nil {
			return nil, err
		}
	}
	return e.result, nil
}

// write sends text to the output writer.
func (e *Evaluator) write(text string) error {
	if e.outputWriter == nil {
		return nil
	}
	return e.outputWriter(text)
}
