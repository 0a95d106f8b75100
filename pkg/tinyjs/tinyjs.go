package tinyjs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"nickandperla.net/tinyjs/internal/eval"
	"nickandperla.net/tinyjs/internal/value"
)

var log = commonlog.GetLogger("tinyjs.runtime")

// StdlibOverride is the snapshot name that, when stored as a string,
// replaces the prelude source on startup.
const StdlibOverride = "__stdlib__"

// Runtime is the tinyjs interpreter runtime.
type Runtime struct {
	evaluator    *eval.Evaluator
	store        eval.Store
	outputWriter func(text string) error
	prelude      string // Custom prelude source (if empty, uses DefaultPrelude)
	noStdlib     bool
	noNatives    bool
	maxDepth     int
	persistMode  eval.PersistMode
	natives      []eval.Native
	err          error // First option failure
}

// New creates a new tinyjs runtime with the given options. The prelude is
// loaded first; in PersistAlways mode every stored snapshot is then bound in
// the global scope.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		if r.store != nil {
			r.store.Close()
		}
		return nil, r.err
	}

	evalOpts := []eval.Option{eval.WithPersistMode(r.persistMode)}
	if r.store != nil {
		evalOpts = append(evalOpts, eval.WithStore(r.store))
	}
	if r.outputWriter != nil {
		evalOpts = append(evalOpts, eval.WithOutputWriter(r.outputWriter))
	}
	if r.noNatives {
		evalOpts = append(evalOpts, eval.WithNoNatives())
	}
	if r.maxDepth > 0 {
		evalOpts = append(evalOpts, eval.WithMaxDepth(r.maxDepth))
	}
	for _, n := range r.natives {
		evalOpts = append(evalOpts, eval.WithNative(n))
	}
	r.evaluator = eval.New(evalOpts...)

	if !r.noStdlib {
		prelude, err := r.preludeSource()
		if err != nil {
			r.Close()
			return nil, err
		}
		if prelude != "" {
			if err := r.evaluator.LoadReader(strings.NewReader(prelude)); err != nil {
				r.Close()
				return nil, fmt.Errorf("load prelude: %w", err)
			}
		}
	}

	if r.persistMode == PersistAlways {
		if err := r.evaluator.LoadAll(); err != nil {
			r.Close()
			return nil, err
		}
	}
	log.Debugf("runtime ready (persist mode %s)", r.persistMode)
	return r, nil
}

// preludeSource picks the prelude: a string stored under StdlibOverride wins
// over WithPrelude, which wins over DefaultPrelude.
func (r *Runtime) preludeSource() (string, error) {
	prelude := r.prelude
	if prelude == "" {
		prelude = DefaultPrelude
	}
	if r.store == nil {
		return prelude, nil
	}
	data, err := r.store.Get(StdlibOverride)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", StdlibOverride, err)
	}
	if data == nil {
		return prelude, nil
	}
	v, err := value.Unmarshal(data, nil)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", StdlibOverride, err)
	}
	if v.IsString() {
		log.Infof("using prelude from %s", StdlibOverride)
		return v.String(), nil
	}
	return prelude, nil
}

func (r *Runtime) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Eval evaluates a tinyjs program and returns the display text of its last
// expression statement.
func (r *Runtime) Eval(input string) (string, error) {
	return r.evaluator.Eval(input)
}

// EvalReader evaluates tinyjs from a reader.
func (r *Runtime) EvalReader(reader io.Reader) (string, error) {
	return r.evaluator.EvalReader(reader)
}

// EvalFile evaluates a tinyjs file.
func (r *Runtime) EvalFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.EvalReader(f)
}

// Run evaluates a program and returns the value of its last expression
// statement in plain Go form, or nil.
func (r *Runtime) Run(input string) (any, error) {
	v, err := r.evaluator.Run(input)
	if err != nil || v == nil {
		return nil, err
	}
	return value.Export(v), nil
}

// Get returns the global binding name in plain Go form: nil, bool, int,
// float64, string, []any or map[string]any. Functions come back as their
// source text.
func (r *Runtime) Get(name string) (any, bool) {
	v := r.evaluator.Lookup(name)
	if v == nil {
		return nil, false
	}
	return value.Export(v), true
}

// HasFunction reports whether the global binding name is a function.
func (r *Runtime) HasFunction(name string) bool {
	v := r.evaluator.Lookup(name)
	return v != nil && v.IsFunction()
}

// Set binds a plain Go value as a global.
func (r *Runtime) Set(name string, x any) {
	r.evaluator.Root().AddUniqueChild(name, value.Import(x))
}

// Persist saves the global binding name to the store.
func (r *Runtime) Persist(name string) (bool, error) {
	return r.evaluator.Persist(name)
}

// Load restores the global binding name from the store.
func (r *Runtime) Load(name string) (bool, error) {
	return r.evaluator.Load(name)
}

// PersistMode returns the current persistence mode.
func (r *Runtime) PersistMode() PersistMode {
	return r.evaluator.PersistMode()
}

// SetPersistMode changes the persistence mode.
func (r *Runtime) SetPersistMode(mode PersistMode) {
	r.evaluator.SetPersistMode(mode)
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		err := r.store.Close()
		r.store = nil
		return err
	}
	return nil
}

// IsRuntimeError reports whether err was raised while a program ran, as
// opposed to a syntax error.
func IsRuntimeError(err error) bool {
	var re *eval.RuntimeError
	return errors.As(err, &re)
}
