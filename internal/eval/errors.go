// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"fmt"

	"nickandperla.net/tinyjs/internal/scanner"
)

// RuntimeError is a fatal error raised while executing a program, tagged
// with the source line being evaluated.
type RuntimeError struct {
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at line %d: %v", e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// fail tags err with the current line unless it already carries one.
func (e *Evaluator) fail(err error) error {
	var rt *RuntimeError
	var se *scanner.SyntaxError
	if errors.As(err, &rt) || errors.As(err, &se) {
		return err
	}
	return &RuntimeError{Line: e.lex.Line(), Err: err}
}

// errorf raises a RuntimeError at the current line.
func (e *Evaluator) errorf(format string, args ...any) error {
	return &RuntimeError{Line: e.lex.Line(), Err: fmt.Errorf(format, args...)}
}
