// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"

	"nickandperla.net/tinyjs/internal/value"
)

// persistable reports whether a root binding can be written to the store.
// Natives and untouched prelude bindings stay out of it.
func (e *Evaluator) persistable(l *value.Link) bool {
	if value.IsHidden(l.Name) || l.Name == value.ThisSlot {
		return false
	}
	return l.Var.Native() == nil && !e.IsPrelude(l.Name)
}

// Persist writes the snapshot of the root binding name to the store. It
// returns false when there is no store, persistence is disabled, or nothing
// persistable is bound to name.
func (e *Evaluator) Persist(name string) (bool, error) {
	if e.store == nil || e.persistMode == PersistNever {
		return false, nil
	}
	l := e.root.FindChild(name)
	if l == nil || !e.persistable(l) {
		return false, nil
	}
	data, err := value.Marshal(l.Var)
	if err != nil {
		return false, fmt.Errorf("persist %s: %w", name, err)
	}
	if err := e.store.Put(name, data); err != nil {
		return false, fmt.Errorf("persist %s: %w", name, err)
	}
	e.log.Infof("persisted %s (%d bytes)", name, len(data))
	return true, nil
}

// Load binds the stored snapshot of name in the root scope. It returns false
// when there is no store or no snapshot.
func (e *Evaluator) Load(name string) (bool, error) {
	if e.store == nil {
		return false, nil
	}
	data, err := e.store.Get(name)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if data == nil {
		return false, nil
	}
	v, err := value.Unmarshal(data, e.rebuildFunction)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	e.root.AddUniqueChild(name, v)
	e.log.Infof("loaded %s", name)
	return true, nil
}

// PersistAll writes every persistable root binding to the store.
func (e *Evaluator) PersistAll() error {
	if e.store == nil || e.persistMode == PersistNever {
		return nil
	}
	for _, l := range e.root.Children() {
		if !e.persistable(l) {
			continue
		}
		if _, err := e.Persist(l.Name); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll binds every snapshot in the store in the root scope.
func (e *Evaluator) LoadAll() error {
	if e.store == nil {
		return nil
	}
	names, err := e.store.Names()
	if err != nil {
		return fmt.Errorf("load all: %w", err)
	}
	for _, name := range names {
		if _, err := e.Load(name); err != nil {
			return err
		}
	}
	return nil
}

// rebuildFunction recreates a persisted function as a closure over the root
// scope.
func (e *Evaluator) rebuildFunction(params []string, body string, line int) *value.Var {
	return value.NewClosure(params, body, line, []*value.Var{e.root})
}

// Decode rebuilds a snapshot without binding it.
func (e *Evaluator) Decode(data []byte) (*value.Var, error) {
	return value.Unmarshal(data, e.rebuildFunction)
}
