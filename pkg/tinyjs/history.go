// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package tinyjs

import (
	"errors"
	"fmt"

	"nickandperla.net/tinyjs/internal/store"
	"nickandperla.net/tinyjs/internal/value"
)

// ErrNoHistory is returned when the configured store does not keep versions.
var ErrNoHistory = errors.New("store has no version history")

// Version is one stored snapshot of a binding.
type Version struct {
	Version int
	Value   string // inspect form of the stored value
	Time    string
}

// History returns up to limit stored versions of name, newest first. A limit
// of 0 returns every version.
func (r *Runtime) History(name string, limit int) ([]Version, error) {
	hs, ok := r.store.(store.HistoryStore)
	if !ok {
		return nil, ErrNoHistory
	}
	entries, err := hs.GetHistory(name, limit)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", name, err)
	}
	versions := make([]Version, 0, len(entries))
	for _, entry := range entries {
		v, err := r.evaluator.Decode(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("history of %s, version %d: %w", name, entry.Version, err)
		}
		versions = append(versions, Version{Version: entry.Version, Value: value.Inspect(v), Time: entry.Ts})
	}
	return versions, nil
}
