// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

// State is the control state threaded through every grammar function. Only
// Running executes side effects; the other states parse without acting.
type State int

const (
	Running State = iota
	Skipping
	Breaking
	Continuing
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Skipping:
		return "skipping"
	case Breaking:
		return "breaking"
	case Continuing:
		return "continuing"
	}
	return "unknown"
}
