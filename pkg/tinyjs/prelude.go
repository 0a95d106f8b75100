// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package tinyjs

import "nickandperla.net/tinyjs/internal/stdlib"

// DefaultPrelude contains the functions that are automatically loaded
// unless -no-stdlib is specified.
var DefaultPrelude = stdlib.Prelude
