// Package stdlib holds the tinyjs prelude, a script loaded into every new
// runtime.
package stdlib

import _ "embed"

//go:embed prelude.js
var Prelude string
