package flowstep

import _ "embed"

// Version is the library release, read from the VERSION file.
//
//go:embed VERSION
var Version string
