package weaver

import (
	_ "embed"
)

// Version is the release of the weaver module, read from the VERSION file.
//
//go:embed VERSION
var Version string
