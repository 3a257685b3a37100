// Package meta provides versioning information.
package meta

import "github.com/mmcloughlin/take/torconfig"

const placeholder = "unknown"

// Git SHA of the build (full and abbreviated). Populated at build time.
var (
	GitSHAFull = placeholder
	GitSHA     = placeholder
)

// Populated returns whether build information has been populated.
func Populated() bool {
	return GitSHA != placeholder
}

// Platform identifies this build in the same format relays use in their
// descriptors.
var Platform = torconfig.NewPlatformHostOS("take", GitSHA)
