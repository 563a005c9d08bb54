// Package version holds build information stamped in with -ldflags.
package version

import "runtime/debug"

// Set at build time with
//
//	-ldflags "-X github.com/rshade/kwvolume/internal/version.version=v1.2.3"
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = ""

const devVersion = "dev"

// GetVersion returns the stamped version, falling back to the module version
// recorded by go install, then "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}
