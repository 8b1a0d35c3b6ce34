// Package build holds build-time information.
package build

// Version is the assembly release. Release builds set it with
// -ldflags "-X go.trai.ch/assembly/internal/build.Version=<version>".
var Version = "dev"
