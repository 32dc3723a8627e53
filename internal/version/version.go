// Package version carries the build-time identification printed by
// blksum's --version flag, the way the teacher's version package does for
// the registry binary.
package version

// mainpkg is the canonical import path the binary was built under.
var mainpkg = "github.com/nirs/blkhash"

// version is replaced at link time with the release tag; the value here
// is used for a plain "go install" build.
var version = "v0.0.0+unknown"

// revision is filled with the VCS revision at link time.
var revision = ""

func Package() string  { return mainpkg }
func Version() string  { return version }
func Revision() string { return revision }
