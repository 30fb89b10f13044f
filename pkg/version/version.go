// pkg/version/version.go

package version

import "fmt"

var (
	version      = "0.3.0"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns the version in format - `VERSION (REVISIONDATE REVISION)`
// revision values are filled in by git archive or -ldflags at build time
func Version() string {
	return fmt.Sprintf("%v (%v %v)", version, revisionDate, revision)
}

// UserAgent names this build when talking to remote services.
func UserAgent() string {
	return "ParIO/" + version
}
