// Package version reports build information for the ucrfood binaries
package version

import "runtime/debug"

// BuildInfo holds version information about a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X 'ucrfood/internal/core/version.version=v0.1.0' -X ...commit=abcd -X ...date=2026-10-17"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// readBuild is swapped in tests
var readBuild = debug.ReadBuildInfo

// Info returns the build information of service
// commit and date fall back to the vcs stamps the go tool embeds when ldflags did not set them
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	info, ok := readBuild()
	if !ok || info == nil {
		return bi
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && bi.Commit == "none":
			bi.Commit = s.Value
		case s.Key == "vcs.time" && bi.Date == "unknown":
			bi.Date = s.Value
		}
	}
	if bi.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		bi.Version = info.Main.Version
	}
	return bi
}
