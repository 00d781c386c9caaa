// Package version reports htmd build metadata. Release builds set the
// variables with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/htmd/internal/version.Version=1.0.0 ..."
//
// Anything left unset is filled from the module build info that `go install`
// embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the resolved build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Get resolves the metadata, preferring ldflags values over build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  Platform(),
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			if Dirty == "false" && s.Value == "true" {
				info.Dirty = true
			}
		}
	}
	return info
}

// Platform is GOOS/GOARCH of the running binary.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String is the short version, suffixed with -dirty for modified trees.
func String() string {
	info := Get()
	if info.Dirty {
		return info.Version + "-dirty"
	}
	return info.Version
}

// Full is the multi-line form printed by `htmd version`.
func Full() string {
	info := Get()
	v := info.Version
	if info.Dirty {
		v += "-dirty"
	}

	commit := info.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "htmd %s\n", v)
	fmt.Fprintf(&sb, "  commit   %s\n", commit)
	fmt.Fprintf(&sb, "  built    %s\n", info.BuildDate)
	fmt.Fprintf(&sb, "  go       %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "  platform %s", info.Platform)
	return sb.String()
}
