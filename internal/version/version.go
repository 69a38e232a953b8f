// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Name is the program name shown in version output.
const Name = "fdt"

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	readBuildInfo = debug.ReadBuildInfo

	once sync.Once
)

func ensureInitialized() {
	once.Do(func() {
		info, ok := readBuildInfo()
		if ok {
			fillFromBuildInfo(info)
		}
		if Version == "" {
			Version = "dev"
		}
		if Commit == "" {
			Commit = "unknown"
		}
		if Date == "" {
			Date = "unknown"
		}
	})
}

// fillFromBuildInfo fills unset fields from the module version and VCS stamps.
func fillFromBuildInfo(info *debug.BuildInfo) {
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = strings.TrimPrefix(info.Main.Version, "v")
	}

	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "" {
				Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if Date == "" {
				Date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && Commit != "" && !strings.HasSuffix(Commit, "-dirty") {
		Commit += "-dirty"
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// GetVersion returns the release version, or "dev".
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the VCS revision, or "unknown".
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build or commit date, or "unknown".
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns a one-line version summary.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// Reset clears resolved values so the next call resolves them again.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}
