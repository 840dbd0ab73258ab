// Package buildinfo provides version information derived from Go build metadata.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// ldflagsVersion is set at release time:
//
//	go build -ldflags "-X github.com/tsukumogami/updatecheck/internal/buildinfo.ldflagsVersion=v1.2.3"
var ldflagsVersion string

// projectURL is advertised in the User-Agent so API operators can reach us.
const projectURL = "https://github.com/tsukumogami/updatecheck"

// UserAgent returns the User-Agent sent to crates.io, GitHub and Gitea.
// crates.io rejects requests without an identifying agent.
func UserAgent() string {
	return fmt.Sprintf("updatecheck/%s (+%s)", Version(), projectURL)
}

// Version identifies this build: the ldflags value when set, the module
// version for `go install pkg@tag`, else "dev-<hash>[-dirty]" or "dev" from
// VCS stamping, and "unknown" without build info.
func Version() string {
	if ldflagsVersion != "" {
		return ldflagsVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion(info)
}

func devVersion(info *debug.BuildInfo) string {
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return "dev"
	}
	if len(rev) > shortHashLen {
		rev = rev[:shortHashLen]
	}
	return "dev-" + rev + dirty
}

const shortHashLen = 12
