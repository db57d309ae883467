// Package version reports the version of the vpiano build.
package version

import (
	"runtime/debug"
	"strings"
)

// Version can be set at build time, for example:
// go build -ldflags "-X github.com/vsariola/vpiano/version.Version=$(git describe --dirty)" ./cmd/vpiano
var Version string

// VersionOrHash is Version if it was set, and otherwise the short vcs hash
// stamped by the go tool, suffixed with -dirty for modified trees.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return vcsHash(info.Settings)
}()

func vcsHash(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(revision)
	if modified {
		b.WriteString("-dirty")
	}
	return b.String()
}
