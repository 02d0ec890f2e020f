// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/chatmark/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version.
	Version = "0.1.0-dev"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info returns a formatted version string suitable for --version
// output: "VERSION (COMMIT, TIME)".
func Info() string {
	version, commit, built := Version, GitCommit, BuildTime
	if info, ok := readBuildInfo(); ok {
		if version == "0.1.0-dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "unknown" && len(setting.Value) >= 7 {
					commit = setting.Value[:7]
				}
			case "vcs.time":
				if built == "unknown" {
					built = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" && commit != "unknown" {
					commit += "-dirty"
				}
			}
		}
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, built)
}

// Print writes "NAME VERSION (COMMIT, TIME)" plus the Go toolchain and
// platform to w.
func Print(w io.Writer, name string) {
	fmt.Fprintf(w, "%s %s\n  Go: %s\n  Platform: %s/%s\n",
		name, Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
