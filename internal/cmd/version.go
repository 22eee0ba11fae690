package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Set through -ldflags at release time; otherwise read from the build info
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildInfoLines describes the binary. Values stamped with -ldflags win; the
// module version and VCS settings recorded by the go tool fill the rest.
func buildInfoLines(info *debug.BuildInfo) []string {
	v, c, d, dirty := version, commit, date, false
	goVersion := runtime.Version()

	if info != nil {
		goVersion = info.GoVersion
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if c == "none" {
					c = s.Value
				}
			case "vcs.time":
				if d == "unknown" {
					d = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
	}

	if dirty {
		c += " (modified)"
	}
	return []string{
		"launchhook " + v,
		"Commit: " + c,
		"Built: " + d,
		fmt.Sprintf("Go: %s %s/%s", goVersion, runtime.GOOS, runtime.GOARCH),
	}
}

func printVersion(w io.Writer) {
	info, _ := debug.ReadBuildInfo()
	for _, line := range buildInfoLines(info) {
		fmt.Fprintln(w, line)
	}
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  `Show the launchhook release, source revision, build time and Go toolchain.`,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}

	return cmd
}
