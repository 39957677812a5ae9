package main

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := rdebug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionLine(version, info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionLine renders "jobsweep <version> (<commit>[, dirty]) <go version>".
// The commit comes from the VCS stamp when the binary carries one.
func versionLine(v string, info *rdebug.BuildInfo) string {
	goVersion := runtime.Version()
	commit := ""
	dirty := false
	if info != nil {
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				commit = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
	}

	line := "jobsweep " + v
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if dirty {
			commit += ", dirty"
		}
		line += " (" + commit + ")"
	}
	return fmt.Sprintf("%s %s", line, goVersion)
}
