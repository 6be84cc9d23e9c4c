// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of release-resolver",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(info))
	},
}

// versionString renders the stamped version plus the Go toolchain and VCS
// revision recorded in the binary, when available.
func versionString(info *debug.BuildInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "release-resolver %s", version)
	if info == nil {
		return b.String()
	}
	fmt.Fprintf(&b, " (%s", info.GoVersion)
	var rev, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		fmt.Fprintf(&b, ", commit %s", rev)
		if modified == "true" {
			b.WriteString("-dirty")
		}
	}
	b.WriteString(")")
	return b.String()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
