// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "autoreport %s\n", Version)
			fmt.Fprintln(out, renderField("Commit", GitCommit))
			fmt.Fprintln(out, renderField("Built", BuildDate))
			fmt.Fprintln(out, renderField("Go", runtime.Version()))
			fmt.Fprintln(out, renderField("Platform", runtime.GOOS+"/"+runtime.GOARCH))
		},
	}
}
