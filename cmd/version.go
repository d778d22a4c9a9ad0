/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/mmdguard/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the mmdguard version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	info := buildinfo.Collect()

	if jsonOutput {
		if !extended {
			info = buildinfo.Info{Version: info.Version, GoVersion: info.GoVersion, Platform: info.Platform}
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	_, _ = fmt.Fprintf(out, "mmdguard %s\n", info.Version)
	if !extended {
		return nil
	}
	if info.ModuleVersion != "" {
		_, _ = fmt.Fprintf(out, "Module version: %s\n", info.ModuleVersion)
	}
	if info.Revision != "" {
		_, _ = fmt.Fprintf(out, "Git commit: %s\n", shortRevision(info.Revision))
	}
	_, _ = fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	_, err := fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return err
}

func shortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
