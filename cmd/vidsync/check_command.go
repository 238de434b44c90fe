package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidsync/internal/deps"
	"vidsync/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify media tools, directories, and the signature store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range dependencyLines(statuses, colorize) {
				fmt.Fprintln(out, line)
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Filesystem", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := 0
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !cfg.Store.Enabled {
				fmt.Fprintln(out, renderStatusLine("Signature store", statusInfo, "Disabled", colorize))
			}

			missing := deps.Missing(statuses)
			if len(missing) > 0 || failed > 0 {
				return fmt.Errorf("%d dependency and %d filesystem checks failed", len(missing), failed)
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missing := deps.Missing(statuses)
	lines := make([]string, 0, len(statuses)+2)
	if len(missing) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, fmt.Sprintf("%d of %d available", len(statuses), len(statuses)), colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d of %d available", len(statuses)-len(missing), len(statuses)), colorize))
	}
	for _, status := range statuses {
		switch {
		case status.Available:
			detail := fmt.Sprintf("Ready (command: %s)", status.Command)
			if status.Detail != "" {
				detail = fmt.Sprintf("%s, %s", detail, status.Detail)
			}
			lines = append(lines, renderStatusLine(status.Name, statusOK, detail, colorize))
		case status.Optional:
			lines = append(lines, renderStatusLine(status.Name, statusWarn, status.Detail, colorize))
		default:
			lines = append(lines, renderStatusLine(status.Name, statusError, status.Detail, colorize))
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Name)
		}
		lines = append(lines, fmt.Sprintf("%sMissing dependencies: %s", statusIndent, strings.Join(names, ", ")))
	}
	return lines
}
