package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidsync/internal/session"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var offsetA, offsetB int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compare <video-a> <video-b>",
		Short: "Compare the videos frame by frame across their overlap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pairOptions(args, offsetA, offsetB)
			if err != nil {
				return err
			}
			r, err := ctx.newRunner(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			defer r.close()

			window := r.session.Overlap()
			if err := r.run(cmd.Context(), r.session.StartStepwise); err != nil {
				if errors.Is(err, session.ErrNoOverlap) {
					return fmt.Errorf("%w: window %s to %s", err, formatTimestamp(window.StartMS), formatTimestamp(window.EndMS))
				}
				return err
			}

			partial, cancelled := r.wasCancelled()
			results := r.stepwise
			if cancelled {
				results = partial
			}
			if asJSON {
				return writeJSON(cmd, compareJSON{Cancelled: cancelled, Frames: framesJSON(results)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Overlap: %s to %s (%s)\n",
				formatTimestamp(window.StartMS), formatTimestamp(window.EndMS), formatTimestamp(window.DurationMS()))
			if len(results) > 0 {
				fmt.Fprintln(out, renderFrameTable(results))
			}
			if cancelled {
				fmt.Fprintf(out, "Comparison cancelled after %d frames\n", len(results))
			}
			if len(results) > 0 {
				fmt.Fprintf(out, "Average similarity: %s over %d frames\n", formatPercent(averageSimilarity(results)), len(results))
			}
			return nil
		},
	}

	addOffsetFlags(cmd, &offsetA, &offsetB)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}
