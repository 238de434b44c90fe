package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errNoOffset reports a search that never saw a scoreable candidate.
var errNoOffset = errors.New("no offset could be detected: no comparable frames")

func newOffsetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "offset <video-a> <video-b>",
		Short: "Find the time offset that best aligns video B with video A",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pairOptions(args, 0, 0)
			if err != nil {
				return err
			}
			r, err := ctx.newRunner(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			defer r.close()

			if err := r.run(cmd.Context(), r.session.StartOffsetDetection); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, cancelled := r.wasCancelled(); cancelled {
				fmt.Fprintln(out, "Offset detection cancelled")
				return nil
			}
			if r.offset == nil {
				return errNoOffset
			}
			result := *r.offset
			if asJSON {
				return writeJSON(cmd, offsetJSON{
					OffsetMS:   result.OffsetMS,
					Confidence: result.Confidence,
					Score:      result.Score,
					Candidates: result.Candidates,
					Refined:    result.Refined,
				})
			}

			colorize := shouldColorize(out)
			kind := statusOK
			if result.Confidence < 0.5 {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Offset", statusInfo, fmt.Sprintf("%s (%d ms)", formatOffset(result.OffsetMS), result.OffsetMS), colorize))
			fmt.Fprintln(out, renderStatusLine("Confidence", kind, formatPercent(result.Confidence), colorize))
			fmt.Fprintln(out, renderStatusLine("Best score", statusInfo, formatPercent(result.Score), colorize))
			fmt.Fprintln(out, renderStatusLine("Candidates", statusInfo, fmt.Sprintf("%d (refined: %s)", result.Candidates, yesNo(result.Refined)), colorize))
			fmt.Fprintf(out, "Align with: vidsync compare --offset-b=%d %s %s\n", result.OffsetMS, opts.pathA, opts.pathB)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}
