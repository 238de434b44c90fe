package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAutoCommand(ctx *commandContext) *cobra.Command {
	var offsetA, offsetB int64
	var asJSON bool
	var showSamples bool

	cmd := &cobra.Command{
		Use:   "auto <video-a> <video-b>",
		Short: "Sample both videos and decide whether they are perceptually identical",
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

			if err := r.run(cmd.Context(), r.session.StartAuto); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			partial, cancelled := r.wasCancelled()
			if cancelled {
				if asJSON {
					return writeJSON(cmd, autoJSON{Cancelled: true, Samples: framesJSON(partial)})
				}
				fmt.Fprintf(out, "Full comparison cancelled after %d samples\n", len(partial))
				return nil
			}
			if r.auto == nil {
				return errors.New("full comparison finished without a result")
			}
			result := *r.auto
			if asJSON {
				return writeJSON(cmd, autoJSON{
					Overall:   result.Overall,
					Identical: result.Identical,
					Summary:   result.Summary,
					Samples:   framesJSON(result.Samples),
				})
			}

			colorize := shouldColorize(out)
			if showSamples && len(result.Samples) > 0 {
				fmt.Fprintln(out, renderFrameTable(result.Samples))
			}
			kind, verdict := statusWarn, "Different"
			if result.Identical {
				kind, verdict = statusOK, "Identical"
			}
			fmt.Fprintln(out, renderStatusLine("Verdict", kind, verdict, colorize))
			fmt.Fprintln(out, renderStatusLine("Overall", statusInfo, formatPercent(result.Overall), colorize))
			fmt.Fprintln(out, result.Summary)
			return nil
		},
	}

	addOffsetFlags(cmd, &offsetA, &offsetB)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&showSamples, "samples", false, "Print every sampled frame pair")
	return cmd
}
