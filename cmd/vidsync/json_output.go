package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"vidsync/internal/session"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type frameJSON struct {
	TimestampMS int64   `json:"timestamp_ms"`
	TimestampA  int64   `json:"timestamp_a_ms"`
	TimestampB  int64   `json:"timestamp_b_ms"`
	Similarity  float64 `json:"similarity"`
}

type compareJSON struct {
	Cancelled bool        `json:"cancelled"`
	Frames    []frameJSON `json:"frames"`
}

type autoJSON struct {
	Cancelled bool        `json:"cancelled"`
	Overall   float64     `json:"overall"`
	Identical bool        `json:"identical"`
	Summary   string      `json:"summary"`
	Samples   []frameJSON `json:"samples"`
}

type offsetJSON struct {
	OffsetMS   int64   `json:"offset_ms"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
	Candidates int     `json:"candidates"`
	Refined    bool    `json:"refined"`
}

func framesJSON(results []session.FrameResult) []frameJSON {
	out := make([]frameJSON, 0, len(results))
	for _, r := range results {
		out = append(out, frameJSON{
			TimestampMS: r.TimestampMS,
			TimestampA:  r.TimestampA,
			TimestampB:  r.TimestampB,
			Similarity:  r.Similarity,
		})
	}
	return out
}
