package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidsync/internal/config"
	"vidsync/internal/session"
)

// resolveVideoPath expands arg to an absolute path of an existing file.
func resolveVideoPath(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("video path is required")
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("inspect path %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

func pairOptions(args []string, offsetA, offsetB int64) (runnerOptions, error) {
	pathA, err := resolveVideoPath(args[0])
	if err != nil {
		return runnerOptions{}, fmt.Errorf("video A: %w", err)
	}
	pathB, err := resolveVideoPath(args[1])
	if err != nil {
		return runnerOptions{}, fmt.Errorf("video B: %w", err)
	}
	return runnerOptions{pathA: pathA, pathB: pathB, offsetA: offsetA, offsetB: offsetB}, nil
}

func addOffsetFlags(cmd *cobra.Command, offsetA, offsetB *int64) {
	cmd.Flags().Int64Var(offsetA, "offset-a", 0, "Offset applied to video A in milliseconds")
	cmd.Flags().Int64Var(offsetB, "offset-b", 0, "Offset applied to video B in milliseconds")
}

func frameRows(results []session.FrameResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			formatTimestamp(r.TimestampMS),
			formatTimestamp(r.TimestampA),
			formatTimestamp(r.TimestampB),
			formatPercent(r.Similarity),
		})
	}
	return rows
}

func renderFrameTable(results []session.FrameResult) string {
	return renderTableWithFooter(
		[]string{"Time", "A", "B", "Similarity"},
		frameRows(results),
		[]string{"", "", "Average", formatPercent(averageSimilarity(results))},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	)
}

func averageSimilarity(results []session.FrameResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Similarity
	}
	return sum / float64(len(results))
}
