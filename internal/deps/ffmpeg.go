package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// ProbeVersion runs "<binary> -version" and returns the first line of its
// output, e.g. "ffmpeg version 7.1 Copyright ...".
func ProbeVersion(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("probe version: empty binary")
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, binary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("probe %s version: %w", binary, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	if scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("probe %s version: empty output", binary)
}

// ShortVersion trims a version banner to "<name> version <number>".
func ShortVersion(banner string) string {
	fields := strings.Fields(banner)
	if len(fields) >= 3 && fields[1] == "version" {
		return strings.Join(fields[:3], " ")
	}
	return banner
}
