package main

import (
	"fmt"
	"time"
)

// formatTimestamp renders milliseconds as [h:]mm:ss.mmm.
func formatTimestamp(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	d := time.Duration(ms) * time.Millisecond
	h := int64(d / time.Hour)
	m := int64(d/time.Minute) % 60
	s := int64(d/time.Second) % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, frac)
	}
	return fmt.Sprintf("%s%02d:%02d.%03d", sign, m, s, frac)
}

// formatOffset renders a signed offset in seconds.
func formatOffset(ms int64) string {
	return fmt.Sprintf("%+.3fs", float64(ms)/1000)
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value*100)
}
