package deps

import (
	"context"
	"testing"

	"vidsync/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := testsupport.WriteStubBinary(t, binDir, "present", "exit 0")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "another-missing-binary", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Resolved != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[3].Detail)
	}

	missing := Missing(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Blank" {
		t.Fatalf("Missing = %#v", missing)
	}
}

func TestProbeVersion(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.WriteStubBinary(t, dir, "ffmpeg", `echo "ffmpeg version 7.1 Copyright (c) 2000-2024"
echo "built with gcc"`)

	banner, err := ProbeVersion(context.Background(), bin)
	if err != nil {
		t.Fatalf("ProbeVersion: %v", err)
	}
	if banner != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("banner = %q", banner)
	}
	if got := ShortVersion(banner); got != "ffmpeg version 7.1" {
		t.Fatalf("ShortVersion = %q", got)
	}

	failing := testsupport.WriteStubBinary(t, dir, "broken", "exit 3")
	if _, err := ProbeVersion(context.Background(), failing); err == nil {
		t.Fatal("expected error from failing binary")
	}
}
