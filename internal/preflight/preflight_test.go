package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidsync/internal/sigstore"
	"vidsync/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllChecksStoreWhenEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStore())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("check %s failed: %s", r.Name, r.Detail)
		}
	}

	cfg.Store.Enabled = false
	if got := len(RunAll(context.Background(), cfg)); got != 2 {
		t.Fatalf("expected store check to be skipped, got %d results", got)
	}
}

func TestCheckStoreLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signatures.db")
	store, err := sigstore.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	result := CheckStore(context.Background(), path)
	if result.Passed || !strings.Contains(result.Detail, "in use") {
		t.Fatalf("expected locked store to fail, got %+v", result)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	binDir := filepath.Join(testsupport.BaseDir(cfg), "bin")
	testsupport.WriteStubBinary(t, binDir, "ffmpeg", `echo "ffmpeg version 7.1 Copyright"`)
	testsupport.PrependPath(t, binDir)
	cfg.Tools.FFprobe = "definitely-missing-ffprobe"

	statuses := CheckSystemDeps(context.Background(), cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Detail != "ffmpeg version 7.1" {
		t.Fatalf("ffmpeg status = %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("ffprobe should be missing: %+v", statuses[1])
	}
}
