package sigstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidsync/internal/signature"
	"vidsync/internal/sigstore"
	"vidsync/internal/testsupport"
)

func openStore(t *testing.T) (*sigstore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := sigstore.Open(filepath.Join(dir, "cache", "signatures.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func mediaFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, size)
	return path
}

type countingSigner struct {
	calls int
	sig   signature.Signature
}

func (c *countingSigner) Signature(context.Context, string, int64) signature.Signature {
	c.calls++
	return c.sig
}

func TestSaveAndLookup(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	path := mediaFile(t, dir, "a.mkv", 64)

	sig := signature.Extract(testsupport.PatternFrame(5, 5))
	sig.Hash |= 1 << 63
	if err := store.Save(ctx, path, 2500, sig); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Lookup(ctx, path, 2500)
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if got != sig {
		t.Fatalf("Lookup returned a different signature:\n%+v\n%+v", got, sig)
	}
	if _, ok, _ := store.Lookup(ctx, path, 3000); ok {
		t.Fatal("expected miss for another timestamp")
	}
}

func TestChangedFileMisses(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	path := mediaFile(t, dir, "a.mkv", 64)

	if err := store.Save(ctx, path, 0, signature.Extract(testsupport.PatternFrame(1, 1))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(path, []byte("re-encoded video-a"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, ok, err := store.Lookup(ctx, path, 0); ok || err != nil {
		t.Fatalf("changed file should miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, path, 0, signature.Extract(testsupport.PatternFrame(1, 2))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Signatures != 1 {
		t.Fatalf("stale rows should be replaced, got %d signatures", stats.Signatures)
	}
}

func TestPurgeAndStats(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	a := mediaFile(t, dir, "a.mkv", 32)
	b := mediaFile(t, dir, "b.mkv", 48)
	sig := signature.Extract(testsupport.PatternFrame(2, 2))
	for _, ts := range []int64{0, 500, 1000} {
		if err := store.Save(ctx, a, ts, sig); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := store.Save(ctx, b, 0, sig); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Signatures != 4 || stats.Files != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	removed, err := store.Purge(ctx, a)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	stats, _ = store.Stats(ctx)
	if stats.Signatures != 1 || stats.Files != 1 {
		t.Fatalf("stats after purge = %+v", stats)
	}
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signatures.db")
	first, err := sigstore.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := sigstore.Open(path, nil); !errors.Is(err, sigstore.ErrLocked) {
		t.Fatalf("second Open err = %v, want ErrLocked", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened, err := sigstore.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	_ = reopened.Close()
}

func TestWrapReadsThrough(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	path := mediaFile(t, dir, "a.mkv", 32)

	inner := &countingSigner{sig: signature.Extract(testsupport.PatternFrame(3, 3))}
	signer := store.Wrap(inner)
	first := signer.Signature(ctx, path, 1000)
	second := signer.Signature(ctx, path, 1000)
	if inner.calls != 1 {
		t.Fatalf("inner signer called %d times, want 1", inner.calls)
	}
	if first != second {
		t.Fatal("stored signature differs from computed one")
	}
}

func TestWrapSkipsAbsentAndMissingFiles(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	path := mediaFile(t, dir, "a.mkv", 32)

	inner := &countingSigner{sig: signature.Absent()}
	signer := store.Wrap(inner)
	signer.Signature(ctx, path, 0)
	signer.Signature(ctx, path, 0)
	if inner.calls != 2 {
		t.Fatalf("absent signatures must not be persisted, inner calls = %d", inner.calls)
	}

	inner.sig = signature.Extract(testsupport.PatternFrame(1, 1))
	missing := filepath.Join(dir, "missing.mkv")
	if got := signer.Signature(ctx, missing, 0); !got.Present {
		t.Fatal("expected inner signature for a missing file")
	}
	stats, _ := store.Stats(ctx)
	if stats.Signatures != 0 {
		t.Fatalf("stats = %+v, want empty store", stats)
	}
}
