package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"vidsync/internal/config"
	"vidsync/internal/deps"
	"vidsync/internal/sigstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the signature store briefly to confirm it is usable and
// not held by another process.
func CheckStore(ctx context.Context, path string) Result {
	const name = "Signature store"

	store, err := sigstore.Open(path, nil)
	if errors.Is(err, sigstore.ErrLocked) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (in use by another process)", path)}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d signatures across %d files)", path, stats.Signatures, stats.Files),
	}
}

// CheckSystemDeps evaluates the media tools configured in cfg. Available
// tools report their version banner in Detail.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for frame extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for duration probing",
		},
	}
	statuses := deps.CheckBinaries(requirements)
	for i := range statuses {
		if !statuses[i].Available {
			continue
		}
		banner, err := deps.ProbeVersion(ctx, statuses[i].Resolved)
		if err != nil {
			statuses[i].Detail = "version unknown"
			continue
		}
		statuses[i].Detail = deps.ShortVersion(banner)
	}
	return statuses
}
