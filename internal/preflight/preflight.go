package preflight

import (
	"context"

	"vidsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks applicable to cfg. The signature
// store is only checked when enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}
	if cfg.Store.Enabled {
		results = append(results, CheckStore(ctx, cfg.StorePath()))
	}
	return results
}
