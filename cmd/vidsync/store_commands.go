package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidsync/internal/config"
	"vidsync/internal/sigstore"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and prune the signature store",
	}
	storeCmd.AddCommand(newStoreStatsCommand(ctx))
	storeCmd.AddCommand(newStorePurgeCommand(ctx))
	return storeCmd
}

func (c *commandContext) openSignatureStore() (*sigstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Store.Enabled {
		return nil, errors.New("signature store is disabled (set store.enabled = true)")
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := sigstore.Open(cfg.StorePath(), logger)
	if errors.Is(err, sigstore.ErrLocked) {
		return nil, fmt.Errorf("signature store %s is in use by another process", cfg.StorePath())
	}
	if err != nil {
		return nil, fmt.Errorf("open signature store: %w", err)
	}
	return store, nil
}

func newStoreStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show signature store totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSignatureStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Path", store.Path()},
				{"Files", fmt.Sprintf("%d", stats.Files)},
				{"Signatures", fmt.Sprintf("%d", stats.Signatures)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newStorePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <video>",
		Short: "Remove stored signatures for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			store, err := ctx.openSignatureStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Purge(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d signatures for %s\n", removed, path)
			return nil
		},
	}
}
