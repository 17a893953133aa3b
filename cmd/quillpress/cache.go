// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quillpress/internal/cache"
	"quillpress/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the shared response cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached response from Valkey",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if err := flushResponses(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "response cache flushed")
		return nil
	},
}

// flushResponses drops every response cached in Valkey. Commands that
// change data behind the server's back call it so no instance keeps
// serving the old rows from the shared level.
func flushResponses(ctx context.Context, cfg *config.Config) error {
	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer client.Close()

	cache.NewResponseCache(client, cfg.CacheSize, cfg.CacheTTL).InvalidateAll(ctx)
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
}
