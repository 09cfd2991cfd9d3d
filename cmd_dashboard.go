package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tokodash/internal/dashboard"
	"tokodash/internal/storefront"
	"tokodash/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive merchant dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			store, err := c.loadSession()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(c.cfg.SessionFile), 0o700); err != nil {
				return fmt.Errorf("creating session directory: %w", err)
			}
			go func() {
				if err := store.Watch(ctx, c.cfg.SessionFile, c.logger.Named("session")); err != nil {
					c.logger.Warn("Session watcher stopped", zap.Error(err))
				}
			}()

			api := c.apiClient()
			shell := dashboard.New(dashboard.Options{
				Session: store,
				Items:   api,
				Orders:  api,
				Logger:  c.logger,
			})
			defer shell.Close()

			return ui.Run(ctx, ui.Options{
				Shell:     shell,
				Favorites: storefront.NewFavorites(),
				Logger:    c.logger.Named("ui"),
			})
		},
	}
}
