package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"tokodash/internal/session"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the store API and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				password = strings.TrimSpace(os.Getenv("TOKODASH_PASSWORD"))
			}
			if password == "" {
				return errors.New("--password or TOKODASH_PASSWORD is required")
			}

			token, err := c.apiClient().Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			store := session.NewStore()
			if err := store.Login(token); err != nil {
				return err
			}
			if err := store.SaveFile(c.cfg.SessionFile); err != nil {
				return err
			}

			snap := store.Snapshot()
			fmt.Fprintf(c.out, "Logged in as %s (%s)\n", snap.Identity.Username, snap.Identity.StoreName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "merchant username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "merchant password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.NewStore()
			if err := store.SaveFile(c.cfg.SessionFile); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}
