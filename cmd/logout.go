// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sfquery/cli/internal/keychain"
	"sfquery/cli/internal/session"
	"sfquery/cli/internal/xdg"
)

// logoutCmd removes the cached session and any saved credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached session and saved credentials",
	Long: `The logout command deletes the cached login response from the state directory
and removes credentials saved with 'sfquery login --save' from the OS keychain.
Credentials in the config file or environment are left alone.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := xdg.SessionFile()
		if err != nil {
			return err
		}
		if err := session.NewStore(path).Clear(); err != nil {
			return fmt.Errorf("remove cached session: %w", err)
		}

		// Best effort: secure storage may be missing on headless machines.
		if km, err := keychain.GetManager(); err == nil {
			_ = km.ClearCredentials()
		}

		fmt.Println("✅ Cached session and saved credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
