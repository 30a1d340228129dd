// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd shows who the cached session belongs to without calling the CRM.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the cached session",
	Long: `The whoami command reads the cached login response and prints the user and
instance it belongs to. It does not contact the server, so an expired session
is still shown; the next query renews it automatically.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if !a.store.Exists() {
			notLoggedIn()
			return nil
		}
		s, err := a.store.Load(a.cfg.RESTPathVersion)
		if err != nil {
			a.log.Debug().Err(err).Msg("cached session unreadable")
			notLoggedIn()
			return nil
		}
		fmt.Printf("👤 Current user: %s (%s)\n", s.UserName, s.UserID)
		fmt.Printf("   Instance: %s\n", s.ServerURL)
		return nil
	},
}

func notLoggedIn() {
	fmt.Println("🔒 You're not logged in yet!")
	fmt.Println("   Run 'sfquery login' to get started.")
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
