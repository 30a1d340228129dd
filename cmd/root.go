// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sfquery.
// It implements subcommands for logging in to the CRM, running SOQL queries,
// browsing objects and exporting results, using the Cobra CLI framework and
// pterm for terminal output.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sfquery/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	configPath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sfquery",
	Short: "Query CRM objects with SOQL from the command line",
	Long: `sfquery logs in to the CRM through its SOAP login endpoint, keeps the session
between runs, and runs paginated SOQL queries through the REST API. Nested
relationship fields are flattened to dotted columns (Case.Owner.Name) and can be
filtered client-side, shown as a table, or exported to CSV or PostgreSQL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sfquery %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP traffic and pagination at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/sfquery/config.yaml)")
}
