// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	selectAllWhere  []string
	selectAllOutput outputFlags
)

// selectAllCmd queries every field of an object.
var selectAllCmd = &cobra.Command{
	Use:   "select-all <object>",
	Short: "Query every field of an object",
	Long: `The select-all command describes the object, then selects all of its fields with
the given --where conditions. Wide objects make for wide output; --out is
usually what you want.`,
	Example: `  sfquery select-all Case --where "CreatedDate = TODAY" --out cases.csv`,
	Args:    cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := selectAllOutput.validate(); err != nil {
			return err
		}
		filters, err := selectAllOutput.parsedFilters()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Querying all fields of " + args[0])
		records, err := a.client.SelectAll(cmd.Context(), args[0], parseConditions(selectAllWhere), filters...)
		a.ui.Stop()
		if err != nil {
			return a.report(err, "querying "+args[0])
		}
		return selectAllOutput.emit(cmd.Context(), a, records)
	},
}

func init() {
	selectAllCmd.Flags().StringArrayVarP(&selectAllWhere, "where", "w", nil, "WHERE condition (repeatable; '|' separates OR alternatives)")
	selectAllOutput.bind(selectAllCmd)
	rootCmd.AddCommand(selectAllCmd)
}
