// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var soqlOutput outputFlags

// soqlCmd runs a SOQL statement as written.
var soqlCmd = &cobra.Command{
	Use:   "soql <statement>",
	Short: "Run a raw SOQL statement",
	Long: `The soql command sends the statement unchanged, follows every result page and
flattens nested relationship fields into dotted columns. The same --filter,
--order and export flags as the query command apply.`,
	Example: `  sfquery soql "SELECT Id, CreatedDate, Field, NewValue, Case.CaseNumber FROM CaseHistory WHERE Field = 'Owner'" \
    --filter "NewValue=='John.Smith'" --order id,createddate,newvalue`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := soqlOutput.validate(); err != nil {
			return err
		}
		filters, err := soqlOutput.parsedFilters()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Running SOQL")
		records, err := a.client.QuerySOQL(cmd.Context(), strings.Join(args, " "), filters...)
		a.ui.Stop()
		if err != nil {
			return a.report(err, "running the query")
		}
		return soqlOutput.emit(cmd.Context(), a, records)
	},
}

func init() {
	soqlOutput.bind(soqlCmd)
	rootCmd.AddCommand(soqlCmd)
}
