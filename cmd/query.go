// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"sfquery/cli/internal/query"
)

var (
	queryTable   string
	queryColumns []string
	queryWhere   []string
	queryOutput  outputFlags
)

// queryCmd builds a SOQL statement from flags and runs it.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an object by table, columns and conditions",
	Long: `The query command builds a SOQL statement from --table, --columns and --where,
follows every result page, flattens nested relationship fields into dotted
columns and applies client-side --filter predicates.

Each --where is AND-ed with the others; alternatives inside one --where are
separated by '|' and OR-ed together. --filter narrows the result after the fetch
and is meant for fields that SOQL cannot filter on, such as CaseHistory.NewValue.
Supported operators: ==, !=, <, <=, >, >=, in, not in.`,
	Example: `  sfquery query --table CaseHistory \
    --columns Id,CreatedDate,Field,OldValue,NewValue,Case.CaseNumber \
    --where "Field = 'Owner'" --where "CreatedDate = TODAY | CreatedDate = YESTERDAY" \
    --filter "NewValue=='John.Smith'" --out casehist.csv`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if queryTable == "" || len(queryColumns) == 0 {
			return errors.New("--table and --columns are required")
		}
		if err := queryOutput.validate(); err != nil {
			return err
		}
		filters, err := queryOutput.parsedFilters()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Querying " + queryTable)
		records, err := a.client.Query(cmd.Context(), query.Request{
			Table:      queryTable,
			Columns:    queryColumns,
			Conditions: parseConditions(queryWhere),
			Filters:    filters,
		})
		a.ui.Stop()
		if err != nil {
			return a.report(err, "querying "+queryTable)
		}
		return queryOutput.emit(cmd.Context(), a, records)
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryTable, "table", "t", "", "Object to query, e.g. Case")
	f.StringSliceVarP(&queryColumns, "columns", "c", nil, "Columns to select; parent fields use dots (Owner.Name)")
	f.StringArrayVarP(&queryWhere, "where", "w", nil, "WHERE condition (repeatable; '|' separates OR alternatives)")
	queryOutput.bind(queryCmd)
	rootCmd.AddCommand(queryCmd)
}
