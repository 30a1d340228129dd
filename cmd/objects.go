// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sfquery/cli/internal/crm"
)

var (
	objectsSearch        string
	objectsCaseSensitive bool
	objectsFuzzy         bool
)

// objectsCmd lists or searches the objects available to the user.
var objectsCmd = &cobra.Command{
	Use:     "objects",
	Aliases: []string{"sobjects"},
	Short:   "List or search the objects you can query",
	Long: `The objects command lists every object available to the logged-in user. With
--search only objects whose name contains the term are shown; --fuzzy also
matches abbreviations such as "cshist" for CaseHistory.`,
	Example: `  sfquery objects --search case
  sfquery objects --search cshist --fuzzy`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Fetching objects")
		var objs []crm.SObject
		if objectsSearch != "" {
			objs, err = a.client.SearchObjects(cmd.Context(), objectsSearch, crm.SearchOptions{
				CaseSensitive: objectsCaseSensitive,
				Fuzzy:         objectsFuzzy,
			})
		} else {
			objs, err = a.client.ListObjects(cmd.Context())
		}
		a.ui.Stop()
		if err != nil {
			return a.report(err, "listing objects")
		}

		if len(objs) == 0 {
			pterm.Info.Println("No matching objects")
			return nil
		}
		for _, o := range objs {
			if o.Queryable {
				pterm.Println(o.Name)
			} else {
				pterm.Println(o.Name + pterm.FgGray.Sprint(" ... (doesn't support query)"))
			}
		}
		return nil
	},
}

func init() {
	f := objectsCmd.Flags()
	f.StringVarP(&objectsSearch, "search", "s", "", "Only show objects whose name contains this text")
	f.BoolVar(&objectsCaseSensitive, "case-sensitive", false, "Match --search case-sensitively")
	f.BoolVar(&objectsFuzzy, "fuzzy", false, "Match --search characters in order rather than as a substring")
	rootCmd.AddCommand(objectsCmd)
}
