// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sfquery/cli/internal/crm"
)

var (
	describeNoFields   bool
	describeNoChildren bool
)

// describeCmd shows the fields and relationships of an object.
var describeCmd = &cobra.Command{
	Use:   "describe <object>",
	Short: "Show the fields and relationships of an object",
	Long: `The describe command lists the fields (columns) of an object with their types,
marks fields that cannot be used in a WHERE clause and shows the parent object
each reference field points to. Child relationships are listed after the fields.`,
	Example: `  sfquery describe Case`,
	Args:    cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Describing " + args[0])
		d, err := a.client.Describe(cmd.Context(), args[0])
		a.ui.Stop()
		if err != nil {
			return a.report(err, "describing "+args[0])
		}

		pterm.DefaultSection.Println(d.Object)
		if !describeNoFields {
			if err := renderFields(d.Fields); err != nil {
				return err
			}
		}
		if !describeNoChildren && len(d.ChildRelationships) > 0 {
			renderChildren(d.ChildRelationships)
		}
		return nil
	},
}

func renderFields(fields []crm.Field) error {
	data := pterm.TableData{{"Field", "Type", "Notes"}}
	for _, f := range fields {
		var notes []string
		if !f.Filterable {
			notes = append(notes, "can't be used in WHERE")
		}
		if rel, targets, ok := f.ParentRelation(); ok {
			notes = append(notes, `parent relation "`+rel+`" references `+strings.Join(targets, " or "))
		}
		data = append(data, []string{f.Name, f.Type, strings.Join(notes, "; ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderChildren(rels []crm.ChildRelationship) {
	pterm.Println()
	pterm.DefaultSection.WithLevel(2).Println("Child relations")
	var items []pterm.BulletListItem
	for _, r := range rels {
		if r.RelationshipName == "" {
			continue
		}
		items = append(items, pterm.BulletListItem{
			Level: 0,
			Text:  r.RelationshipName + " references " + r.ChildSObject + "." + r.Field,
		})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
}

func init() {
	describeCmd.Flags().BoolVar(&describeNoFields, "no-fields", false, "Skip the field list")
	describeCmd.Flags().BoolVar(&describeNoChildren, "no-children", false, "Skip the child relationships")
	rootCmd.AddCommand(describeCmd)
}
