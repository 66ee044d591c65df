package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newChecklistCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "checklist <category-id>",
		Short: "List the checklist items defined for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || categoryID <= 0 {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			defs, err := e.client.ListChecklist(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			if e.flags.json {
				return writeJSON(e.out, defs)
			}
			rows := make([][]string, 0, len(defs))
			for _, d := range defs {
				rows = append(rows, []string{strconv.FormatInt(d.ChecklistID, 10), d.CheckItem, d.CheckItemLong})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(borderStyle).
				Headers("ID", "Item", "Description").
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			_, err = fmt.Fprintln(e.out, t.String())
			return err
		},
	}
}
