package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
	"github.com/yungbote/assetpm-backend/internal/maintenance/dashboard"
)

func (e *env) filter() (dashboard.Filter, error) {
	f := dashboard.Filter{
		CustomerID: strings.TrimSpace(e.flags.customer),
		Branch:     strings.TrimSpace(e.flags.branch),
	}
	if !f.Valid() {
		return f, errors.New("--customer and --branch are required")
	}
	return f, nil
}

// loadBoard fetches the rows of the selected branch. A failed fetch leaves
// the board empty with Err set.
func (e *env) loadBoard(cmd *cobra.Command) (*dashboard.Board, error) {
	f, err := e.filter()
	if err != nil {
		return nil, err
	}
	board := dashboard.NewBoard(e.client, e.log, aggregate.Options{TieBreak: e.cfg.TieBreak})
	if err := board.Load(cmd.Context(), f); err != nil {
		return nil, err
	}
	return board, nil
}

func newPivotCommand(e *env) *cobra.Command {
	var (
		search  string
		history bool
	)
	cmd := &cobra.Command{
		Use:     "pivot",
		Aliases: []string{"rows"},
		Short:   "Show one table per category with the latest checklist results",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board, err := e.loadBoard(cmd)
			if err != nil {
				return err
			}
			board.SetSearch(search)
			tables := board.Tables()
			if e.flags.json {
				return writeJSON(e.out, tables)
			}
			if err := renderTables(e.out, tables, history); err != nil {
				return err
			}
			if amb := board.Result().Report.AmbiguousAssets; len(amb) > 0 {
				cmd.PrintErrln(noteStyle.Render("* several PM events share the latest date; snapshot is ambiguous"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only assets whose tag, item name or serial contains this text")
	cmd.Flags().BoolVar(&history, "history", false, "add a column listing every PM event in date order")
	return cmd
}
