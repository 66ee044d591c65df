package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/assetpm-backend/internal/maintenance/export"
	"github.com/yungbote/assetpm-backend/internal/maintenance/selection"
)

type eventRef struct {
	assetID int64
	pmID    int64
}

func parseEventRef(s string) (eventRef, error) {
	a, p, ok := strings.Cut(s, ":")
	if !ok {
		return eventRef{}, fmt.Errorf("event %q: want <asset-id>:<pm-id>", s)
	}
	assetID, err1 := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	pmID, err2 := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
	if err1 != nil || err2 != nil || assetID <= 0 || pmID <= 0 {
		return eventRef{}, fmt.Errorf("event %q: ids must be positive integers", s)
	}
	return eventRef{assetID: assetID, pmID: pmID}, nil
}

// buildSelection applies the requested assets and events to state. References
// that do not match an available asset or one of its events are returned as
// warnings and otherwise ignored.
func buildSelection(state *selection.State, candidates []selection.Candidate, assets []int64, events []eventRef) []string {
	byID := make(map[int64]selection.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.Asset.ID] = c
	}
	var warnings []string

	for _, id := range assets {
		c, ok := byID[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("asset %d is not available", id))
			continue
		}
		state.AddAsset(c.Asset, c.Records)
		for _, r := range c.Records {
			if !containsID(state.SelectedEvents(id), r.PMID) {
				state.TogglePMEvent(id, r.PMID)
			}
		}
	}
	for _, ref := range events {
		c, ok := byID[ref.assetID]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("asset %d is not available", ref.assetID))
			continue
		}
		state.AddAsset(c.Asset, c.Records)
		if containsID(state.SelectedEvents(ref.assetID), ref.pmID) {
			continue
		}
		if !state.TogglePMEvent(ref.assetID, ref.pmID) {
			warnings = append(warnings, fmt.Sprintf("PM %d does not belong to asset %d", ref.pmID, ref.assetID))
		}
	}
	return warnings
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func newExportCommand(e *env) *cobra.Command {
	var (
		assets []int64
		events []string
		search string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report for the selected PM events",
		Long: `Select PM events and request a report document for them.

--asset selects every PM event of an asset; --event selects a single one.
Both only accept assets of the branch that match --search.
Exits with status 2 when nothing ends up selected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs := make([]eventRef, 0, len(events))
			for _, raw := range events {
				ref, err := parseEventRef(raw)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			}

			board, err := e.loadBoard(cmd)
			if err != nil {
				return err
			}
			candidates := selection.FilterAvailable(search, board.Candidates())
			state := board.Selection()
			for _, w := range buildSelection(state, candidates, assets, refs) {
				cmd.PrintErrln("warning:", w)
			}

			if dryRun {
				req, err := export.BuildRequest(state)
				if err != nil {
					return err
				}
				return writeJSON(e.out, req)
			}

			requester := export.NewRequester(e.client, export.FileSaver{Dir: e.cfg.OutputDir}, e.log)
			total := state.TotalSelectedEvents()
			path, err := requester.Export(cmd.Context(), state)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.out, "Exported %d PM events to %s\n", total, path)
			return err
		},
	}
	cmd.Flags().Int64SliceVar(&assets, "asset", nil, "asset id whose PM events are all selected, repeatable")
	cmd.Flags().StringArrayVar(&events, "event", nil, "single PM event <asset-id>:<pm-id>, repeatable")
	cmd.Flags().StringVar(&search, "search", "", "restrict available assets by tag, item name or serial")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the export request instead of sending it")
	return cmd
}
