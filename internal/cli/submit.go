package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
)

// parseCheck reads "<checklist-id>=<ok|fail>[:remarks]".
func parseCheck(s string) (maintenance.SubmitCheck, error) {
	id, rest, ok := strings.Cut(s, "=")
	if !ok {
		return maintenance.SubmitCheck{}, fmt.Errorf("check %q: want <id>=<ok|fail>[:remarks]", s)
	}
	checklistID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || checklistID <= 0 {
		return maintenance.SubmitCheck{}, fmt.Errorf("check %q: invalid checklist id", s)
	}
	status, remarks, _ := strings.Cut(rest, ":")
	var isOK bool
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok", "pass", "yes", "1", "true":
		isOK = true
	case "fail", "no", "0", "false":
		isOK = false
	default:
		return maintenance.SubmitCheck{}, fmt.Errorf("check %q: status must be ok or fail", s)
	}
	return maintenance.SubmitCheck{ChecklistID: checklistID, IsOK: isOK, Remarks: strings.TrimSpace(remarks)}, nil
}

func newSubmitCommand(e *env) *cobra.Command {
	var (
		assetID int64
		date    string
		remarks string
		checks  []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a PM event for an asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if assetID <= 0 {
				return errors.New("--asset is required")
			}
			pmDate := maintenance.ParseDate(date)
			if pmDate.IsZero() {
				return fmt.Errorf("invalid --date %q", date)
			}
			in := maintenance.SubmitEventInput{AssetID: assetID, PMDate: pmDate, Remarks: remarks}
			for _, raw := range checks {
				c, err := parseCheck(raw)
				if err != nil {
					return err
				}
				in.ChecklistResults = append(in.ChecklistResults, c)
			}
			res, err := e.client.SubmitEvent(cmd.Context(), in)
			if err != nil {
				return err
			}
			if e.flags.json {
				return writeJSON(e.out, res)
			}
			_, err = fmt.Fprintf(e.out, "Recorded PM %d for asset %d on %s\n", res.PMID, assetID, pmDate.Format(dateLayout))
			return err
		},
	}
	cmd.Flags().Int64Var(&assetID, "asset", 0, "asset id")
	cmd.Flags().StringVar(&date, "date", "", "PM date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&remarks, "remarks", "", "event remarks")
	cmd.Flags().StringArrayVar(&checks, "check", nil, "checklist result <id>=<ok|fail>[:remarks], repeatable")
	return cmd
}
