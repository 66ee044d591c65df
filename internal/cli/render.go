package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yungbote/assetpm-backend/internal/maintenance/pivot"
)

const dateLayout = "2006-01-02"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	passStyle   = cellStyle.Foreground(lipgloss.Color("82"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("196")).Bold(true)
	naStyle     = cellStyle.Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// fixed columns before the checklist columns
var assetHeaders = []string{"Tag", "Item", "Serial", "PMs", "Latest PM"}

func renderTables(w io.Writer, tables []pivot.Table, history bool) error {
	if len(tables) == 0 {
		_, err := fmt.Fprintln(w, noteStyle.Render("No assets found."))
		return err
	}
	for _, t := range tables {
		if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d assets)", t.Category, len(t.Rows)))); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, renderTable(t, history)); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(t pivot.Table, history bool) string {
	headers := append([]string{}, assetHeaders...)
	for _, col := range t.Columns {
		headers = append(headers, col.CheckItem)
	}
	if history {
		headers = append(headers, "History")
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, tableRow(r, history))
	}

	first := len(assetHeaders)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(t.Rows) || col < first || col-first >= len(t.Rows[row].Cells) {
				return cellStyle
			}
			switch t.Rows[row].Cells[col-first] {
			case pivot.Pass:
				return passStyle
			case pivot.Fail:
				return failStyle
			default:
				return naStyle
			}
		}).
		String()
}

func tableRow(r pivot.Row, history bool) []string {
	latest := "-"
	if r.LatestPMDate != nil {
		latest = r.LatestPMDate.Format(dateLayout)
		if r.Ambiguous {
			latest += " *"
		}
	}
	out := []string{r.Asset.TagID, r.Asset.ItemName, r.Asset.SerialNumber, strconv.Itoa(r.PMCount), latest}
	for _, c := range r.Cells {
		out = append(out, cellText(c))
	}
	if history {
		out = append(out, historyText(r.PMRecords))
	}
	return out
}

func cellText(c pivot.Cell) string {
	switch c {
	case pivot.Pass:
		return "OK"
	case pivot.Fail:
		return "FAIL"
	default:
		return "-"
	}
}

func historyText(refs []pivot.EventRef) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, fmt.Sprintf("#%d %s (PM %d)", ref.Ordinal, ref.PMDate.Format(dateLayout), ref.PMID))
	}
	return strings.Join(parts, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
