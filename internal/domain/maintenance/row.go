package maintenance

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Asset is the descriptive part of a maintenance row. Asset keys are
// database serials starting at 1, so ID 0 is the "no Asset_ID" marker: a
// missing, null, unparseable or literal 0 Asset_ID all decode to 0 and the
// row is treated as having no asset.
type Asset struct {
	ID            int64  `json:"Asset_ID"`
	TagID         string `json:"Asset_Tag_ID"`
	ItemName      string `json:"Item_Name"`
	SerialNumber  string `json:"Asset_Serial_Number"`
	Category      string `json:"Category"`
	CategoryID    int64  `json:"Category_ID"`
	RecipientName string `json:"Recipient_Name"`
	Department    string `json:"Department"`
}

// Matches reports whether search occurs in the tag id, item name or serial
// number, ignoring case. An empty search matches every asset.
func (a Asset) Matches(search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(search)
	for _, field := range []string{a.TagID, a.ItemName, a.SerialNumber} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// PMRecord identifies one preventive-maintenance event.
type PMRecord struct {
	PMID   int64     `json:"PM_ID"`
	PMDate time.Time `json:"PM_Date"`
}

type ChecklistResult struct {
	ChecklistID int64  `json:"Checklist_ID"`
	CheckItem   string `json:"Check_Item"`
	IsOK        bool   `json:"Is_OK_bool"`
	Remarks     string `json:"Remarks"`
}

func (r *ChecklistResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ChecklistResult{
		ChecklistID: looseInt(raw["Checklist_ID"]),
		CheckItem:   looseString(raw["Check_Item"]),
		IsOK:        looseBool(raw["Is_OK_bool"]),
		Remarks:     looseString(raw["Remarks"]),
	}
	return nil
}

type ChecklistColumn struct {
	ChecklistID int64  `json:"Checklist_ID"`
	CheckItem   string `json:"Check_Item"`
}

// Row is one (asset, event) pair as delivered by the row source. Event is nil
// for an asset that has never been maintained; such an asset appears as
// exactly one row.
type Row struct {
	Asset
	Event            *PMRecord
	ChecklistResults []ChecklistResult
}

type wireRow struct {
	Asset
	PMID             *int64            `json:"PM_ID"`
	PMDate           *string           `json:"PM_Date"`
	ChecklistResults []ChecklistResult `json:"checklist_results"`
}

func (r Row) MarshalJSON() ([]byte, error) {
	w := wireRow{Asset: r.Asset, ChecklistResults: r.ChecklistResults}
	if w.ChecklistResults == nil {
		w.ChecklistResults = []ChecklistResult{}
	}
	if r.Event != nil {
		id := r.Event.PMID
		date := r.Event.PMDate.UTC().Format(time.RFC3339)
		w.PMID = &id
		w.PMDate = &date
	}
	return json.Marshal(w)
}

// UnmarshalJSON never rejects a row because of one bad field: wrong-typed
// fields decode to their zero value so the rest of the batch survives.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Row{
		Asset: Asset{
			ID:            looseInt(raw["Asset_ID"]),
			TagID:         looseString(raw["Asset_Tag_ID"]),
			ItemName:      looseString(raw["Item_Name"]),
			SerialNumber:  looseString(raw["Asset_Serial_Number"]),
			Category:      looseString(raw["Category"]),
			CategoryID:    looseInt(raw["Category_ID"]),
			RecipientName: looseString(raw["Recipient_Name"]),
			Department:    looseString(raw["Department"]),
		},
	}
	if pm, ok := raw["PM_ID"]; ok && !isNull(pm) {
		out.Event = &PMRecord{
			PMID:   looseInt(pm),
			PMDate: ParseDate(looseString(raw["PM_Date"])),
		}
	}
	if results, ok := raw["checklist_results"]; ok {
		out.ChecklistResults = looseResults(results)
	}
	*r = out
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date shapes the row source emits. Unparseable input
// yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func looseString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseInt(raw json.RawMessage) int64 {
	if isNull(raw) {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
	}
	return 0
}

func looseBool(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, err := n.Float64()
		return err == nil && f != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "ok":
			return true
		}
	}
	return false
}

func looseResults(raw json.RawMessage) []ChecklistResult {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]ChecklistResult, 0, len(items))
	for _, item := range items {
		var cr ChecklistResult
		if err := json.Unmarshal(item, &cr); err != nil {
			continue
		}
		out = append(out, cr)
	}
	return out
}
