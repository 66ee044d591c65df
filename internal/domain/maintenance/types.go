package maintenance

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response headers that describe a rendered export document.
const (
	HeaderExportCustomer  = "X-Export-Customer"
	HeaderExportBranch    = "X-Export-Branch"
	HeaderExportTimestamp = "X-Export-Timestamp"
)

type ChecklistDefinition struct {
	ChecklistID   int64  `json:"Checklist_ID"`
	CategoryID    int64  `json:"Category_ID"`
	CheckItem     string `json:"Check_Item"`
	CheckItemLong string `json:"Check_item_Long"`
}

type ExportRequest struct {
	PMIDs []int64 `json:"pmIds"`
}

type SubmitCheck struct {
	ChecklistID int64  `json:"Checklist_ID"`
	IsOK        bool   `json:"Is_OK_bool"`
	Remarks     string `json:"Remarks"`
}

type SubmitEventInput struct {
	AssetID          int64         `json:"assetId"`
	PMDate           time.Time     `json:"pmDate"`
	Remarks          string        `json:"remarks"`
	ChecklistResults []SubmitCheck `json:"checklistResults"`
}

type SubmitEventResult struct {
	PMID int64 `json:"pmId"`
	Row  Row   `json:"row"`
}

// DecodeRows decodes a JSON array of rows, dropping elements that are not
// objects. It returns the number of dropped elements.
func DecodeRows(data []byte) ([]Row, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("decode rows: %w", err)
	}
	rows := make([]Row, 0, len(items))
	dropped := 0
	for _, item := range items {
		var r Row
		if err := json.Unmarshal(item, &r); err != nil {
			dropped++
			continue
		}
		rows = append(rows, r)
	}
	return rows, dropped, nil
}

func (in *SubmitEventInput) UnmarshalJSON(data []byte) error {
	type plain SubmitEventInput
	var aux struct {
		plain
		PMDate string `json:"pmDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*in = SubmitEventInput(aux.plain)
	in.PMDate = ParseDate(aux.PMDate)
	return nil
}
