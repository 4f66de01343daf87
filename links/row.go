package links

import "fmt"

// Row statuses.
const (
	// StatusNew marks a link that has not been redeemed yet.
	// It is also the default status of appended rows.
	StatusNew = "new"

	// StatusUsed is the status the redeeming system writes after consuming a link.
	StatusUsed = "used"
)

// DefaultSheetName is the worksheet used when none is configured.
const DefaultSheetName = "Links"

// Row is a single (link, status) pair stored in the spreadsheet.
type Row struct {
	Link   string
	Status string
}

// Target identifies the worksheet holding the links.
type Target struct {
	SpreadsheetID string
	SheetName     string
}

// Range returns the A1 notation of the two link columns, e.g. "Links!A:B".
func (t Target) Range() string {
	sheet := t.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	return fmt.Sprintf("%s!A:B", sheet)
}

// AppendResult describes the outcome of appending a row.
type AppendResult struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	TableRange    string        `json:"tableRange,omitempty"`
	Updates       UpdatedValues `json:"updates"`
}

// UpdatedValues summarizes the cells written by an append.
type UpdatedValues struct {
	SpreadsheetID  string `json:"spreadsheetId,omitempty"`
	UpdatedRange   string `json:"updatedRange,omitempty"`
	UpdatedRows    int64  `json:"updatedRows,omitempty"`
	UpdatedColumns int64  `json:"updatedColumns,omitempty"`
	UpdatedCells   int64  `json:"updatedCells,omitempty"`
}
