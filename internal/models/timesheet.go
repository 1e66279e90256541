package models

import "time"

// Timesheet is one persisted timesheet row.
//
// Date is the normalized "2006-01-02" string, or empty when the source date
// could not be parsed (best-effort import). Start/End times are kept exactly
// as uploaded; normalization happens at validation and aggregation, not here.
type Timesheet struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employeeId"`
	BillableRate float64   `json:"billableRate"`
	ProjectID    int64     `json:"projectId"`
	ProjectName  string    `json:"projectName,omitempty"`
	Date         string    `json:"date"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	SheetName    string    `json:"sheetName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NaturalKey identifies a timesheet row independently of its surrogate ID.
// The tuple is unique per row and drives import-time deduplication.
type NaturalKey struct {
	EmployeeID int64
	ProjectID  int64
	Date       string
	StartTime  string
	EndTime    string
}

// Key returns the natural key of the row.
func (t *Timesheet) Key() NaturalKey {
	return NaturalKey{
		EmployeeID: t.EmployeeID,
		ProjectID:  t.ProjectID,
		Date:       t.Date,
		StartTime:  t.StartTime,
		EndTime:    t.EndTime,
	}
}
