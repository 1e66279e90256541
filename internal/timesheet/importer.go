package timesheet

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/billrate-system/backend/internal/models"
	"github.com/billrate-system/backend/internal/staging"
	"github.com/billrate-system/backend/internal/store"
)

// ErrFileNotFound is returned when the named file is not in the staging area.
var ErrFileNotFound = errors.New("File not found!")

// SkippedRow records one row the pipeline passed over and why, so callers
// and tests can assert on best-effort behavior instead of reading logs.
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult reports the outcome of one import run.
//
// SheetName is empty when zero new rows were inserted; that is still a
// success. Invoice holds the aggregation over the full uploaded file
// (duplicates included); InvoiceError is set instead when aggregation failed.
type ImportResult struct {
	SheetName    string
	Inserted     int
	Skipped      []SkippedRow
	Invoice      models.InvoiceData
	InvoiceError string
}

// Importer re-reads staged files and persists their rows.
type Importer struct {
	Store   store.BillingStore
	Staging staging.Store
	Log     *log.Logger
}

const sheetNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSheetName produces a batch label: the fixed "sheet" prefix followed
// by six random uppercase-alphanumeric characters. The label is not checked
// against existing labels; a collision would silently merge unrelated batches
// under one name. TODO: re-verify generated labels against the store once the
// desired dedup scope is confirmed.
func GenerateSheetName() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = sheetNameAlphabet[rand.IntN(len(sheetNameAlphabet))]
	}
	return "sheet" + string(suffix)
}

// Import parses the staged file, deduplicates its rows against persisted
// timesheets by natural key, bulk-inserts the survivors under a fresh sheet
// name and aggregates the full file into invoice data.
//
// Row-level failures (unresolvable project, uncoercible cells) skip the row
// and are recorded; they never abort the batch. Partial success is the policy.
func (im *Importer) Import(ctx context.Context, fileName string) (*ImportResult, error) {
	if !im.Staging.Exists(fileName) {
		return nil, ErrFileNotFound
	}

	f, err := im.Staging.Open(fileName)
	if err != nil {
		return nil, ErrFileNotFound
	}
	defer f.Close()

	doc, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing staged file: %w", err)
	}

	result := &ImportResult{SheetName: GenerateSheetName()}

	existing, err := im.Store.TimesheetKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading existing timesheets: %w", err)
	}

	projects := make(map[string]*models.Project)
	var batch []*models.Timesheet

	for i, row := range doc.Rows {
		ts, reason := im.buildRow(ctx, row, projects)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: reason})
			im.Log.Warn("skipping row", "file", fileName, "row", i, "reason", reason)
			continue
		}

		key := ts.Key()
		if _, dup := existing[key]; dup {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "duplicate of a persisted row"})
			continue
		}
		// In-file duplicates would break the bulk insert's all-or-nothing
		// commit against the composite unique constraint.
		existing[key] = struct{}{}

		ts.SheetName = result.SheetName
		batch = append(batch, ts)
	}

	if len(batch) > 0 {
		if err := im.Store.BulkInsertTimesheets(ctx, batch); err != nil {
			return nil, fmt.Errorf("bulk insert: %w", err)
		}
		result.Inserted = len(batch)
	} else {
		// Zero inserts is a success with no sheet to report.
		result.SheetName = ""
	}

	// Aggregation runs over the uploaded file's full contents, duplicates
	// included, not over what was newly persisted.
	invoice, aggSkipped, err := Aggregate(doc)
	if err != nil {
		result.InvoiceError = fmt.Sprintf("Invoice generation error: %v", err)
		im.Log.Error("invoice aggregation failed", "file", fileName, "error", err)
	} else {
		result.Invoice = invoice
		result.Skipped = append(result.Skipped, aggSkipped...)
	}

	return result, nil
}

// buildRow coerces one record into a Timesheet. A non-empty reason means the
// row is skipped.
func (im *Importer) buildRow(ctx context.Context, row Row, projects map[string]*models.Project) (*models.Timesheet, string) {
	name := NormalizeProjectName(row.Get(ColProject))
	project, ok := projects[name]
	if !ok {
		p, err := im.Store.GetProjectByName(ctx, name)
		if err != nil {
			return nil, fmt.Sprintf("project %q not registered", name)
		}
		projects[name] = p
		project = p
	}

	employeeID, err := ParseEmployeeID(row.Get(ColEmployeeID))
	if err != nil {
		return nil, err.Error()
	}

	rate, err := ParseRate(row.Get(ColBillableRate))
	if err != nil {
		return nil, err.Error()
	}

	// Unparseable dates coerce to the null marker and proceed best-effort.
	date := NormalizeDate(row.Get(ColDate))

	return &models.Timesheet{
		EmployeeID:   employeeID,
		BillableRate: rate,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		Date:         date,
		StartTime:    row.Get(ColStartTime),
		EndTime:      row.Get(ColEndTime),
	}, ""
}
