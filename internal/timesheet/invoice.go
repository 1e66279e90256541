package timesheet

import (
	"fmt"

	"github.com/billrate-system/backend/internal/models"
)

// aggregate key: one line item per (project, employee) pair.
type lineKey struct {
	project  string
	employee int64
}

// Aggregate computes per-project invoice data from a parsed file.
//
// Start and end times are re-parsed strictly as 24-hour "HH:MM"; rows in the
// AM/PM form pass row validation but are dropped here, into the skipped
// report. Grouping follows first-encounter order and the unit price is the
// rate of the first row seen for the pair, unchecked for homogeneity.
//
// Any hard failure returns an error in place of the mapping; callers must
// treat that as "no invoice produced" and must not cache partial data.
func Aggregate(doc *Document) (models.InvoiceData, []SkippedRow, error) {
	for _, col := range []string{ColProject, ColEmployeeID, ColBillableRate, ColStartTime, ColEndTime} {
		if !doc.HasColumn(col) {
			return nil, nil, fmt.Errorf("column %q missing", col)
		}
	}

	var skipped []SkippedRow
	items := make(map[lineKey]*models.InvoiceLineItem)
	var keyOrder []lineKey
	var projectOrder []string
	seenProjects := make(map[string]struct{})

	for i, row := range doc.Rows {
		start, startErr := ParseClock24(row.Get(ColStartTime))
		end, endErr := ParseClock24(row.Get(ColEndTime))
		if startErr != nil || endErr != nil {
			skipped = append(skipped, SkippedRow{
				Index:  i,
				Reason: "start/end time not in 24-hour HH:MM form, row excluded from invoice",
			})
			continue
		}

		employeeID, err := ParseEmployeeID(row.Get(ColEmployeeID))
		if err != nil {
			return nil, nil, err
		}
		rate, err := ParseRate(row.Get(ColBillableRate))
		if err != nil {
			return nil, nil, err
		}

		// Same-day time-of-day subtraction; a negative span wraps around
		// the day rather than going negative. No cross-midnight handling.
		seconds := end.Sub(start).Seconds()
		if seconds < 0 {
			seconds += 24 * 3600
		}
		hours := seconds / 3600
		cost := hours * rate

		key := lineKey{project: NormalizeProjectName(row.Get(ColProject)), employee: employeeID}
		item, ok := items[key]
		if !ok {
			item = &models.InvoiceLineItem{
				Project:    key.project,
				EmployeeID: key.employee,
				UnitPrice:  rate,
			}
			items[key] = item
			keyOrder = append(keyOrder, key)
			if _, seen := seenProjects[key.project]; !seen {
				seenProjects[key.project] = struct{}{}
				projectOrder = append(projectOrder, key.project)
			}
		}
		item.TotalHours += hours
		item.TotalCost += cost
	}

	invoice := make(models.InvoiceData, len(projectOrder))
	for _, project := range projectOrder {
		invoice[project] = []models.InvoiceLineItem{}
	}
	for _, key := range keyOrder {
		invoice[key.project] = append(invoice[key.project], *items[key])
	}

	return invoice, skipped, nil
}
