// Package timesheet implements the ingestion pipeline: CSV parsing,
// validation, import into the billing store and invoice aggregation.
package timesheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Required column names of an uploaded timesheet file.
const (
	ColEmployeeID   = "Employee ID"
	ColBillableRate = "Billable Rate"
	ColProject      = "Project"
	ColDate         = "Date"
	ColStartTime    = "Start Time"
	ColEndTime      = "End Time"
)

// RequiredColumns lists the six columns every upload must carry, in the
// order validation reports them.
var RequiredColumns = []string{
	ColEmployeeID,
	ColBillableRate,
	ColProject,
	ColDate,
	ColStartTime,
	ColEndTime,
}

// Row is one data record of an uploaded file, addressed by column name.
// Cells hold the raw uploaded text; typed access goes through the coercion
// helpers in validate.go.
type Row struct {
	cells map[string]string
}

// Get returns the raw cell value for a column, or "" when absent.
func (r Row) Get(col string) string {
	return r.cells[col]
}

// Missing reports whether the cell is absent or blank.
func (r Row) Missing(col string) bool {
	return strings.TrimSpace(r.cells[col]) == ""
}

// Document is a parsed tabular upload: a header and its data rows.
type Document struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains the named column.
func (d *Document) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ExtraColumns returns header columns outside the required six, in header order.
func (d *Document) ExtraColumns() []string {
	required := make(map[string]struct{}, len(RequiredColumns))
	for _, c := range RequiredColumns {
		required[c] = struct{}{}
	}

	var extra []string
	for _, c := range d.Columns {
		if _, ok := required[c]; !ok {
			extra = append(extra, c)
		}
	}
	return extra
}

// ParseCSV reads a delimited file with a header row into a Document.
// Short records are padded so every row answers for every header column;
// header cells are trimmed of surrounding whitespace.
func ParseCSV(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	doc := &Document{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(doc.Rows)+1, err)
		}

		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				cells[col] = record[i]
			} else {
				cells[col] = ""
			}
		}
		doc.Rows = append(doc.Rows, Row{cells: cells})
	}

	return doc, nil
}

var titleCaser = cases.Title(language.English)

// NormalizeProjectName trims and title-cases a project name so file values
// compare against registration-time storage.
func NormalizeProjectName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}
