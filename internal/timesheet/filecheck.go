package timesheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/billrate-system/backend/internal/staging"
)

// FileChecker runs whole-file validation over an upload and stages the raw
// bytes when every check passes. A rejected upload has no side effect.
type FileChecker struct {
	Staging staging.Store
	// RowChecks enables per-row structural validation on upload.
	RowChecks bool
	// MaxCheckedRows bounds row validation; zero checks every row.
	MaxCheckedRows int
}

// AcceptUpload validates the named file against the registered project list
// and the structural rules, in order. On success the original bytes are
// written to the staging area under the original name and the stored name is
// returned. On rejection the returned messages describe every violation the
// failing check found.
func (fc *FileChecker) AcceptUpload(name string, data []byte, registered []string) (string, []string, error) {
	if !strings.HasSuffix(name, ".csv") {
		return "", []string{"Only CSV files are allowed!"}, nil
	}

	doc, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return "", []string{fmt.Sprintf("File processing error: %v", err)}, nil
	}

	if errs := fc.check(doc, registered); len(errs) > 0 {
		return "", errs, nil
	}

	info, err := fc.Staging.Save(name, bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("staging upload: %w", err)
	}

	return info.Name, nil, nil
}

// check applies the whole-file rules and returns the first failing check's
// messages.
func (fc *FileChecker) check(doc *Document, registered []string) []string {
	if errs := checkProjectWhitelist(doc, registered); len(errs) > 0 {
		return errs
	}
	if errs := checkColumns(doc); len(errs) > 0 {
		return errs
	}
	if errs := checkEmptiness(doc); len(errs) > 0 {
		return errs
	}
	if errs := checkMissingCells(doc); len(errs) > 0 {
		return errs
	}
	if fc.RowChecks {
		if errs := fc.checkRows(doc); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

// checkProjectWhitelist fails the upload when any normalized project value is
// absent from the registry, reporting every missing name at once.
func checkProjectWhitelist(doc *Document, registered []string) []string {
	if !doc.HasColumn(ColProject) {
		// Reported by the column check instead.
		return nil
	}

	known := make(map[string]struct{}, len(registered))
	for _, name := range registered {
		known[name] = struct{}{}
	}

	seen := make(map[string]struct{})
	var missing []string
	for _, row := range doc.Rows {
		if row.Missing(ColProject) {
			continue
		}
		name := NormalizeProjectName(row.Get(ColProject))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return []string{fmt.Sprintf(
			"Invalid file: These projects are not registered to the system [%s], Please check for Project Spelling Errors or Add Project to the system",
			strings.Join(missing, ", "))}
	}
	return nil
}

// checkColumns rejects extra columns beyond the required six, then the first
// missing required column.
func checkColumns(doc *Document) []string {
	if len(doc.Columns) > len(RequiredColumns) {
		return []string{fmt.Sprintf("Unexpected extra columns detected: %s",
			strings.Join(doc.ExtraColumns(), ", "))}
	}

	for _, col := range RequiredColumns {
		if !doc.HasColumn(col) {
			return []string{fmt.Sprintf("Missing required column: %s", col)}
		}
	}
	return nil
}

// checkEmptiness rejects a file whose required columns hold no data at all.
func checkEmptiness(doc *Document) []string {
	for _, row := range doc.Rows {
		for _, col := range RequiredColumns {
			if !row.Missing(col) {
				return nil
			}
		}
	}
	return []string{"The uploaded file contains no data after the headers."}
}

// checkMissingCells reports, per required column, every row index holding a
// blank cell. Offending columns are joined into one pipe-separated message.
func checkMissingCells(doc *Document) []string {
	var parts []string
	for _, col := range RequiredColumns {
		var rows []string
		for i, row := range doc.Rows {
			if row.Missing(col) {
				rows = append(rows, strconv.Itoa(i))
			}
		}
		if len(rows) > 0 {
			parts = append(parts, fmt.Sprintf("Missing data in column '%s' at rows: %s",
				col, strings.Join(rows, ", ")))
		}
	}

	if len(parts) > 0 {
		return []string{strings.Join(parts, " | ")}
	}
	return nil
}

// checkRows applies the row validator to a bounded prefix of the file and
// accumulates every violation found there.
func (fc *FileChecker) checkRows(doc *Document) []string {
	limit := len(doc.Rows)
	if fc.MaxCheckedRows > 0 && limit > fc.MaxCheckedRows {
		limit = fc.MaxCheckedRows
	}

	var errs []string
	for i := 0; i < limit; i++ {
		errs = append(errs, ValidateRow(doc.Rows[i], i)...)
	}
	return errs
}
