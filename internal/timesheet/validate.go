package timesheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Accepted layouts, tried in order. The first match wins; no ambiguity
// resolution happens beyond layout order.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "01-02-2006"}

// clockLayouts accepts 24-hour and 12-hour AM/PM times. Single-digit hours
// are valid in both forms.
var clockLayouts = []string{"15:04", "3:04 PM"}

// ParseEmployeeID coerces a cell to a positive integer employee ID.
// Numeric strings with a fractional part are rejected.
func ParseEmployeeID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("employee ID must be positive: %d", id)
		}
		return id, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("employee ID is not numeric: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("employee ID has a fractional part: %q", s)
	}
	if f <= 0 {
		return 0, fmt.Errorf("employee ID must be positive: %v", f)
	}
	return int64(f), nil
}

// ParseRate coerces a cell to a positive billable rate.
func ParseRate(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("billable rate is not numeric: %q", s)
	}
	if f <= 0 {
		return 0, fmt.Errorf("billable rate must be positive: %v", f)
	}
	return f, nil
}

// ParseDate parses a date cell under the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches no accepted format", s)
}

// ParseClock parses a time-of-day cell under the accepted layouts.
func ParseClock(s string) (time.Time, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("time %q matches no accepted format", s)
}

// ParseClock24 parses a time-of-day cell strictly as 24-hour "HH:MM".
// This is the aggregator's re-parse, narrower than ParseClock.
func ParseClock24(s string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is not 24-hour HH:MM", s)
	}
	return t, nil
}

// NormalizeDate rewrites a date cell to the canonical "2006-01-02" form.
// Unparseable dates coerce to the empty string, the pipeline's null marker.
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ValidateRow checks one record against the structural rules and returns
// every applicable violation as a user-displayable message. Row numbers in
// the messages are 1-indexed. Checks do not short-circuit.
func ValidateRow(row Row, index int) []string {
	var errs []string

	if _, err := ParseEmployeeID(row.Get(ColEmployeeID)); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid Employee ID at row %d.", index+1))
	}

	if _, err := ParseRate(row.Get(ColBillableRate)); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid Billable Rate at row %d. Should be an Integer or Float.", index+1))
	}

	if _, err := ParseDate(row.Get(ColDate)); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid Date format at row %d. Accepted formats: YYYY-MM-DD, DD/MM/YYYY, MM-DD-YYYY.", index+1))
	}

	start, startErr := ParseClock(row.Get(ColStartTime))
	end, endErr := ParseClock(row.Get(ColEndTime))

	if startErr != nil {
		errs = append(errs, fmt.Sprintf("Invalid Start Time format at row %d. Accepted formats: HH:MM (24-hour), HH:MM AM/PM.", index+1))
	}
	if endErr != nil {
		errs = append(errs, fmt.Sprintf("Invalid End Time format at row %d. Accepted formats: HH:MM (24-hour), HH:MM AM/PM.", index+1))
	}

	if startErr == nil && endErr == nil && !end.After(start) {
		errs = append(errs, fmt.Sprintf("End Time must be after Start Time at row %d.", index+1))
	}

	return errs
}
