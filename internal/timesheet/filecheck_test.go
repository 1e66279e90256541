package timesheet

import (
	"strings"
	"testing"

	"github.com/billrate-system/backend/internal/testutil"
)

func newChecker(stage *testutil.MockStaging) *FileChecker {
	return &FileChecker{Staging: stage, RowChecks: true, MaxCheckedRows: 100}
}

func TestAcceptUpload(t *testing.T) {
	registered := []string{"Test Project", "Other Project"}

	tests := []struct {
		name       string
		fileName   string
		content    string
		wantErrSub string
		wantStored bool
	}{
		{
			name:       "valid file is staged",
			fileName:   "week1.csv",
			content:    sampleCSV,
			wantStored: true,
		},
		{
			name:       "non-csv extension",
			fileName:   "week1.xlsx",
			content:    sampleCSV,
			wantErrSub: "Only CSV files are allowed!",
		},
		{
			name:       "case-sensitive extension check",
			fileName:   "week1.CSV",
			content:    sampleCSV,
			wantErrSub: "Only CSV files are allowed!",
		},
		{
			name:     "unregistered project reports every missing name",
			fileName: "week1.csv",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n" +
				"123,50,Ghost Project,2024-01-15,09:00,17:00\n" +
				"456,75,phantom project,2024-01-15,09:00,17:00\n",
			wantErrSub: "These projects are not registered to the system [Ghost Project, Phantom Project]",
		},
		{
			name:     "extra column",
			fileName: "week1.csv",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time,Notes\n" +
				"123,50,Test Project,2024-01-15,09:00,17:00,hi\n",
			wantErrSub: "Unexpected extra columns detected: Notes",
		},
		{
			name:       "missing required column",
			fileName:   "week1.csv",
			content:    "Employee ID,Billable Rate,Project,Date,Start Time\n123,50,Test Project,2024-01-15,09:00\n",
			wantErrSub: "Missing required column: End Time",
		},
		{
			name:       "headers only is no data",
			fileName:   "week1.csv",
			content:    "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n",
			wantErrSub: "The uploaded file contains no data after the headers.",
		},
		{
			name:       "all blank rows is no data",
			fileName:   "week1.csv",
			content:    "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n,,,,,\n,,,,,\n",
			wantErrSub: "The uploaded file contains no data after the headers.",
		},
		{
			name:     "missing cells reported per column",
			fileName: "week1.csv",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n" +
				"123,,Test Project,2024-01-15,09:00,17:00\n" +
				"456,75,Test Project,,09:00,17:00\n",
			wantErrSub: "Missing data in column 'Billable Rate' at rows: 0 | Missing data in column 'Date' at rows: 1",
		},
		{
			name:     "row validation failure",
			fileName: "week1.csv",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n" +
				"abc,50,Test Project,2024-01-15,09:00,17:00\n",
			wantErrSub: "Invalid Employee ID at row 1.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := testutil.NewMockStaging()
			fc := newChecker(stage)

			name, verrs, err := fc.AcceptUpload(tt.fileName, []byte(tt.content), registered)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantErrSub != "" {
				if len(verrs) == 0 {
					t.Fatalf("expected validation errors, got none")
				}
				joined := strings.Join(verrs, " | ")
				if !strings.Contains(joined, tt.wantErrSub) {
					t.Errorf("expected %q in %q", tt.wantErrSub, joined)
				}
				// Rejected uploads must have no side effect.
				if stage.FileCount() != 0 {
					t.Error("rejected upload left a staged file behind")
				}
				return
			}

			if len(verrs) > 0 {
				t.Fatalf("unexpected validation errors: %v", verrs)
			}
			if !tt.wantStored {
				return
			}
			if name != tt.fileName {
				t.Errorf("expected stored name %q, got %q", tt.fileName, name)
			}
			if !stage.Exists(tt.fileName) {
				t.Error("expected file in staging area")
			}
		})
	}
}

func TestAcceptUploadRowChecksDisabled(t *testing.T) {
	stage := testutil.NewMockStaging()
	fc := &FileChecker{Staging: stage, RowChecks: false}

	content := "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n" +
		"abc,50,Test Project,2024-01-15,09:00,17:00\n"

	_, verrs, err := fc.AcceptUpload("week1.csv", []byte(content), []string{"Test Project"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verrs) != 0 {
		t.Errorf("expected structural errors to be skipped, got %v", verrs)
	}
}

func TestAcceptUploadBoundedRowChecks(t *testing.T) {
	stage := testutil.NewMockStaging()
	fc := &FileChecker{Staging: stage, RowChecks: true, MaxCheckedRows: 1}

	// The bad row sits beyond the checked prefix.
	content := "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n" +
		"123,50,Test Project,2024-01-15,09:00,17:00\n" +
		"abc,50,Test Project,2024-01-15,09:00,17:00\n"

	_, verrs, err := fc.AcceptUpload("week1.csv", []byte(content), []string{"Test Project"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verrs) != 0 {
		t.Errorf("expected rows beyond the prefix to be unchecked, got %v", verrs)
	}
}
