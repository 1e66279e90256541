package timesheet

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := ParseCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestAggregateSingleRow(t *testing.T) {
	doc := mustParse(t, "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n"+
		"123,50,Test Project,2024-01-15,09:00,17:00\n")

	invoice, skipped, err := Aggregate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}

	items := invoice["Test Project"]
	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}

	item := items[0]
	if item.EmployeeID != 123 {
		t.Errorf("employee = %d, want 123", item.EmployeeID)
	}
	if item.TotalHours != 8 {
		t.Errorf("total hours = %v, want 8", item.TotalHours)
	}
	if item.UnitPrice != 50 {
		t.Errorf("unit price = %v, want 50", item.UnitPrice)
	}
	if item.TotalCost != 400 {
		t.Errorf("total cost = %v, want 400", item.TotalCost)
	}
}

func TestAggregateGroupsByProjectAndEmployee(t *testing.T) {
	doc := mustParse(t, "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n"+
		"123,50,Test Project,2024-01-15,09:00,17:00\n"+
		"123,50,Test Project,2024-01-16,09:00,13:00\n"+
		"456,75,Test Project,2024-01-15,10:00,18:00\n"+
		"123,60,Other Project,2024-01-15,09:00,12:00\n")

	invoice, skipped, err := Aggregate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	if len(invoice) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(invoice))
	}

	test := invoice["Test Project"]
	if len(test) != 2 {
		t.Fatalf("expected 2 line items for Test Project, got %d", len(test))
	}
	// First-encounter order within the project.
	if test[0].EmployeeID != 123 || test[1].EmployeeID != 456 {
		t.Errorf("unexpected item order: %+v", test)
	}
	if test[0].TotalHours != 12 {
		t.Errorf("employee 123 hours = %v, want 12", test[0].TotalHours)
	}
	if test[0].TotalCost != 600 {
		t.Errorf("employee 123 cost = %v, want 600", test[0].TotalCost)
	}
	if test[1].TotalHours != 8 || test[1].TotalCost != 600 {
		t.Errorf("employee 456 item = %+v", test[1])
	}

	other := invoice["Other Project"]
	if len(other) != 1 || other[0].TotalHours != 3 || other[0].TotalCost != 180 {
		t.Errorf("unexpected Other Project items: %+v", other)
	}
}

func TestAggregateUnitPriceIsFirstRowRate(t *testing.T) {
	doc := mustParse(t, "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n"+
		"123,50,Test Project,2024-01-15,09:00,17:00\n"+
		"123,90,Test Project,2024-01-16,09:00,17:00\n")

	invoice, _, err := Aggregate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := invoice["Test Project"][0]
	if item.UnitPrice != 50 {
		t.Errorf("unit price = %v, want the first row's rate 50", item.UnitPrice)
	}
	// Cost accumulates per row at that row's own rate.
	if item.TotalCost != 400+720 {
		t.Errorf("total cost = %v, want 1120", item.TotalCost)
	}
}

func TestAggregateDropsAMPMRows(t *testing.T) {
	doc := mustParse(t, "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n"+
		"123,50,Test Project,2024-01-15,09:00,17:00\n"+
		"456,75,Test Project,2024-01-15,9:00 AM,5:00 PM\n")

	invoice, skipped, err := Aggregate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(skipped) != 1 || skipped[0].Index != 1 {
		t.Fatalf("expected row 1 in the skipped report, got %v", skipped)
	}
	if len(invoice["Test Project"]) != 1 {
		t.Errorf("expected only the 24-hour row aggregated, got %+v", invoice["Test Project"])
	}
}

func TestAggregateNegativeSpanWrapsAround(t *testing.T) {
	doc := mustParse(t, "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n"+
		"123,50,Test Project,2024-01-15,22:00,02:00\n")

	invoice, _, err := Aggregate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := invoice["Test Project"][0]
	if item.TotalHours != 4 {
		t.Errorf("total hours = %v, want 4", item.TotalHours)
	}
}

func TestAggregateErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing column",
			content: "Employee ID,Billable Rate,Project,Date,Start Time\n123,50,Test Project,2024-01-15,09:00\n",
		},
		{
			name:    "bad employee id",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time\nabc,50,Test Project,2024-01-15,09:00,17:00\n",
		},
		{
			name:    "bad rate",
			content: "Employee ID,Billable Rate,Project,Date,Start Time,End Time\n123,free,Test Project,2024-01-15,09:00,17:00\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.content)
			if _, _, err := Aggregate(doc); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
