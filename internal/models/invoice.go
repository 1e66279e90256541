package models

// InvoiceLineItem is one aggregated (project, employee) line of an invoice.
// UnitPrice is the billable rate of the first row encountered for the pair;
// rows for the same pair are assumed rate-homogeneous.
type InvoiceLineItem struct {
	Project    string  `json:"project" msgpack:"project"`
	EmployeeID int64   `json:"employeeId" msgpack:"employeeId"`
	TotalHours float64 `json:"totalHours" msgpack:"totalHours"`
	UnitPrice  float64 `json:"unitPrice" msgpack:"unitPrice"`
	TotalCost  float64 `json:"totalCost" msgpack:"totalCost"`
}

// InvoiceData maps a project name to its ordered line items. Order follows
// first encounter in the source file, not an independent sort.
type InvoiceData map[string][]InvoiceLineItem

// Projects returns the project names present in the invoice, in unspecified
// order. Callers that need file order should iterate their own key list.
func (d InvoiceData) Projects() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}
