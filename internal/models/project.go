// Package models contains domain types for the billing backend.
package models

// Project is a registered project that timesheet rows may bill against.
// Names are unique and stored in normalized (trimmed, title-cased) form.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
