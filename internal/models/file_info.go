package models

import "time"

// StagedFile describes a file sitting in the staging area between upload
// validation and import. Files are keyed by their original name; a second
// upload of the same name overwrites the first.
type StagedFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
