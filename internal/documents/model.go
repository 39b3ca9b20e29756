package documents

import (
	"time"

	"resume-matcher/internal/extract"
)

// Document is an uploaded résumé file and its processing state.
type Document struct {
	ID               string
	FileName         string
	FileType         extract.FileType
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	Processed        bool
	ProcessedAt      *time.Time
	ErrorMessage     string
	CreatedAt        time.Time
}

// Pending reports whether the document was neither processed nor failed.
func (d Document) Pending() bool {
	return !d.Processed && d.ErrorMessage == ""
}
