package audit

import (
	"errors"
	"time"
)

// Action names an audited operation.
type Action string

const (
	ActionDocumentAnalysis Action = "document_analysis"
	ActionQueryMatch       Action = "query_match"
)

var ErrInvalidInput = errors.New("invalid input")

// Record is one processing audit entry.
type Record struct {
	ID           string         `json:"id"`
	Action       Action         `json:"action"`
	DocumentID   string         `json:"documentId,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	DurationMs   float64        `json:"durationMs"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"timestamp"`
}

// Filter narrows a listing. An empty DocumentID lists every record.
type Filter struct {
	DocumentID string
	Limit      int
}
