package analyses

import "resume-matcher/internal/profile"

// Analysis is a stored analysis record. Records are immutable; re-analysing a
// document creates a new one.
type Analysis struct {
	ID string `json:"id"`
	profile.Record
}

// BatchItem is the outcome of analysing one document in a batch.
type BatchItem struct {
	DocumentID string
	Analysis   Analysis
	Reused     bool
	Err        error
}

// OK reports whether the document produced an analysis.
func (b BatchItem) OK() bool {
	return b.Err == nil
}
