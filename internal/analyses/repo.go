package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// LatestForDocument returns the newest analysis of a document or ErrNotFound.
	LatestForDocument(ctx context.Context, documentID string) (Analysis, error)
	List(ctx context.Context, limit, offset int) ([]Analysis, error)
}
