package audit

import "context"

// Repo persists audit records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	// List returns records newest first.
	List(ctx context.Context, f Filter) ([]Record, error)
}
