package analyses

import (
	"context"
	"errors"
)

// DocumentLookup exposes the latest analysis of a document to the documents API.
type DocumentLookup struct {
	Repo Repo
}

func (l DocumentLookup) LatestForDocument(ctx context.Context, documentID string) (any, bool, error) {
	a, err := l.Repo.LatestForDocument(ctx, documentID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}
