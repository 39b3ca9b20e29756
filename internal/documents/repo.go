package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	List(ctx context.Context, limit, offset int) ([]Document, error)
	// ListPending returns up to limit documents that were neither processed
	// nor failed, oldest first.
	ListPending(ctx context.Context, limit int) ([]Document, error)
	// MarkProcessed records the extracted text key and clears any earlier failure.
	MarkProcessed(ctx context.Context, documentID, extractedKey string, at time.Time) error
	MarkFailed(ctx context.Context, documentID, message string) error
	// Delete soft-deletes a document.
	Delete(ctx context.Context, documentID string, at time.Time) error
}
