package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu      sync.RWMutex
	data    map[string]Document
	order   []string
	deleted map[string]bool
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:    make(map[string]Document),
		deleted: make(map[string]bool),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[doc.ID]; !exists {
		r.order = append(r.order, doc.ID)
	}
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a live document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok || r.deleted[documentID] {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns live documents newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	docs := r.live()
	if len(docs) == 0 || offset >= len(docs) {
		return []Document{}, nil
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// ListPending returns unprocessed, unfailed documents oldest first.
func (r *MemoryRepo) ListPending(ctx context.Context, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	for _, doc := range r.live() {
		if !doc.Pending() {
			continue
		}
		out = append(out, doc)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkProcessed records a successful extraction.
func (r *MemoryRepo) MarkProcessed(ctx context.Context, documentID, extractedKey string, at time.Time) error {
	return r.update(ctx, documentID, func(doc *Document) {
		doc.ExtractedTextKey = extractedKey
		doc.Processed = true
		doc.ProcessedAt = &at
		doc.ErrorMessage = ""
	})
}

// MarkFailed records a processing failure.
func (r *MemoryRepo) MarkFailed(ctx context.Context, documentID, message string) error {
	return r.update(ctx, documentID, func(doc *Document) {
		doc.ErrorMessage = message
	})
}

// Delete hides a document from every read.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string, _ time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[documentID]; !ok || r.deleted[documentID] {
		return ErrNotFound
	}
	r.deleted[documentID] = true
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, documentID string, fn func(*Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok || r.deleted[documentID] {
		return ErrNotFound
	}
	fn(&doc)
	r.data[documentID] = doc
	return nil
}

// live returns a copy of non-deleted documents in insertion order.
func (r *MemoryRepo) live() []Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.order))
	for _, id := range r.order {
		if r.deleted[id] {
			continue
		}
		out = append(out, r.data[id])
	}
	return out
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
