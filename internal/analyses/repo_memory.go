package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Analysis
	byDocument map[string][]string
	order      []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Analysis),
		byDocument: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[analysis.ID]; exists {
		return ErrInvalidInput
	}
	r.byID[analysis.ID] = analysis
	r.byDocument[analysis.DocumentID] = append(r.byDocument[analysis.DocumentID], analysis.ID)
	r.order = append(r.order, analysis.ID)
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// LatestForDocument returns the most recently stored analysis of a document.
func (r *MemoryRepo) LatestForDocument(ctx context.Context, documentID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byDocument[documentID]
	if len(ids) == 0 {
		return Analysis{}, ErrNotFound
	}
	return r.byID[ids[len(ids)-1]], nil
}

// List returns analyses newest first.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	all := make([]Analysis, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		all = append(all, r.byID[r.order[i]])
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].AnalyzedAt.After(all[j].AnalyzedAt)
	})
	if offset >= len(all) {
		return []Analysis{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
