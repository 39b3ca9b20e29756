package analyses

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"resume-matcher/internal/audit"
	"resume-matcher/internal/documents"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/profile"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusReused     = "reused"
	StatusFailed     = "failed"

	defaultConcurrency = 4
	// queryDocumentLimit caps how many documents a query without explicit ids ranks.
	queryDocumentLimit = 100
)

// Service orchestrates document analysis and query matching.
type Service struct {
	Repo        Repo
	DocRepo     documents.DocumentsRepo
	Store       object.ObjectStore
	Builder     *profile.Builder
	Engine      *matching.Engine
	Audit       *audit.Service
	Cache       QueryCache
	CacheTTL    time.Duration
	Concurrency int
	Now         func() time.Time

	inflight singleflight.Group
}

type analyzeOutcome struct {
	analysis Analysis
	reused   bool
}

// AnalyzeDocument returns the existing analysis of a document, or builds and
// stores a new one when none exists or force is set. The bool reports reuse.
// Concurrent calls for the same document share one run. The run is detached
// from any single caller's cancellation; a caller whose ctx ends stops
// waiting while the others still get the result.
func (s *Service) AnalyzeDocument(ctx context.Context, documentID string, force bool) (Analysis, bool, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return Analysis{}, false, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(documentID+"|"+strconv.FormatBool(force), func() (any, error) {
		a, reused, err := s.analyze(shared, documentID, force)
		return analyzeOutcome{analysis: a, reused: reused}, err
	})
	select {
	case <-ctx.Done():
		return Analysis{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Analysis{}, false, res.Err
		}
		out := res.Val.(analyzeOutcome)
		return out.analysis, out.reused, nil
	}
}

func (s *Service) analyze(ctx context.Context, documentID string, force bool) (Analysis, bool, error) {
	startedAt := time.Now()

	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		return Analysis{}, false, fmt.Errorf("document lookup id=%s: %w", documentID, err)
	}

	if !force {
		existing, err := s.Repo.LatestForDocument(ctx, doc.ID)
		switch {
		case err == nil:
			metrics.IncAnalysisReused()
			telemetry.Info("analysis.status", map[string]any{
				"document_id": doc.ID,
				"analysis_id": existing.ID,
				"status":      StatusReused,
			})
			return existing, true, nil
		case !errors.Is(err, ErrNotFound):
			return Analysis{}, false, fmt.Errorf("analysis lookup document=%s: %w", doc.ID, err)
		}
	}

	telemetry.Info("analysis.status", map[string]any{
		"document_id": doc.ID,
		"status":      StatusProcessing,
		"force":       force,
	})

	text, err := s.loadText(ctx, doc)
	if err != nil {
		return Analysis{}, false, s.fail(ctx, doc, startedAt, err)
	}

	analysis := Analysis{
		ID:     uuid.NewString(),
		Record: s.Builder.Build(doc.ID, doc.FileName, text),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, false, s.fail(ctx, doc, startedAt, fmt.Errorf("save analysis: %w", err))
	}

	elapsed := metrics.SinceMillis(startedAt)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(elapsed)
	s.Audit.Record(ctx, audit.Record{
		Action:     audit.ActionDocumentAnalysis,
		DocumentID: doc.ID,
		Success:    true,
		DurationMs: elapsed,
		Metadata: map[string]any{
			"analysisId": analysis.ID,
			"fileName":   doc.FileName,
			"skills":     len(analysis.Skills),
		},
	})
	telemetry.Info("analysis.status", map[string]any{
		"document_id":       doc.ID,
		"analysis_id":       analysis.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       elapsed,
	})
	return analysis, false, nil
}

// loadText reads previously extracted text, extracting and persisting it first
// when the document was never processed.
func (s *Service) loadText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.ExtractedTextKey != "" {
		text, err := extract.ReadStored(ctx, s.Store, doc.ExtractedTextKey)
		switch {
		case err == nil:
			return text, nil
		case !errors.Is(err, object.ErrNotFound):
			return "", fmt.Errorf("document %s: read extracted text: %w", doc.ID, err)
		}
		telemetry.Warn("analysis.extracted_text_missing", map[string]any{
			"document_id": doc.ID,
			"key":         doc.ExtractedTextKey,
		})
	}

	if err := extract.CheckReadable(doc.FileType); err != nil {
		return "", err
	}
	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}
	if err := s.DocRepo.MarkProcessed(ctx, doc.ID, extract.ExtractedKey(doc.StorageKey), s.now()); err != nil {
		return "", fmt.Errorf("document %s: mark processed: %w", doc.ID, err)
	}
	return text, nil
}

func (s *Service) fail(ctx context.Context, doc documents.Document, startedAt time.Time, cause error) error {
	elapsed := metrics.SinceMillis(startedAt)
	metrics.IncAnalysisFailed()
	if err := s.DocRepo.MarkFailed(ctx, doc.ID, cause.Error()); err != nil {
		telemetry.Error("analysis.mark_failed_error", map[string]any{
			"document_id": doc.ID,
			"error":       err,
		})
	}
	s.Audit.Record(ctx, audit.Record{
		Action:       audit.ActionDocumentAnalysis,
		DocumentID:   doc.ID,
		Success:      false,
		ErrorMessage: cause.Error(),
		DurationMs:   elapsed,
		Metadata:     map[string]any{"fileName": doc.FileName},
	})
	telemetry.Error("analysis.status", map[string]any{
		"document_id":       doc.ID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"duration_ms":       elapsed,
		"error":             cause,
	})
	return cause
}

// AnalyzeBatch analyses documents in parallel. Items come back in the order
// of documentIDs and a failing document never aborts the others.
func (s *Service) AnalyzeBatch(ctx context.Context, documentIDs []string, force bool) []BatchItem {
	items := make([]BatchItem, len(documentIDs))
	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for i, id := range documentIDs {
		g.Go(func() error {
			a, reused, err := s.AnalyzeDocument(ctx, id, force)
			items[i] = BatchItem{DocumentID: id, Analysis: a, Reused: reused, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// MatchQuery analyses the given documents (every document, newest first and
// capped, when none are given) and ranks their analyses against query.
func (s *Service) MatchQuery(ctx context.Context, query string, documentIDs []string) (matching.Ranking, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return matching.Ranking{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	startedAt := time.Now()

	ids := documentIDs
	if len(ids) == 0 {
		docs, err := s.DocRepo.List(ctx, queryDocumentLimit, 0)
		if err != nil {
			return matching.Ranking{}, fmt.Errorf("list documents: %w", err)
		}
		ids = make([]string, 0, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
	}

	items := s.AnalyzeBatch(ctx, ids, false)
	records := make([]profile.Record, 0, len(items))
	analysisIDs := make([]string, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !item.OK() {
			skipped++
			continue
		}
		records = append(records, item.Analysis.Record)
		analysisIDs = append(analysisIDs, item.Analysis.ID)
	}

	key := QueryCacheKey(query, analysisIDs)
	cached, hit, err := s.cache().Get(ctx, key)
	if err != nil {
		telemetry.Warn("query.cache_get_failed", map[string]any{"error": err})
	}
	if hit {
		metrics.IncQuery()
		metrics.IncQueryCacheHit()
		telemetry.Debug("query.cache_hit", map[string]any{"documents": len(records)})
		return cached, nil
	}

	ranking, err := s.Engine.Rank(query, records)
	elapsed := metrics.SinceMillis(startedAt)
	if err != nil {
		s.Audit.Record(ctx, audit.Record{
			Action:       audit.ActionQueryMatch,
			Success:      false,
			ErrorMessage: err.Error(),
			DurationMs:   elapsed,
			Metadata:     map[string]any{"query": query},
		})
		return matching.Ranking{}, err
	}

	if err := s.cache().Set(ctx, key, ranking, s.CacheTTL); err != nil {
		telemetry.Warn("query.cache_set_failed", map[string]any{"error": err})
	}

	metrics.IncQuery()
	metrics.ObserveQueryDurationMs(elapsed)
	meta := map[string]any{
		"query":     query,
		"documents": len(records),
		"skipped":   skipped,
	}
	if len(ranking.Matches) > 0 {
		meta["topDocumentId"] = ranking.Matches[0].DocumentID
		meta["topScore"] = ranking.Matches[0].Score
	}
	s.Audit.Record(ctx, audit.Record{
		Action:     audit.ActionQueryMatch,
		Success:    true,
		DurationMs: elapsed,
		Metadata:   meta,
	})
	telemetry.Info("query.ranked", map[string]any{
		"documents":   len(records),
		"skipped":     skipped,
		"duration_ms": elapsed,
	})
	return ranking, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// List returns analyses newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if limit <= 0 || limit > 100 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidInput)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) cache() QueryCache {
	if s.Cache == nil {
		return NopCache{}
	}
	return s.Cache
}

func (s *Service) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return defaultConcurrency
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
