package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Service contains business logic for documents.
type Service struct {
	Store          object.ObjectStore
	Repo           DocumentsRepo
	MaxUploadBytes int64
	// Queue, when set, receives an analysis job for every upload.
	Queue queue.Client
	Now   func() time.Time
}

// Upload validates the file type, saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	fileType := extract.FileTypeFromName(fileName)
	if err := extract.CheckReadable(fileType); err != nil {
		return Document{}, err
	}

	limit := s.maxUploadBytes()
	docID := uuid.NewString()
	storageKey, size, mimeType, err := s.Store.Save(ctx, docID, fileName, io.LimitReader(r, limit+1))
	if err != nil {
		return Document{}, err
	}
	if size > limit {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}
	if size == 0 {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = fileType.MimeType()
	}

	doc := Document{
		ID:              docID,
		FileName:        fileName,
		FileType:        fileType,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.Store.Provider(),
		StorageKey:      storageKey,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discard(ctx, storageKey)
		return Document{}, err
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"file_type":   string(doc.FileType),
		"size_bytes":  doc.SizeBytes,
	})
	s.enqueue(ctx, doc)
	return doc, nil
}

// enqueue is best effort: a lost job leaves the document pending for the sweeper.
func (s *Service) enqueue(ctx context.Context, doc Document) {
	if s.Queue == nil {
		return
	}
	msg := queue.NewMessage(doc.ID, queue.RequestIDFrom(ctx), false, s.now())
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Warn("document.enqueue_failed", map[string]any{"document_id": doc.ID, "error": err})
		return
	}
	metrics.IncJobsEnqueued()
	telemetry.Info("document.analysis_enqueued", map[string]any{"document_id": doc.ID, "request_id": msg.RequestID})
}

// Get returns a live document.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidInput)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	return s.Repo.List(ctx, limit, offset)
}

// Delete soft-deletes a document and removes its stored objects.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, doc.ID, s.now()); err != nil {
		return err
	}
	s.discard(ctx, doc.StorageKey)
	if doc.ExtractedTextKey != "" {
		s.discard(ctx, doc.ExtractedTextKey)
	}
	telemetry.Info("document.deleted", map[string]any{"document_id": doc.ID})
	return nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		telemetry.Warn("document.object_delete_failed", map[string]any{"storage_key": key, "error": err})
	}
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
