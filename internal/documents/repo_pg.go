package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resume-matcher/internal/extract"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, file_name, file_type, mime_type, size_bytes, storage_provider, storage_key, extracted_text_key, processed, processed_at, error_message, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    file_name,
    file_type,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    processed,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`

	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.FileName,
		string(doc.FileType),
		doc.MimeType,
		doc.SizeBytes,
		storageProvider,
		doc.StorageKey,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a live document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List lists documents ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	return r.query(ctx, query, limit, offset)
}

// ListPending lists unprocessed documents without a recorded failure.
func (r *PGRepo) ListPending(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE deleted_at IS NULL AND processed = FALSE AND error_message IS NULL
ORDER BY created_at ASC
LIMIT $1`
	return r.query(ctx, query, limit)
}

// MarkProcessed stores the extracted text key and flags the document processed.
func (r *PGRepo) MarkProcessed(ctx context.Context, documentID, extractedKey string, at time.Time) error {
	const query = `
UPDATE documents
SET extracted_text_key = $1, processed = TRUE, processed_at = $2, error_message = NULL
WHERE id = $3 AND deleted_at IS NULL`
	return r.exec(ctx, query, extractedKey, at, documentID)
}

// MarkFailed records the failure message for a document.
func (r *PGRepo) MarkFailed(ctx context.Context, documentID, message string) error {
	const query = `
UPDATE documents
SET error_message = $1
WHERE id = $2 AND deleted_at IS NULL`
	return r.exec(ctx, query, message, documentID)
}

// Delete soft-deletes a document.
func (r *PGRepo) Delete(ctx context.Context, documentID string, at time.Time) error {
	const query = `
UPDATE documents
SET deleted_at = $1
WHERE id = $2 AND deleted_at IS NULL`
	return r.exec(ctx, query, at, documentID)
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var fileType string
	var extractedKey sql.NullString
	var processedAt sql.NullTime
	var errorMessage sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&fileType,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageProvider,
		&doc.StorageKey,
		&extractedKey,
		&doc.Processed,
		&processedAt,
		&errorMessage,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.FileType = extract.FileType(fileType)
	if extractedKey.Valid {
		doc.ExtractedTextKey = extractedKey.String
	}
	if processedAt.Valid {
		doc.ProcessedAt = &processedAt.Time
	}
	if errorMessage.Valid {
		doc.ErrorMessage = errorMessage.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
