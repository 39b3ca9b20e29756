package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo stores audit records in processing_audits.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO processing_audits (
    id,
    action,
    document_id,
    success,
    error_message,
    duration_ms,
    metadata,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		string(rec.Action),
		nullString(rec.DocumentID),
		rec.Success,
		nullString(rec.ErrorMessage),
		rec.DurationMs,
		raw,
		rec.CreatedAt,
	)
	return err
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
SELECT id, action, document_id, success, error_message, duration_ms, metadata, created_at
FROM processing_audits`
	args := []any{}
	if f.DocumentID != "" {
		query += `
WHERE document_id = $1
ORDER BY created_at DESC
LIMIT $2`
		args = append(args, f.DocumentID, limit)
	} else {
		query += `
ORDER BY created_at DESC
LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var action string
		var documentID sql.NullString
		var errorMessage sql.NullString
		var metadata []byte
		if err := rows.Scan(
			&rec.ID,
			&action,
			&documentID,
			&rec.Success,
			&errorMessage,
			&rec.DurationMs,
			&metadata,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		rec.DocumentID = documentID.String
		rec.ErrorMessage = errorMessage.String
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
