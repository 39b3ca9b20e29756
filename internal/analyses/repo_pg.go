package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Skills are stored as a JSONB array.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, document_id, summary, skills, experience_years, position_level, education, analyzed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
    id,
    document_id,
    summary,
    skills,
    experience_years,
    position_level,
    education,
    analyzed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	skills := analysis.Skills
	if skills == nil {
		skills = []string{}
	}
	rawSkills, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.DocumentID,
		analysis.Summary,
		rawSkills,
		nullString(analysis.ExperienceYears),
		nullString(analysis.PositionLevel),
		nullString(analysis.Education),
		analysis.AnalyzedAt,
	)
	return err
}

// GetByID fetches an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1`
	return r.one(ctx, query, analysisID)
}

// LatestForDocument fetches the newest analysis of a document.
func (r *PGRepo) LatestForDocument(ctx context.Context, documentID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE document_id = $1
ORDER BY analyzed_at DESC
LIMIT 1`
	return r.one(ctx, query, documentID)
}

// List lists analyses newest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
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
SELECT ` + analysisColumns + `
FROM analyses
ORDER BY analyzed_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) one(ctx context.Context, query string, args ...any) (Analysis, error) {
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var rawSkills []byte
	var experience, level, education sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.Summary,
		&rawSkills,
		&experience,
		&level,
		&education,
		&a.AnalyzedAt,
	); err != nil {
		return Analysis{}, err
	}
	a.Skills = []string{}
	if len(rawSkills) > 0 {
		if err := json.Unmarshal(rawSkills, &a.Skills); err != nil {
			return Analysis{}, fmt.Errorf("decode skills for analysis %s: %w", a.ID, err)
		}
	}
	a.ExperienceYears = experience.String
	a.PositionLevel = level.String
	a.Education = education.String
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
