package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-matcher/internal/profile"
)

func TestPGRepoCreateStoresSkillsAsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		ID: "analysis-1",
		Record: profile.Record{
			DocumentID:      "doc-1",
			Summary:         "Candidate profile.",
			Skills:          []string{"Python", "Go"},
			ExperienceYears: "4 years",
			AnalyzedAt:      time.Now().UTC(),
		},
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.DocumentID,
			analysis.Summary,
			[]byte(`["Python","Go"]`),
			"4 years",
			nil, // position_level
			nil, // education
			analysis.AnalyzedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestForDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	analyzedAt := time.Date(2024, 4, 4, 8, 0, 0, 0, time.UTC)
	rows := mock.NewRows([]string{"id", "document_id", "summary", "skills", "experience_years", "position_level", "education", "analyzed_at"}).
		AddRow("analysis-2", "doc-1", "Profile of Ana Silva.", []byte(`["Python"]`), "4 years", "Senior", nil, analyzedAt)
	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE document_id = \\$1 ORDER BY analyzed_at DESC").
		WithArgs("doc-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.LatestForDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("LatestForDocument: %v", err)
	}
	if got.ID != "analysis-2" || got.PositionLevel != "Senior" || got.Education != "" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if len(got.Skills) != 1 || got.Skills[0] != "Python" {
		t.Fatalf("unexpected skills: %v", got.Skills)
	}
	if got.Years() != 4 {
		t.Fatalf("expected 4 years, got %d", got.Years())
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(mock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
