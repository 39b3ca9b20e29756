package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/shared/telemetry"
)

// Service records and lists audit entries.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// Record stores rec, filling ID and timestamp. Audit failures are logged and
// never propagated to the audited operation.
func (s *Service) Record(ctx context.Context, rec Record) {
	if s == nil || s.Repo == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		telemetry.Error("audit.write_failed", map[string]any{
			"action":      string(rec.Action),
			"document_id": rec.DocumentID,
			"error":       err,
		})
	}
}

// List returns audit records newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit < 0 || f.Limit > 500 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 500", ErrInvalidInput)
	}
	if f.Limit == 0 {
		f.Limit = 100
	}
	return s.Repo.List(ctx, f)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
