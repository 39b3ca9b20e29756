package health

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/taxonomy"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	checkOK      = "ok"
	checkSkipped = "skipped"

	probeKey = "health/probe.txt"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger
	Store    object.ObjectStore
	Taxonomy *taxonomy.Table
	Timeout  time.Duration
}

// Report is the health payload.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   time.Time         `json:"timestamp"`
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger, store object.ObjectStore, tbl *taxonomy.Table) *Service {
	return &Service{DB: db, Store: store, Taxonomy: tbl, Timeout: 2 * time.Second}
}

// Status runs every check. Any failing check degrades the report.
func (s *Service) Status(ctx context.Context) Report {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := Report{
		Status: StatusHealthy,
		Checks: map[string]string{
			"database":    s.checkDB(ctx),
			"objectStore": s.checkStore(ctx),
			"taxonomy":    s.checkTaxonomy(),
		},
		Time: time.Now().UTC(),
	}
	for _, result := range report.Checks {
		if result != checkOK && result != checkSkipped {
			report.Status = StatusDegraded
			break
		}
	}
	return report
}

func (s *Service) checkDB(ctx context.Context) string {
	if s.DB == nil {
		return checkSkipped
	}
	if err := s.DB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return checkOK
}

// checkStore writes, reads back and removes a probe object.
func (s *Service) checkStore(ctx context.Context) string {
	if s.Store == nil {
		return "error: not configured"
	}
	const payload = "ok"
	if _, err := s.Store.SaveWithKey(ctx, probeKey, "text/plain", strings.NewReader(payload)); err != nil {
		return "error: " + err.Error()
	}
	rc, err := s.Store.Open(ctx, probeKey)
	if err != nil {
		return "error: " + err.Error()
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "error: " + err.Error()
	}
	if string(body) != payload {
		return "error: probe mismatch"
	}
	_ = s.Store.Delete(ctx, probeKey)
	return checkOK
}

func (s *Service) checkTaxonomy() string {
	if s.Taxonomy == nil || len(s.Taxonomy.Skills) == 0 {
		return "error: taxonomy not loaded"
	}
	if s.Taxonomy.QueryExperiencePattern == nil {
		return fmt.Sprintf("error: %d skills but no query experience pattern", len(s.Taxonomy.Skills))
	}
	return checkOK
}
