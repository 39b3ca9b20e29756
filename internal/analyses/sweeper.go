package analyses

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"resume-matcher/internal/documents"
	"resume-matcher/internal/shared/telemetry"
)

const defaultSweepBatch = 50

// Sweeper periodically analyses documents that were uploaded but never
// processed and never failed.
type Sweeper struct {
	Svc       *Service
	DocRepo   documents.DocumentsRepo
	BatchSize int

	spec string
	cron *cron.Cron
	mu   sync.Mutex
}

// NewSweeper validates spec (standard five-field cron or a descriptor such as "@every 5m").
func NewSweeper(svc *Service, docRepo documents.DocumentsRepo, spec string) (*Sweeper, error) {
	spec = strings.TrimSpace(spec)
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: sweep schedule %q: %v", ErrInvalidInput, spec, err)
	}
	return &Sweeper{
		Svc:       svc,
		DocRepo:   docRepo,
		BatchSize: defaultSweepBatch,
		spec:      spec,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			telemetry.Error("sweeper.run_failed", map[string]any{"error": err})
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	telemetry.Info("sweeper.started", map[string]any{"schedule": s.spec})
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	telemetry.Info("sweeper.stopped", nil)
}

// RunOnce analyses one batch of pending documents and returns how many
// produced an analysis.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.DocRepo.ListPending(ctx, s.batchSize())
	if err != nil {
		return 0, fmt.Errorf("list pending documents: %w", err)
	}
	if len(pending) == 0 {
		telemetry.Debug("sweeper.idle", nil)
		return 0, nil
	}

	ids := make([]string, 0, len(pending))
	for _, doc := range pending {
		ids = append(ids, doc.ID)
	}

	analysed := 0
	for _, item := range s.Svc.AnalyzeBatch(ctx, ids, false) {
		if item.OK() {
			analysed++
		}
	}
	telemetry.Info("sweeper.run_complete", map[string]any{
		"pending":  len(pending),
		"analysed": analysed,
		"failed":   len(pending) - analysed,
	})
	return analysed, nil
}

func (s *Sweeper) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return defaultSweepBatch
}
