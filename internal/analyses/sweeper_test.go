package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/documents"
	"resume-matcher/internal/extract"
)

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	_, err := NewSweeper(f.svc, f.docRepo, "every now and then")
	require.ErrorIs(t, err, ErrInvalidInput)

	s, err := NewSweeper(f.svc, f.docRepo, "@every 5m")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSweeperRunOnceAnalysesPendingDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upload(t, "ana.txt", seniorPythonCV)
	f.upload(t, "bruno.txt", juniorJavaCV)
	require.NoError(t, f.docRepo.Create(ctx, documents.Document{
		ID:         "scan",
		FileName:   "scan.png",
		FileType:   extract.TypePNG,
		StorageKey: "scan/scan.png",
		CreatedAt:  time.Now(),
	}))

	s, err := NewSweeper(f.svc, f.docRepo, "*/5 * * * *")
	require.NoError(t, err)

	analysed, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, analysed)

	pending, err := f.docRepo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	analysed, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, analysed)
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t)
	s, err := NewSweeper(f.svc, f.docRepo, "@every 1h")
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
