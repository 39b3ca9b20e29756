package db

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"resume-matcher/internal/shared/telemetry"
)

func TestRunMigrationsNilDatabase(t *testing.T) {
	version, err := RunMigrations(context.Background(), nil)
	if err != nil || version != 0 {
		t.Fatalf("expected no-op, got version=%d err=%v", version, err)
	}
}

func TestGooseLoggerWritesProgress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := telemetry.L()
	telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	gooseLogger{}.Printf("OK   %s (%d ms)\n", "00001_init.sql", 12)

	entries := logs.FilterMessage("migrate.progress").All()
	if len(entries) != 1 {
		t.Fatalf("expected one progress line, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["message"]; got != "OK   00001_init.sql (12 ms)" {
		t.Fatalf("unexpected message %q", got)
	}
}
