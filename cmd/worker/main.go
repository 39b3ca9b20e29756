package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/documents"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/workerproc"
)

func main() {
	cfg := config.Load()
	_ = telemetry.Init(cfg.LogJSON, cfg.LogDebug)
	defer telemetry.Sync()

	if cfg.AnalysisQueueKey == "" {
		telemetry.Error("worker.config_missing", map[string]any{"key": "ANALYSIS_QUEUE_KEY"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("worker.bootstrap_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()
	if app.Queue == nil {
		telemetry.Error("worker.queue_unavailable", map[string]any{"redis_configured": cfg.RedisURL != ""})
		os.Exit(1)
	}

	telemetry.Info("worker.started", map[string]any{
		"queue":       app.Queue.Key,
		"concurrency": cfg.WorkerConcurrency,
	})
	run(ctx, app.Queue, app.AnalysesService, cfg.WorkerConcurrency, cfg.WorkerReceiveWait, cfg.WorkerShutdown)
}

// run receives jobs until ctx is cancelled, processing up to concurrency at
// once, then waits up to shutdownTimeout for in-flight jobs. Jobs keep ctx's
// values but not its cancellation.
func run(ctx context.Context, receiver queue.Receiver, analyzer workerproc.Analyzer, concurrency int, wait, shutdownTimeout time.Duration) {
	sem := make(chan struct{}, max(1, concurrency))
	jobCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		case sem <- struct{}{}:
		}

		body, ok, err := receiver.Receive(ctx, wait)
		if err != nil || !ok {
			<-sem
			if ctx.Err() != nil {
				break pollLoop
			}
			if err != nil {
				telemetry.Warn("worker.receive_failed", map[string]any{"error": err})
				sleep(ctx, time.Second)
			}
			continue
		}

		metrics.IncJobsReceived()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			handleMessage(jobCtx, analyzer, body)
		}()
	}

	telemetry.Info("worker.shutdown_requested", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

// handleMessage processes one job body. Jobs are already off the list, so a
// failure is recorded and not retried; the analysis service marks the
// document failed.
func handleMessage(ctx context.Context, analyzer workerproc.Analyzer, body string) {
	msg, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		fields := map[string]any{"body_len": meta.BodyLen, "error": err.Error()}
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		telemetry.Error("worker.analysis.unreadable", fields)
		metrics.IncJobsUnrecoverable()
		return
	}

	fields := baseFields(msg)
	telemetry.Info("worker.analysis.received", fields)

	a, reused, err := workerproc.HandleMessage(ctx, analyzer, msg)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			telemetry.Warn("worker.analysis.document_gone", fields)
			metrics.IncJobsUnrecoverable()
			return
		}
		fields["error"] = err.Error()
		telemetry.Error("worker.analysis.failed", fields)
		metrics.IncJobsFailed()
		return
	}

	fields["analysis_id"] = a.ID
	fields["reused"] = reused
	telemetry.Info("worker.analysis.completed", fields)
	metrics.IncJobsCompleted()
}

func baseFields(msg queue.Message) map[string]any {
	fields := map[string]any{
		"document_id": msg.DocumentID,
		"force":       msg.Force,
	}
	if msg.RequestID != "" {
		fields["request_id"] = msg.RequestID
	}
	if lat := msg.QueueLatency(time.Now()); lat > 0 {
		fields["queue_latency_ms"] = lat.Milliseconds()
	}
	return fields
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
