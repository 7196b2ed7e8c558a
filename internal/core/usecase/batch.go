package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/ports"
)

const DefaultBatchConcurrency = 5

// BatchUseCase runs the pipeline over many documents with bounded
// parallelism and reports progress after every completion.
type BatchUseCase struct {
	pipeline ports.CertificateProcessor
	runner   Runner
	workers  int
	observer ports.PipelineObserver
	logger   *slog.Logger
	now      func() time.Time
}

type BatchOption func(*BatchUseCase)

func WithRunner(r Runner) BatchOption {
	return func(uc *BatchUseCase) {
		if r != nil {
			uc.runner = r
		}
	}
}

func WithObserver(o ports.PipelineObserver) BatchOption {
	return func(uc *BatchUseCase) { uc.observer = o }
}

func WithClock(now func() time.Time) BatchOption {
	return func(uc *BatchUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func NewBatchUseCase(pipeline ports.CertificateProcessor, workers int, logger *slog.Logger, opts ...BatchOption) *BatchUseCase {
	if workers <= 0 {
		workers = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	uc := &BatchUseCase{
		pipeline: pipeline,
		runner:   InlineRunner{},
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Process never fails as a whole: every per-document error, including
// cancellation, becomes a failed outcome at the document's index.
func (uc *BatchUseCase) Process(
	ctx context.Context,
	files []domain.SourceFile,
	opts domain.ProcessOptions,
	onProgress func(domain.ProgressEvent),
) domain.BatchResult {
	started := uc.now()
	outcomes := make([]domain.Outcome, len(files))
	tracker := newProgressTracker(len(files), onProgress)

	var g errgroup.Group
	g.SetLimit(uc.workers)
	for i, file := range files {
		g.Go(func() error {
			outcomes[i] = uc.processOne(ctx, i, file, opts)
			tracker.complete(outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	result := domain.BatchResult{
		Expected: opts.ExpectedFormat,
		Outcomes: outcomes,
		Elapsed:  uc.now().Sub(started),
	}
	uc.logger.Info("batch_processed",
		"files", len(files),
		"successes", tracker.successes,
		"failures", tracker.failures,
		"duration_ms", result.Elapsed.Milliseconds(),
	)
	return result
}

func (uc *BatchUseCase) processOne(ctx context.Context, index int, file domain.SourceFile, opts domain.ProcessOptions) domain.Outcome {
	out := domain.Outcome{Index: index, FileName: file.Name}
	if err := ctx.Err(); err != nil {
		out.Err = err
		out.Error = err.Error()
		return out
	}

	if uc.observer != nil {
		uc.observer.StartDocument()
	}
	start := uc.now()
	res, err := uc.runner.Run(ctx, func(taskCtx context.Context) (*domain.DocumentResult, error) {
		return uc.pipeline.Process(taskCtx, file, opts)
	})
	out.Duration = uc.now().Sub(start)

	format := opts.ExpectedFormat
	if res != nil {
		format = res.Format
	}
	if uc.observer != nil {
		uc.observer.FinishDocument(format, out.Duration, err)
		if res != nil {
			uc.observer.ObserveWarnings(format, res.Warnings)
		}
	}

	if err != nil {
		uc.logger.Warn("document_failed", "file", file.Name, "index", index, "error", err.Error())
		out.Err = err
		out.Error = err.Error()
		return out
	}
	out.Result = res
	return out
}

type progressTracker struct {
	mu        sync.Mutex
	total     int
	processed int
	successes int
	failures  int
	elapsed   time.Duration
	emit      func(domain.ProgressEvent)
}

func newProgressTracker(total int, emit func(domain.ProgressEvent)) *progressTracker {
	return &progressTracker{total: total, emit: emit}
}

// complete is the single mutation point per finished document. The
// callback runs under the lock so events are ordered like the counters.
func (p *progressTracker) complete(o domain.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	p.elapsed += o.Duration
	status := domain.ProgressFulfilled
	if o.Succeeded() {
		p.successes++
	} else {
		p.failures++
		status = domain.ProgressRejected
	}

	if p.emit == nil {
		return
	}
	p.emit(domain.ProgressEvent{
		Processed:            p.processed,
		Total:                p.total,
		FileName:             o.FileName,
		Status:               status,
		Error:                o.Error,
		EstimatedMsRemaining: estimateRemaining(p.elapsed, p.processed, p.total).Milliseconds(),
		Successes:            p.successes,
		Failures:             p.failures,
	})
}

// estimateRemaining is (elapsed / processed) * (total - processed).
func estimateRemaining(elapsed time.Duration, processed, total int) time.Duration {
	if processed <= 0 || total <= processed {
		return 0
	}
	return elapsed / time.Duration(processed) * time.Duration(total-processed)
}
