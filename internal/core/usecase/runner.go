package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// DocumentTask is one pipeline invocation scheduled by the batch processor.
type DocumentTask func(ctx context.Context) (*domain.DocumentResult, error)

// Runner decides where a document task executes.
type Runner interface {
	Run(ctx context.Context, task DocumentTask) (*domain.DocumentResult, error)
}

// InlineRunner executes the task on the calling goroutine.
type InlineRunner struct{}

func (InlineRunner) Run(ctx context.Context, task DocumentTask) (res *domain.DocumentResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("document processing panicked: %v", p)
		}
	}()
	return task(ctx)
}

var errIsolationFailed = errors.New("isolated execution failed")

// IsolatedRunner executes the task on its own goroutine with a deadline.
// A panic inside the isolated run is retried once inline.
type IsolatedRunner struct {
	timeout  time.Duration
	logger   *slog.Logger
	fallback Runner
}

func NewIsolatedRunner(timeout time.Duration, logger *slog.Logger) *IsolatedRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &IsolatedRunner{
		timeout:  timeout,
		logger:   logger,
		fallback: InlineRunner{},
	}
}

type taskResult struct {
	res *domain.DocumentResult
	err error
}

func (r *IsolatedRunner) Run(ctx context.Context, task DocumentTask) (*domain.DocumentResult, error) {
	res, err := r.runIsolated(ctx, task)
	if errors.Is(err, errIsolationFailed) {
		r.logger.Warn("isolated_run_failed", "error", err.Error(), "fallback", "inline")
		return r.fallback.Run(ctx, task)
	}
	return res, err
}

func (r *IsolatedRunner) runIsolated(ctx context.Context, task DocumentTask) (*domain.DocumentResult, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan taskResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Debug("isolated_run_panic", "stack", string(debug.Stack()))
				done <- taskResult{err: fmt.Errorf("%w: panic: %v", errIsolationFailed, p)}
			}
		}()
		res, err := task(runCtx)
		done <- taskResult{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("document processing timed out after %s: %w", r.timeout, runCtx.Err())
	}
}
