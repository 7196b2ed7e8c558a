package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/certextract/internal/core/domain"
)

func TestInlineRunnerRecoversPanic(t *testing.T) {
	_, err := InlineRunner{}.Run(context.Background(), func(context.Context) (*domain.DocumentResult, error) {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
}

func TestIsolatedRunnerFallsBackInlineAfterPanic(t *testing.T) {
	var calls atomic.Int32
	runner := NewIsolatedRunner(time.Second, discardLogger())

	res, err := runner.Run(context.Background(), func(context.Context) (*domain.DocumentResult, error) {
		if calls.Add(1) == 1 {
			panic("isolated worker crashed")
		}
		return &domain.DocumentResult{Format: domain.FormatTechReview}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Format != domain.FormatTechReview || calls.Load() != 2 {
		t.Fatalf("expected inline retry result, got %+v after %d calls", res, calls.Load())
	}
}

func TestIsolatedRunnerKeepsDocumentErrors(t *testing.T) {
	var calls atomic.Int32
	runner := NewIsolatedRunner(time.Second, discardLogger())
	wantErr := &domain.UnidentifiedFormatError{FileName: "x.pdf"}

	_, err := runner.Run(context.Background(), func(context.Context) (*domain.DocumentResult, error) {
		calls.Add(1)
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected document error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("document errors must not trigger a retry, got %d calls", calls.Load())
	}
}

func TestIsolatedRunnerTimeout(t *testing.T) {
	runner := NewIsolatedRunner(10*time.Millisecond, discardLogger())

	_, err := runner.Run(context.Background(), func(ctx context.Context) (*domain.DocumentResult, error) {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestBatchUsesIsolatedRunner(t *testing.T) {
	pipeline := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)
	uc := NewBatchUseCase(pipeline, 2, discardLogger(), WithRunner(NewIsolatedRunner(time.Second, discardLogger())))

	result := uc.Process(context.Background(), []domain.SourceFile{
		{Name: "a.pdf", Data: []byte(techReviewDoc)},
		{Name: "b.pdf", Data: []byte("nothing useful")},
	}, domain.ProcessOptions{}, nil)

	if len(result.Successes()) != 1 || len(result.Failures()) != 1 {
		t.Fatalf("unexpected partition %+v", result.Outcomes)
	}
	if result.Outcomes[0].Result.Fields[domain.FieldPlateNumber] != "XYZ789" {
		t.Fatalf("unexpected plate %q", result.Outcomes[0].Result.Fields[domain.FieldPlateNumber])
	}
}
