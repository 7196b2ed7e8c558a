package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/extraction"
	"github.com/kirillkom/certextract/internal/core/ports"
)

// PipelineUseCase turns one document into a validated record:
// decode, normalize, classify, extract, validate.
type PipelineUseCase struct {
	decoder ports.TextDecoder
	logger  *slog.Logger
	strict  map[domain.DocumentFormat]bool
}

func NewPipelineUseCase(decoder ports.TextDecoder, logger *slog.Logger, strictFormats []domain.DocumentFormat) *PipelineUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	strict := make(map[domain.DocumentFormat]bool, len(strictFormats))
	for _, f := range strictFormats {
		strict[f] = true
	}
	return &PipelineUseCase{
		decoder: decoder,
		logger:  logger,
		strict:  strict,
	}
}

func (uc *PipelineUseCase) Process(ctx context.Context, in domain.SourceFile, opts domain.ProcessOptions) (*domain.DocumentResult, error) {
	text, err := uc.decode(ctx, in)
	if err != nil {
		return nil, err
	}

	normalized := extraction.Normalize(text)
	format, err := uc.classify(in.Name, normalized, opts.ExpectedFormat)
	if err != nil {
		return nil, err
	}

	def, err := extraction.Lookup(format)
	if err != nil {
		return nil, err
	}
	out := def.Extract(normalized, opts.WantPatterns)

	warnings, err := uc.validate(in.Name, def, out.Fields)
	if err != nil {
		return nil, err
	}

	return &domain.DocumentResult{
		Format:   format,
		Fields:   out.Fields,
		Title:    out.Title,
		Patterns: out.Patterns,
		Warnings: warnings,
	}, nil
}

// Classify decodes a document and reports its format without extracting
// fields. Text that matches no rule yields FormatUnknown and no error.
func (uc *PipelineUseCase) Classify(ctx context.Context, in domain.SourceFile) (domain.DocumentFormat, error) {
	text, err := uc.decode(ctx, in)
	if err != nil {
		return "", err
	}
	return extraction.Classify(extraction.Normalize(text)), nil
}

func (uc *PipelineUseCase) decode(ctx context.Context, in domain.SourceFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := uc.decoder.Decode(ctx, in.Data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &domain.DecodeError{FileName: in.Name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.DecodeError{FileName: in.Name}
	}
	return text, nil
}

func (uc *PipelineUseCase) classify(fileName, text string, expected domain.DocumentFormat) (domain.DocumentFormat, error) {
	detected := extraction.Classify(text)
	if expected != "" && expected != detected {
		return "", &domain.FormatMismatchError{FileName: fileName, Expected: expected, Detected: detected}
	}
	if detected == domain.FormatUnknown {
		return "", &domain.UnidentifiedFormatError{FileName: fileName}
	}
	return detected, nil
}

func (uc *PipelineUseCase) validate(fileName string, def extraction.Definition, record domain.ExtractedRecord) ([]domain.ValidationWarning, error) {
	warnings := extraction.Check(def, record)
	if len(warnings) == 0 {
		return nil, nil
	}

	policy := def.Policy
	if uc.strict[def.Format] {
		policy = extraction.PolicyStrict
	}
	if policy == extraction.PolicyStrict {
		return nil, &domain.ValidationError{FileName: fileName, Format: def.Format, Warnings: warnings}
	}

	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		messages = append(messages, w.String())
	}
	uc.logger.Warn("validation_warnings",
		"file", fileName,
		"format", def.Format,
		"policy", policy.String(),
		"count", len(warnings),
		"warnings", messages,
	)
	return warnings, nil
}
