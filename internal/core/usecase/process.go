package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kirillkom/certextract/internal/core/coerce"
	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/ports"
)

// ProcessDocumentUseCase extracts an ingested document picked up by the
// worker and persists the result.
type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	pipeline ports.CertificateProcessor
	records  ports.RecordStore
	logger   *slog.Logger
}

// NewProcessDocumentUseCase wires the worker flow. records may be nil when
// typed persistence is disabled.
func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	pipeline ports.CertificateProcessor,
	records ports.RecordStore,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:     repo,
		storage:  storage,
		pipeline: pipeline,
		records:  records,
		logger:   logger,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persist(ctx, documentID, result); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	uc.logger.Info("document_processed",
		"document_id", documentID,
		"format", result.Format,
		"warnings", len(result.Warnings),
	)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.DocumentResult, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	data, err := uc.readSource(ctx, doc)
	if err != nil {
		return nil, err
	}

	result, err := uc.pipeline.Process(ctx, domain.SourceFile{
		Name:     doc.Filename,
		MimeType: doc.MimeType,
		Data:     data,
	}, domain.ProcessOptions{ExpectedFormat: doc.ExpectedFormat})
	if err != nil {
		return nil, fmt.Errorf("extract certificate: %w", err)
	}
	return result, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) readSource(ctx context.Context, doc *domain.Document) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return data, nil
}

// persist writes the typed row before the stored fields. A document keeps
// at most one typed row across redeliveries.
func (uc *ProcessDocumentUseCase) persist(ctx context.Context, documentID string, result *domain.DocumentResult) error {
	if uc.records != nil {
		schema, ok := domain.Schema(result.Format)
		if !ok {
			return domain.WrapError(domain.ErrUnsupportedFormat, "persist record", fmt.Errorf("format %q", result.Format))
		}
		inserted, err := uc.records.InsertDocumentRow(ctx, schema, documentID, coerce.RowFromRecord(schema, result.Fields))
		if err != nil {
			return fmt.Errorf("insert typed record: %w", err)
		}
		if !inserted {
			uc.logger.Info("typed_record_exists", "document_id", documentID, "table", schema.Table)
		}
	}

	if err := uc.repo.SaveExtraction(ctx, documentID, result.Format, result.Fields); err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
