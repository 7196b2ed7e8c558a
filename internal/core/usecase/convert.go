package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/naming"
	"github.com/kirillkom/certextract/internal/core/ports"
)

// BatchProcessor is the batch stage used by conversions.
type BatchProcessor interface {
	Process(ctx context.Context, files []domain.SourceFile, opts domain.ProcessOptions, onProgress func(domain.ProgressEvent)) domain.BatchResult
}

// ConvertUseCase processes a batch and consolidates the successes into one
// spreadsheet. When storage is configured the spreadsheet is also kept as
// a downloadable export.
type ConvertUseCase struct {
	batch   BatchProcessor
	writer  ports.SpreadsheetWriter
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewConvertUseCase(batch BatchProcessor, writer ports.SpreadsheetWriter, storage ports.ObjectStorage, logger *slog.Logger) *ConvertUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertUseCase{
		batch:   batch,
		writer:  writer,
		storage: storage,
		logger:  logger,
	}
}

func (uc *ConvertUseCase) Convert(ctx context.Context, req domain.ConvertRequest, onProgress func(domain.ProgressEvent)) (*domain.Conversion, error) {
	if len(req.Files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "convert batch", errors.New("no files supplied"))
	}

	batch := uc.batch.Process(ctx, req.Files, domain.ProcessOptions{
		ExpectedFormat: req.ExpectedFormat,
		WantPatterns:   req.WantPatterns,
	}, onProgress)
	conv := &domain.Conversion{Batch: batch}

	successes := batch.Successes()
	if len(successes) == 0 {
		conv.Message = domain.NoSuccessMessage(req.ExpectedFormat)
		if !req.IncludeStats {
			return conv, nil
		}
	}

	format := batchFormat(req.ExpectedFormat, successes)
	book := BuildWorkbook(format, successes, req.StorageHeaders)
	if req.IncludeStats {
		book.Stats = &domain.WorkbookStats{
			Total:     len(batch.Outcomes),
			Succeeded: len(successes),
			Failed:    len(batch.Outcomes) - len(successes),
			Failures:  batch.Failures(),
		}
	}

	data, err := uc.writer.Write(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	conv.Spreadsheet = data
	conv.FileName = naming.SpreadsheetFileName(naming.BaseName(format, successes))

	if uc.storage != nil {
		id, err := uc.saveExport(ctx, conv.FileName, data)
		if err != nil {
			return nil, err
		}
		conv.ExportID = id
	}
	return conv, nil
}

// OpenExport returns a stored spreadsheet and its download name.
func (uc *ConvertUseCase) OpenExport(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if uc.storage == nil {
		return nil, "", domain.WrapError(domain.ErrDocumentNotFound, "open export", errors.New("exports are not stored"))
	}
	if !validExportID(id) {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "open export", fmt.Errorf("malformed export id %q", id))
	}
	rc, err := uc.storage.Open(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("open export: %w", err)
	}
	return rc, id[exportIDPrefixLen:], nil
}

// Export ids are "<uuid>_<file name>".
const exportIDPrefixLen = 37

func validExportID(id string) bool {
	if len(id) <= exportIDPrefixLen || id[exportIDPrefixLen-1] != '_' || !strings.HasSuffix(id, ".xlsx") {
		return false
	}
	if _, err := uuid.Parse(id[:exportIDPrefixLen-1]); err != nil {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

func (uc *ConvertUseCase) saveExport(ctx context.Context, fileName string, data []byte) (string, error) {
	id := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(fileName))
	if err := uc.storage.Save(ctx, id, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	uc.logger.Info("export_saved", "export_id", id, "bytes", len(data))
	return id, nil
}

// batchFormat is the expected format, or the common format of all
// successes, or unknown for mixed batches.
func batchFormat(expected domain.DocumentFormat, successes []domain.Outcome) domain.DocumentFormat {
	if expected.Known() {
		return expected
	}
	var common domain.DocumentFormat
	for _, o := range successes {
		if common == "" {
			common = o.Result.Format
			continue
		}
		if o.Result.Format != common {
			return domain.FormatUnknown
		}
	}
	if common == "" {
		return domain.FormatUnknown
	}
	return common
}

// BuildWorkbook lays out successful records as rows, source file first.
// Headers are display labels, or storage column names when storageHeaders
// is set. Mixed batches get the union of their formats' fields.
func BuildWorkbook(format domain.DocumentFormat, successes []domain.Outcome, storageHeaders bool) domain.Workbook {
	fields := workbookFields(format, successes)

	headers := make([]string, 0, len(fields)+1)
	headers = append(headers, domain.SourceFileColumn)
	for _, f := range fields {
		if storageHeaders {
			headers = append(headers, f.Column)
		} else {
			headers = append(headers, f.Label)
		}
	}

	rows := make([][]string, 0, len(successes))
	for _, o := range successes {
		row := make([]string, 0, len(headers))
		row = append(row, o.FileName)
		for _, f := range fields {
			row = append(row, o.Result.Fields[f.Key])
		}
		rows = append(rows, row)
	}
	return domain.Workbook{Headers: headers, Rows: rows}
}

func workbookFields(format domain.DocumentFormat, successes []domain.Outcome) []domain.FieldSpec {
	if schema, ok := domain.Schema(format); ok {
		return schema.Fields
	}

	present := make(map[domain.DocumentFormat]bool)
	for _, o := range successes {
		present[o.Result.Format] = true
	}
	var fields []domain.FieldSpec
	seen := make(map[string]bool)
	for _, f := range domain.KnownFormats {
		if !present[f] {
			continue
		}
		schema, _ := domain.Schema(f)
		for _, spec := range schema.Fields {
			if seen[spec.Key] {
				continue
			}
			seen[spec.Key] = true
			fields = append(fields, spec)
		}
	}
	return fields
}
