package ports

import (
	"context"
	"io"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// DocumentIngestor is the inbound contract for asynchronous certificate upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, expected domain.DocumentFormat, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// CertificateProcessor runs the extraction pipeline on a single document.
type CertificateProcessor interface {
	Process(ctx context.Context, in domain.SourceFile, opts domain.ProcessOptions) (*domain.DocumentResult, error)
}

// BatchConverter processes a batch and builds the consolidated spreadsheet.
type BatchConverter interface {
	Convert(ctx context.Context, req domain.ConvertRequest, onProgress func(domain.ProgressEvent)) (*domain.Conversion, error)
}

// SpreadsheetImporter loads a consolidated spreadsheet into storage.
type SpreadsheetImporter interface {
	Import(ctx context.Context, format domain.DocumentFormat, data []byte) (*domain.ImportResult, error)
}
