package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/certextract/internal/core/coerce"
	"github.com/kirillkom/certextract/internal/core/domain"
)

// DocumentRepository persists and reads asynchronously ingested documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, detected domain.DocumentFormat, fields domain.ExtractedRecord) error
}

// RecordStore inserts typed certificate rows into per-format tables.
// InsertDocumentRow is keyed by document id and reports false when the
// document already has a row.
type RecordStore interface {
	InsertRows(ctx context.Context, schema domain.FormatSchema, rows []coerce.Row) (int, error)
	InsertDocumentRow(ctx context.Context, schema domain.FormatSchema, documentID string, row coerce.Row) (bool, error)
}

// ObjectStorage stores source documents and generated spreadsheets.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextDecoder returns the text layer of a document.
type TextDecoder interface {
	Decode(ctx context.Context, data []byte) (string, error)
}

// SpreadsheetWriter renders a workbook to XLSX bytes.
type SpreadsheetWriter interface {
	Write(ctx context.Context, book domain.Workbook) ([]byte, error)
}

// SpreadsheetReader returns the rows of the first sheet, header row first.
type SpreadsheetReader interface {
	ReadRows(ctx context.Context, data []byte) ([][]string, error)
}

// PipelineObserver receives per-document processing telemetry.
type PipelineObserver interface {
	StartDocument()
	FinishDocument(format domain.DocumentFormat, duration time.Duration, err error)
	ObserveWarnings(format domain.DocumentFormat, warnings []domain.ValidationWarning)
}
